package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/pkg/logger"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/service"
	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

type ContractHandler struct {
	store    *service.ContractStore
	pageSize int
}

func NewContractHandler(store *service.ContractStore, pageSize int) *ContractHandler {
	if pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}
	return &ContractHandler{store: store, pageSize: pageSize}
}

// ListResponse is one page of the list plus the filters that produced it.
// UnfilteredCount is set when active filters hide every contract, for the
// "Clear filters" prompt.
type ListResponse struct {
	service.PageResult
	Filters         service.Filters `json:"filters"`
	FiltersActive   bool            `json:"filters_active"`
	UnfilteredCount int             `json:"unfiltered_count,omitempty"`
}

// ContractDetail is a contract with its derived display fields
type ContractDetail struct {
	*model.Contract
	RiskLevel   model.RiskLevel `json:"risk_level"`
	RiskLabel   string          `json:"risk_label"`
	StatusLabel string          `json:"status_label"`
}

// ensureLoaded fetches the contract set if needed, answering 502 on failure
func (h *ContractHandler) ensureLoaded(c *gin.Context) bool {
	if err := h.store.Ensure(c.Request.Context()); err != nil {
		// details stay in the log
		logger.Error(c.Request.Context(), "contract fetch failed", "source", h.store.SourceName(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrFetchFailed.Error()})
		return false
	}
	return true
}

// List returns one page of the filtered contract list
func (h *ContractHandler) List(c *gin.Context) {
	state, pageSize, err := h.parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.ensureLoaded(c) {
		return
	}

	all := h.store.All()
	resp := ListResponse{
		PageResult:    state.Apply(all, pageSize),
		Filters:       state.Filters,
		FiltersActive: state.Active(),
	}
	if resp.FiltersActive && resp.MatchCount == 0 {
		resp.UnfilteredCount = state.Cleared().Apply(all, pageSize).MatchCount
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContractHandler) parseListQuery(c *gin.Context) (service.FilterState, int, error) {
	state := service.NewFilterState().
		WithSearch(c.Query("search")).
		WithStatus(c.Query("status")).
		WithRisk(c.Query("risk"))

	if !service.ValidStatusFilter(state.Status) {
		return state, 0, fmt.Errorf("invalid status filter %q", state.Status)
	}
	if !service.ValidRiskFilter(state.Risk) {
		return state, 0, fmt.Errorf("invalid risk filter %q", state.Risk)
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return state, 0, fmt.Errorf("invalid page %q", raw)
		}
		state = state.WithPage(page)
	}

	pageSize := h.pageSize
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			return state, 0, fmt.Errorf("invalid page_size %q", raw)
		}
		pageSize = n
	}

	return state, pageSize, nil
}

// Stats returns the summary cards over the full contract set
func (h *ContractHandler) Stats(c *gin.Context) {
	if !h.ensureLoaded(c) {
		return
	}
	c.JSON(http.StatusOK, service.ComputeStats(h.store.All()))
}

// Get returns a single contract by ID
func (h *ContractHandler) Get(c *gin.Context) {
	if !h.ensureLoaded(c) {
		return
	}

	id := c.Param("id")
	contract, err := h.store.Get(id)
	if errors.Is(err, service.ErrContractNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Contract with ID %q not found", id)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contract"})
		return
	}

	level := model.ClassifyRisk(contract.RiskScore)
	c.JSON(http.StatusOK, ContractDetail{
		Contract:    contract,
		RiskLevel:   level,
		RiskLabel:   level.Label(),
		StatusLabel: model.StatusLabel(contract.Status),
	})
}
