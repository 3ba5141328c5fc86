package service

import (
	"strings"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
)

// FilterAll disables the status or risk filter
const FilterAll = "all"

// DefaultPageSize is the dashboard table page size
const DefaultPageSize = 10

// Risk filter bands
const (
	RiskBandLow    = "low"
	RiskBandMedium = "medium"
	RiskBandHigh   = "high"
)

// Filters are the list predicates; empty Status or Risk means "all"
type Filters struct {
	Search string `json:"search"`
	Status string `json:"status"`
	Risk   string `json:"risk"`
}

// PageResult is the visible slice of the filtered set
type PageResult struct {
	Contracts  []*model.Contract `json:"contracts"`
	MatchCount int               `json:"match_count"`
	TotalPages int               `json:"total_pages"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

// Stats are aggregates over the full, unfiltered contract set
type Stats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	ExpiringSoon int     `json:"expiring_soon"`
	HighRisk     int     `json:"high_risk"`
	TotalValue   float64 `json:"total_value"`
}

// ValidStatusFilter reports whether s is accepted as a status filter
func ValidStatusFilter(s string) bool {
	return s == "" || s == FilterAll || model.ValidStatus(s)
}

// ValidRiskFilter reports whether s is accepted as a risk band filter
func ValidRiskFilter(s string) bool {
	switch s {
	case "", FilterAll, RiskBandLow, RiskBandMedium, RiskBandHigh:
		return true
	}
	return false
}

// Matches reports whether c satisfies all three predicates
func (f Filters) Matches(c *model.Contract) bool {
	return matchesSearch(c, f.Search) && matchesStatus(c, f.Status) && matchesRisk(c, f.Risk)
}

func matchesSearch(c *model.Contract, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(c.Name), needle) {
		return true
	}
	for _, party := range c.Parties {
		if strings.Contains(strings.ToLower(party), needle) {
			return true
		}
	}
	return false
}

func matchesStatus(c *model.Contract, status string) bool {
	return status == "" || status == FilterAll || c.Status == status
}

func matchesRisk(c *model.Contract, band string) bool {
	switch band {
	case RiskBandLow:
		return c.RiskScore <= model.LowRiskMax
	case RiskBandMedium:
		return c.RiskScore > model.LowRiskMax && c.RiskScore <= model.MediumRiskMax
	case RiskBandHigh:
		return c.RiskScore > model.MediumRiskMax
	default:
		return true
	}
}

// Filter returns the matching contracts in input order
func Filter(contracts []*model.Contract, f Filters) []*model.Contract {
	result := make([]*model.Contract, 0, len(contracts))
	for _, c := range contracts {
		if f.Matches(c) {
			result = append(result, c)
		}
	}
	return result
}

// FilterAndPaginate filters contracts and returns the requested page.
// Pages are 1-based. A page past the end is clamped to the last page and
// a page below 1 becomes 1; the effective page is reported in the result.
func FilterAndPaginate(contracts []*model.Contract, f Filters, page, pageSize int) PageResult {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	matched := Filter(contracts, f)
	totalPages := (len(matched) + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return PageResult{
		Contracts:  matched[start:end:end],
		MatchCount: len(matched),
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}
}

// ComputeStats aggregates over every contract regardless of filters
func ComputeStats(contracts []*model.Contract) Stats {
	var s Stats
	for _, c := range contracts {
		s.Total++
		switch c.Status {
		case model.StatusActive:
			s.Active++
		case model.StatusExpiringSoon:
			s.ExpiringSoon++
		}
		if model.IsHighRisk(c.RiskScore) {
			s.HighRisk++
		}
		s.TotalValue += c.Value
	}
	return s
}

// FilterState is the transient list view state. Changing any filter
// field resets the page to 1.
type FilterState struct {
	Filters
	Page int `json:"page"`
}

// NewFilterState returns the initial view state
func NewFilterState() FilterState {
	return FilterState{
		Filters: Filters{Status: FilterAll, Risk: FilterAll},
		Page:    1,
	}
}

func (s FilterState) WithSearch(search string) FilterState {
	if search != s.Search {
		s.Search = search
		s.Page = 1
	}
	return s
}

func (s FilterState) WithStatus(status string) FilterState {
	if status == "" {
		status = FilterAll
	}
	if status != s.Status {
		s.Status = status
		s.Page = 1
	}
	return s
}

func (s FilterState) WithRisk(risk string) FilterState {
	if risk == "" {
		risk = FilterAll
	}
	if risk != s.Risk {
		s.Risk = risk
		s.Page = 1
	}
	return s
}

// WithPage moves to another page without touching the filters
func (s FilterState) WithPage(page int) FilterState {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// Cleared drops every filter, as the "Clear filters" action does
func (s FilterState) Cleared() FilterState {
	return s.WithSearch("").WithStatus(FilterAll).WithRisk(FilterAll)
}

// Active reports whether any filter narrows the list
func (s FilterState) Active() bool {
	return s.Search != "" || (s.Status != "" && s.Status != FilterAll) || (s.Risk != "" && s.Risk != FilterAll)
}

// Apply runs the engine for this state
func (s FilterState) Apply(contracts []*model.Contract, pageSize int) PageResult {
	return FilterAndPaginate(contracts, s.Filters, s.Page, pageSize)
}
