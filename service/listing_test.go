package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContract(id, name string, status string, risk float64, parties ...string) *model.Contract {
	if len(parties) == 0 {
		parties = []string{"Acme Corp"}
	}
	return &model.Contract{
		ID:         id,
		Name:       name,
		Parties:    parties,
		StartDate:  model.NewDate(2024, time.January, 1),
		ExpiryDate: model.NewDate(2026, time.January, 1),
		Status:     status,
		RiskScore:  risk,
		Type:       "Services",
	}
}

func generateContracts(n int) []*model.Contract {
	contracts := make([]*model.Contract, n)
	for i := range contracts {
		contracts[i] = newContract(fmt.Sprintf("c-%02d", i+1), fmt.Sprintf("Contract %02d", i+1), model.StatusActive, 1)
	}
	return contracts
}

func ids(contracts []*model.Contract) []string {
	out := make([]string, len(contracts))
	for i, c := range contracts {
		out[i] = c.ID
	}
	return out
}

func sampleSet() []*model.Contract {
	return []*model.Contract{
		newContract("1", "Cloud Hosting Agreement", model.StatusActive, 1.5, "Acme Corp", "Initech"),
		newContract("2", "Office Lease", model.StatusExpiringSoon, 2.0, "Globex"),
		newContract("3", "Supplier NDA", model.StatusPending, 3.5, "Umbrella Ltd"),
		newContract("4", "Consulting SOW", model.StatusActive, 3.6, "Initech"),
		newContract("5", "Hardware Purchase", model.StatusExpired, 4.8, "Hooli"),
		newContract("6", "Marketing Retainer", model.StatusActive, 2.7, "Stark Industries"),
	}
}

func TestFilterAndPaginateScenarioPages(t *testing.T) {
	contracts := generateContracts(25)
	all := Filters{Status: FilterAll, Risk: FilterAll}

	page1 := FilterAndPaginate(contracts, all, 1, 10)
	assert.Len(t, page1.Contracts, 10)
	assert.Equal(t, 25, page1.MatchCount)
	assert.Equal(t, 3, page1.TotalPages)

	page3 := FilterAndPaginate(contracts, all, 3, 10)
	assert.Len(t, page3.Contracts, 5)
	assert.Equal(t, 3, page3.Page)

	// Overflowing pages clamp to the last page
	page4 := FilterAndPaginate(contracts, all, 4, 10)
	assert.Equal(t, 3, page4.Page)
	assert.Equal(t, ids(page3.Contracts), ids(page4.Contracts))

	page0 := FilterAndPaginate(contracts, all, 0, 10)
	assert.Equal(t, 1, page0.Page)
	assert.Equal(t, ids(page1.Contracts), ids(page0.Contracts))
}

func TestFilterAndPaginateEmptyInput(t *testing.T) {
	for _, page := range []int{-1, 0, 1, 7} {
		result := FilterAndPaginate(nil, Filters{}, page, 10)
		assert.Empty(t, result.Contracts)
		assert.Zero(t, result.MatchCount)
		assert.Zero(t, result.TotalPages)
		assert.Equal(t, 1, result.Page)
	}
}

func TestFilterAndPaginateNoMatchesResetsPage(t *testing.T) {
	contracts := generateContracts(25)
	for _, page := range []int{1, 3, 7} {
		result := FilterAndPaginate(contracts, Filters{Search: "zzz-no-match"}, page, 10)
		assert.Empty(t, result.Contracts)
		assert.Zero(t, result.MatchCount)
		assert.Zero(t, result.TotalPages)
		assert.Equal(t, 1, result.Page, "requested page %d", page)
	}
}

func TestFilterAndPaginateDefaultPageSize(t *testing.T) {
	result := FilterAndPaginate(generateContracts(12), Filters{}, 1, 0)
	assert.Equal(t, DefaultPageSize, result.PageSize)
	assert.Len(t, result.Contracts, DefaultPageSize)
	assert.Equal(t, 2, result.TotalPages)
}

func TestFilterPredicates(t *testing.T) {
	contracts := sampleSet()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "no filters", filters: Filters{}, want: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "explicit all", filters: Filters{Status: FilterAll, Risk: FilterAll}, want: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "search name case insensitive", filters: Filters{Search: "LEASE"}, want: []string{"2"}},
		{name: "search matches party only", filters: Filters{Search: "initech"}, want: []string{"1", "4"}},
		{name: "search no match", filters: Filters{Search: "zzz"}, want: []string{}},
		{name: "status exact", filters: Filters{Status: model.StatusActive}, want: []string{"1", "4", "6"}},
		{name: "unknown status matches nothing", filters: Filters{Status: "archived"}, want: []string{}},
		{name: "risk low includes 2.0", filters: Filters{Risk: RiskBandLow}, want: []string{"1", "2"}},
		{name: "risk medium includes 3.5", filters: Filters{Risk: RiskBandMedium}, want: []string{"3", "6"}},
		{name: "risk high", filters: Filters{Risk: RiskBandHigh}, want: []string{"4", "5"}},
		{name: "unknown risk matches all", filters: Filters{Risk: "extreme"}, want: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "combined", filters: Filters{Search: "initech", Status: model.StatusActive, Risk: RiskBandHigh}, want: []string{"4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterAndPaginate(contracts, tt.filters, 1, 10)
			if diff := cmp.Diff(tt.want, ids(result.Contracts)); diff != "" {
				t.Errorf("filtered ids mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tt.want), result.MatchCount)
		})
	}
}

func TestFilterAndPaginateSubsetByIdentity(t *testing.T) {
	contracts := sampleSet()
	filters := Filters{Risk: RiskBandMedium}

	for page := 1; page <= 3; page++ {
		result := FilterAndPaginate(contracts, filters, page, 1)
		for _, got := range result.Contracts {
			found := false
			for _, c := range contracts {
				if c == got {
					found = true
				}
			}
			require.True(t, found, "page %d returned a contract not in the input", page)
			assert.True(t, filters.Matches(got))
		}
	}
}

func TestFilterAndPaginatePreservesOrder(t *testing.T) {
	contracts := sampleSet()
	// reverse the input; output must follow it
	reversed := make([]*model.Contract, len(contracts))
	for i, c := range contracts {
		reversed[len(contracts)-1-i] = c
	}

	result := FilterAndPaginate(reversed, Filters{Status: model.StatusActive}, 1, 10)
	assert.Equal(t, []string{"6", "4", "1"}, ids(result.Contracts))
}

func TestFilterAndPaginateIdempotent(t *testing.T) {
	contracts := sampleSet()
	f := Filters{Search: "a", Risk: RiskBandLow}

	first := FilterAndPaginate(contracts, f, 1, 2)
	second := FilterAndPaginate(contracts, f, 1, 2)

	assert.Equal(t, ids(first.Contracts), ids(second.Contracts))
	assert.Equal(t, first.MatchCount, second.MatchCount)
	assert.Equal(t, first.TotalPages, second.TotalPages)
}

func TestPageDoesNotChangeMatches(t *testing.T) {
	contracts := generateContracts(23)
	f := Filters{Search: "contract 1"}

	base := FilterAndPaginate(contracts, f, 1, 3)
	for page := 1; page <= 6; page++ {
		result := FilterAndPaginate(contracts, f, page, 3)
		assert.Equal(t, base.MatchCount, result.MatchCount, "page %d", page)
		assert.Equal(t, base.TotalPages, result.TotalPages, "page %d", page)
	}
}

func TestFilterAndPaginateDoesNotAliasInput(t *testing.T) {
	contracts := generateContracts(5)
	result := FilterAndPaginate(contracts, Filters{}, 1, 2)

	result.Contracts = append(result.Contracts, newContract("x", "X", model.StatusActive, 1))
	again := FilterAndPaginate(contracts, Filters{}, 2, 2)
	assert.Equal(t, []string{"c-03", "c-04"}, ids(again.Contracts))
}

func TestComputeStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Stats{}, ComputeStats(nil))
	})

	t.Run("all active", func(t *testing.T) {
		contracts := generateContracts(7)
		stats := ComputeStats(contracts)
		assert.Equal(t, 7, stats.Total)
		assert.Equal(t, 7, stats.Active)
	})

	t.Run("mixed", func(t *testing.T) {
		contracts := sampleSet()
		contracts[0].Value = 1000
		contracts[1].Value = 0
		contracts[2].Value = 250.5

		stats := ComputeStats(contracts)
		assert.Equal(t, Stats{
			Total:        6,
			Active:       3,
			ExpiringSoon: 1,
			HighRisk:     2,
			TotalValue:   1250.5,
		}, stats)
	})
}

func TestFilterStateResetsPage(t *testing.T) {
	state := NewFilterState().WithPage(3)
	require.Equal(t, 3, state.Page)

	assert.Equal(t, 3, state.WithSearch("").Page, "unchanged search keeps page")
	assert.Equal(t, 1, state.WithSearch("acme").Page)
	assert.Equal(t, 1, state.WithStatus(model.StatusPending).Page)
	assert.Equal(t, 3, state.WithStatus(FilterAll).Page)
	assert.Equal(t, 1, state.WithRisk(RiskBandHigh).Page)
	assert.Equal(t, 3, state.WithRisk("").Page, "empty risk normalises to all")

	filtered := state.WithSearch("acme").WithRisk(RiskBandLow).WithPage(2)
	assert.True(t, filtered.Active())

	cleared := filtered.Cleared()
	assert.False(t, cleared.Active())
	assert.Equal(t, 1, cleared.Page)
}

func TestFilterStateApply(t *testing.T) {
	contracts := generateContracts(25)
	state := NewFilterState().WithPage(3)

	result := state.Apply(contracts, 10)
	assert.Len(t, result.Contracts, 5)

	// A filter change after paging lands on the first page again
	result = state.WithSearch("contract 2").Apply(contracts, 10)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 6, result.MatchCount)
}

func TestFilterValidation(t *testing.T) {
	for _, s := range []string{"", FilterAll, model.StatusExpired} {
		assert.True(t, ValidStatusFilter(s), s)
	}
	assert.False(t, ValidStatusFilter("archived"))

	for _, r := range []string{"", FilterAll, RiskBandLow, RiskBandMedium, RiskBandHigh} {
		assert.True(t, ValidRiskFilter(r), r)
	}
	assert.False(t, ValidRiskFilter("critical"))
}
