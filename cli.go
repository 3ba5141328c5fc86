package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/service"
	"github.com/spf13/cobra"
)

const fetchTimeout = 30 * time.Second

// loadSource fetches the full contract set from a file path or http(s) URL
func loadSource(ctx context.Context, src string) ([]*model.Contract, error) {
	var source service.Source
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		source = service.NewHTTPSource(src, fetchTimeout)
	} else {
		source = service.NewFileSource(src)
	}

	store := service.NewContractStore(source)
	if err := store.Ensure(ctx); err != nil {
		return nil, err
	}
	return store.All(), nil
}

func newListCmd() *cobra.Command {
	var src string
	var search, status, risk string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the filtered contract list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !service.ValidStatusFilter(status) {
				return fmt.Errorf("invalid status filter %q", status)
			}
			if !service.ValidRiskFilter(risk) {
				return fmt.Errorf("invalid risk filter %q", risk)
			}

			contracts, err := loadSource(cmd.Context(), src)
			if err != nil {
				return err
			}

			state := service.NewFilterState().WithSearch(search).WithStatus(status).WithRisk(risk).
				WithPage(page)
			result := state.Apply(contracts, pageSize)
			printPage(cmd.OutOrStdout(), result)

			if result.MatchCount == 0 && state.Active() {
				total := state.Cleared().Apply(contracts, pageSize).MatchCount
				fmt.Fprintf(cmd.OutOrStdout(), "%d contracts in total; drop --search, --status and --risk to clear filters.\n", total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&src, "source", "s", "./data/contracts.json", "contracts document path or URL")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on name or party")
	cmd.Flags().StringVar(&status, "status", service.FilterAll, "all, active, pending, expired or expiring_soon")
	cmd.Flags().StringVar(&risk, "risk", service.FilterAll, "all, low, medium or high")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", service.DefaultPageSize, "rows per page")
	return cmd
}

func printPage(w io.Writer, result service.PageResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPARTIES\tEXPIRY\tSTATUS\tRISK")
	for _, c := range result.Contracts {
		level := model.ClassifyRisk(c.RiskScore)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%.1f (%s)\n",
			c.ID, c.Name, len(c.Parties), c.ExpiryDate, model.StatusLabel(c.Status), c.RiskScore, level.Label())
	}
	tw.Flush()

	if result.MatchCount == 0 {
		fmt.Fprintln(w, "No contracts match the current filters.")
		return
	}
	fmt.Fprintf(w, "Page %d of %d (%d matching)\n", result.Page, result.TotalPages, result.MatchCount)
}

func newStatsCmd() *cobra.Command {
	var src string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print summary statistics over the whole contract set",
		RunE: func(cmd *cobra.Command, args []string) error {
			contracts, err := loadSource(cmd.Context(), src)
			if err != nil {
				return err
			}

			s := service.ComputeStats(contracts)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total contracts: %d\n", s.Total)
			fmt.Fprintf(out, "Active:          %d\n", s.Active)
			fmt.Fprintf(out, "Expiring soon:   %d\n", s.ExpiringSoon)
			fmt.Fprintf(out, "High risk:       %d\n", s.HighRisk)
			fmt.Fprintf(out, "Total value:     %.2f\n", s.TotalValue)
			return nil
		},
	}

	cmd.Flags().StringVarP(&src, "source", "s", "./data/contracts.json", "contracts document path or URL")
	return cmd
}
