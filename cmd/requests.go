package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carmarket/carmarket/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Show recent backend calls from the request log",
	RunE:  runRequests,
}

func init() {
	requestsCmd.Flags().Int("limit", 20, "Number of requests to show")
	requestsCmd.Flags().Bool("errors", false, "Only show failed requests")
	requestsCmd.Flags().Int("prune", 0, "Keep only the N most recent requests, then exit")
}

func runRequests(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	if dbPath == "" {
		return fmt.Errorf("request history is disabled")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	repo := st.EventRepo()

	if keep, _ := cmd.Flags().GetInt("prune"); keep > 0 {
		if err := repo.Prune(ctx, keep); err != nil {
			return err
		}
		fmt.Printf("Kept the %d most recent requests.\n", keep)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	onlyErrors, _ := cmd.Flags().GetBool("errors")

	events, err := repo.RecentRequests(ctx, store.QueryOpts{Limit: limit})
	if err != nil {
		return err
	}
	stats, err := repo.Stats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTIME\tMETHOD\tPATH\tSTATUS\tLATENCY\tERROR")
	for _, ev := range events {
		if onlyErrors && ev.Success {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%dms\t%s\n",
			ev.Sequence, ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			ev.Method, ev.Path, ev.Status, ev.LatencyMs, ev.ErrorMessage)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d requests logged, %d failed.\n", stats.Total, stats.Failed)
	return nil
}
