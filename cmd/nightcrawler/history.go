package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/nightcrawler/internal/config"
	"github.com/nao1215/nightcrawler/internal/database"
	"github.com/nao1215/nightcrawler/internal/model"
	"github.com/nao1215/nightcrawler/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past crawl runs",
		Long: `History lists the crawl runs recorded in the local database.

By default the most recent runs are listed with their seed URL, timing
and page counts. Use --id to print the full saved result of one run.

Examples:
  # List the 20 most recent runs
  nightcrawler history

  # List everything
  nightcrawler history --limit 0

  # Show the full result of run 42 as JSON
  nightcrawler history --id 42 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of runs to list (0 = all)")
	cmd.Flags().Int64("id", 0, "Show the full saved result of the run with this ID")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history database (has a crawl been run yet?): %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only usage

	if id != 0 {
		return showRun(cmd.Context(), db, id, asJSON)
	}
	return listRuns(cmd.Context(), db, limit, asJSON)
}

// showRun prints the full saved result of a single run.
func showRun(ctx context.Context, db *database.CrawlDB, id int64, asJSON bool) error {
	record, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Printf("Run #%d\n", record.ID)
	fmt.Printf("  Seed:     %s\n", record.SeedURL)
	fmt.Printf("  Started:  %s\n", record.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Duration: %s\n", record.Duration().Round(time.Millisecond))
	fmt.Printf("  Fetched:  %d pages (%d failed)\n\n", record.PagesFetched, record.PagesFailed)

	if record.Result == nil {
		return nil
	}
	w := report.NewSimpleWriter(os.Stdout, report.WithSeed(record.SeedURL), report.WithVerbose(true))
	_, err = w.Write(record.Result)
	return err
}

// listRuns prints recent runs in a table.
func listRuns(ctx context.Context, db *database.CrawlDB, limit int, asJSON bool) error {
	records, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summarize(records))
	}

	if len(records) == 0 {
		fmt.Println("No crawl runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEED\tSTARTED\tDURATION\tFETCHED\tFAILED")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n",
			r.ID,
			r.SeedURL,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration().Round(time.Millisecond),
			r.PagesFetched,
			r.PagesFailed,
		)
	}
	return tw.Flush()
}

// historyRecordSummary is the JSON shape of a listed run. The embedded
// result is omitted; use --id to retrieve it.
type historyRecordSummary struct {
	ID           int64  `json:"id"`
	SeedURL      string `json:"seedUrl"`
	StartedAt    string `json:"startedAt"`
	Duration     string `json:"duration"`
	PagesFetched int    `json:"pagesFetched"`
	PagesFailed  int    `json:"pagesFailed"`
}

// summarize converts records to the reduced JSON shape.
func summarize(records []*model.RunRecord) []historyRecordSummary {
	out := make([]historyRecordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, historyRecordSummary{
			ID:           r.ID,
			SeedURL:      r.SeedURL,
			StartedAt:    r.StartedAt.Format(time.RFC3339),
			Duration:     r.Duration().Round(time.Millisecond).String(),
			PagesFetched: r.PagesFetched,
			PagesFailed:  r.PagesFailed,
		})
	}
	return out
}
