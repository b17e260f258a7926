package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history [repo]",
	Short: "Show sync history",
	Long: `History lists past sync runs, newest first, optionally narrowed to
one repo or to a time window.

--since takes an absolute date or plain English:
  forkmate history --since 2026-08-01
  forkmate history widget --since "2 days ago"`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		sinceExpr, _ := cmd.Flags().GetString("since")

		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		var repoID *model.RepoID
		if len(args) == 1 {
			repo, err := findRepo(ctx, catalog, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			repoID = &repo.ID
		}

		var since *time.Time
		if sinceExpr != "" {
			t, err := parseSince(sinceExpr, time.Now())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			since = &t
		}

		records, err := catalog.ListSyncHistory(ctx, repoID, since, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Println("No sync history found.")
			return
		}

		fmt.Printf("%-20s %-16s %-7s %-7s %-8s %s\n",
			"STARTED", "STATUS", "SYNCED", "FAILED", "COMMITS", "ERRORS")
		for i := range records {
			rec := &records[i]
			errStr := "-"
			if len(rec.Errors) > 0 {
				errStr = fmt.Sprintf("%d error(s)", len(rec.Errors))
			}
			fmt.Printf("%-20s %-16s %-7d %-7d %-8d %s\n",
				rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
				rec.Status, rec.BranchesSynced, rec.BranchesFailed,
				rec.CommitsTransferred, errStr)
		}
	},
}

// parseSince turns a --since expression into a time. Absolute forms
// (RFC 3339, YYYY-MM-DD) are tried first, then natural language like
// "2 days ago" or "last monday".
func parseSince(expr string, now time.Time) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, expr); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(expr, now)
	if err != nil {
		return time.Time{}, err
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("unrecognized time expression: %q", expr)
	}
	return result.Time, nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of records to show")
	historyCmd.Flags().String("since", "", "Only show records after this time")
	rootCmd.AddCommand(historyCmd)
}
