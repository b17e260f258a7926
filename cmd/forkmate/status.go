package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/config"
	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show status of all tracked repos",
	Long: `Status lists every tracked repo grouped by host, with the behind and
ahead counts recorded at the last sync.

States:
  synced   fork matches its upstream as of the last sync
  behind   upstream has commits the fork lacks
  ahead    fork has commits the upstream lacks
  error    the last sync attempt failed
  tracked  not a fork; nothing to sync`,
	Run: func(cmd *cobra.Command, args []string) {
		hostFlag, _ := cmd.Flags().GetString("host")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		hosts, err := resolveHosts(ctx, catalog, hostFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(hosts) == 0 {
			fmt.Println("No hosts registered. Use `forkmate host add` to register one.")
			return
		}

		fmt.Printf("%-34s %-10s %6s %6s %-10s %-10s %s\n",
			"HOST / REPO", "BRANCH", "BEHIND", "AHEAD", "STRATEGY", "LAST SYNC", "STATUS")

		var synced, behind, ahead, errored int
		for i := range hosts {
			h := &hosts[i]
			fmt.Println(hostStyle.Render(fmt.Sprintf("%s (%s)", h.Label, h.Kind)))

			repos, err := catalog.ListReposForHost(ctx, h.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			for j := range repos {
				r := &repos[j]
				behindN, aheadN := defaultBranchCounts(ctx, catalog, r)
				state, style := repoState(ctx, catalog, r, behindN, aheadN)

				switch state {
				case "synced":
					synced++
				case "behind":
					behind++
				case "ahead":
					ahead++
				case "error":
					errored++
				}

				strategy := "-"
				if r.IsFork {
					strategy = string(cfg.DefaultMergeStrategy)
				}
				fmt.Printf("%-34s %-10s %6d %6d %-10s %-10s %s\n",
					"  "+r.Name, r.DefaultBranch, behindN, aheadN, strategy,
					formatTime(r.LastSyncedAt, "15:04", "-"), style.Render(state))
			}
		}

		fmt.Printf("\nSummary: %d synced | %d behind | %d ahead | %d errors\n",
			synced, behind, ahead, errored)
	},
}

// defaultBranchCounts reads the behind/ahead counts recorded for the
// repo's default branch, zero when no snapshot exists yet.
func defaultBranchCounts(ctx context.Context, catalog *db.DB, r *model.Repo) (int, int) {
	snaps, err := catalog.GetBranchSnapshots(ctx, r.ID)
	if err != nil {
		return 0, 0
	}
	for i := range snaps {
		if snaps[i].Branch == r.DefaultBranch {
			return snaps[i].BehindCount, snaps[i].AheadCount
		}
	}
	return 0, 0
}

// repoState classifies a repo for the status table. A failed last
// sync outranks behind/ahead: the failure is what needs attention.
func repoState(ctx context.Context, catalog *db.DB, r *model.Repo, behindN, aheadN int) (string, lipgloss.Style) {
	if !r.IsFork {
		return "tracked", plainStyle
	}

	if last, err := catalog.ListSyncHistory(ctx, &r.ID, nil, 1); err == nil &&
		len(last) > 0 && last[0].Status == model.StatusFailed {
		return "error", errorStyle
	}

	switch {
	case behindN > 0:
		return "behind", behindStyle
	case aheadN > 0:
		return "ahead", aheadStyle
	case r.LastSyncedAt != nil:
		return "synced", syncedStyle
	default:
		return "unknown", plainStyle
	}
}

func init() {
	statusCmd.Flags().String("host", "", "Filter by host label")
	rootCmd.AddCommand(statusCmd)
}
