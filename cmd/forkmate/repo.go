package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/model"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage tracked repos",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked repos",
	Run: func(cmd *cobra.Command, args []string) {
		forksOnly, _ := cmd.Flags().GetBool("forks")
		hostFlag, _ := cmd.Flags().GetString("host")
		output, _ := cmd.Flags().GetString("output")

		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		var repos []model.Repo
		switch {
		case forksOnly:
			repos, err = catalog.ListForkRepos(ctx)
		case hostFlag != "":
			var hosts []model.Host
			hosts, err = resolveHosts(ctx, catalog, hostFlag)
			if err == nil {
				repos, err = catalog.ListReposForHost(ctx, hosts[0].ID)
			}
		default:
			repos, err = catalog.ListRepos(ctx)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if output != "table" {
			if err := renderOutput(repos, output); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if len(repos) == 0 {
			fmt.Println("No repos tracked. Use `forkmate scan` to discover repos.")
			return
		}

		fmt.Printf("%-40s %-6s %-10s %-12s %s\n", "REPO", "FORK", "BRANCH", "SOURCE", "LAST SYNC")
		for i := range repos {
			r := &repos[i]
			fork := "no"
			if r.IsFork {
				fork = "yes"
			}
			fmt.Printf("%-40s %-6s %-10s %-12s %s\n",
				r.FullName, fork, r.DefaultBranch, r.DiscoverySource,
				formatTime(r.LastSyncedAt, "2006-01-02 15:04", "never"))
		}
		fmt.Printf("\n%d repos total\n", len(repos))
	},
}

var repoInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show details of a repo",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		r, err := findRepo(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Full name:       %s\n", r.FullName)
		fmt.Printf("Owner:           %s\n", r.Owner)
		fmt.Printf("Name:            %s\n", r.Name)
		fmt.Printf("Clone URL:       %s\n", r.CloneURL)
		fmt.Printf("Default branch:  %s\n", r.DefaultBranch)
		fmt.Printf("Fork:            %t\n", r.IsFork)
		if r.UpstreamFullName != "" {
			fmt.Printf("Upstream:        %s\n", r.UpstreamFullName)
		}
		if r.LocalPath != "" {
			fmt.Printf("Local path:      %s\n", r.LocalPath)
		}
		fmt.Printf("Discovery:       %s\n", r.DiscoverySource)
		fmt.Printf("Last synced:     %s\n", formatTime(r.LastSyncedAt, "2006-01-02 15:04:05", "never"))

		snaps, err := catalog.GetBranchSnapshots(ctx, r.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(snaps) > 0 {
			fmt.Println("\nBranches:")
			for i := range snaps {
				s := &snaps[i]
				fmt.Printf("  %s: behind=%d ahead=%d\n", s.Branch, s.BehindCount, s.AheadCount)
			}
		}
	},
}

func init() {
	repoListCmd.Flags().Bool("forks", false, "Show only forks")
	repoListCmd.Flags().String("host", "", "Filter by host label")
	repoListCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")

	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoInfoCmd)
	rootCmd.AddCommand(repoCmd)
}
