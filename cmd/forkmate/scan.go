package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/config"
	"github.com/forkmate/forkmate/internal/credential"
	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/discover"
	"github.com/forkmate/forkmate/internal/host"
	"github.com/forkmate/forkmate/internal/model"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for repos on disk and via host APIs",
	Long: `Scan lists the repos each host knows about, walks your scan paths for
local git clones, and reconciles the two by remote URL.

Remote repos with no local clone are tracked from the API listing.
Local clones matching a remote repo are tracked with their path.

Example:
  forkmate scan                    # all hosts, configured scan paths
  forkmate scan --path ~/src       # scan one directory
  forkmate scan --host gh          # scan one host`,
	Run: func(cmd *cobra.Command, args []string) {
		pathFlag, _ := cmd.Flags().GetString("path")
		hostFlag, _ := cmd.Flags().GetString("host")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		scanPaths := cfg.ScanPaths
		if pathFlag != "" {
			scanPaths = []string{pathFlag}
		}
		if len(scanPaths) == 0 {
			fmt.Println("No scan paths configured. Use --path or add scan_paths to config.")
			return
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

		store := credential.NewKeyring()
		logger := componentLogger("[scan] ")

		for i := range hosts {
			h := &hosts[i]
			fmt.Printf("\nScanning host: %s (%s)\n", h.Label, h.Kind)

			result, tracked, err := scanHost(ctx, catalog, store, h, scanPaths, cfg.MaxScanDepth, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("  Matched: %d  |  Local-only: %d  |  Remote-only: %d\n",
				result.MatchedCount(), result.LocalOnlyCount(), result.RemoteOnlyCount())
			if tracked > 0 {
				fmt.Printf("  Tracked %d new repos.\n", tracked)
			}
		}

		all, err := catalog.ListRepos(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nTotal tracked repos: %d\n", len(all))
	},
}

// scanHost discovers repos for one host and records anything new in
// the catalog. It returns the reconciliation result and how many
// repos were newly tracked.
func scanHost(ctx context.Context, catalog *db.DB, store credential.Store, h *model.Host, scanPaths []string, maxDepth int, logger *log.Logger) (*discover.Result, int, error) {
	token, err := store.Get(h.CredentialKey)
	if err != nil {
		return nil, 0, fmt.Errorf("no token for host %q: %w", h.Label, err)
	}

	provider := host.NewProvider(h.Kind, h.APIURL, token, h.Username)
	result, err := discover.Discover(ctx, provider, h.Label, scanPaths, maxDepth)
	if err != nil {
		return nil, 0, fmt.Errorf("scan of host %q failed: %w", h.Label, err)
	}
	logger.Printf("Host %s: %d matched, %d local-only, %d remote-only",
		h.Label, result.MatchedCount(), result.LocalOnlyCount(), result.RemoteOnlyCount())

	tracked, err := trackDiscoveries(ctx, catalog, h, result, logger)
	return result, tracked, err
}

// trackDiscoveries writes discoveries into the catalog. Remote-only
// repos enter from the API listing, matched repos enter with their
// local path, and an already-tracked repo with no recorded path picks
// its path up here. Local-only repos are reported but never tracked.
func trackDiscoveries(ctx context.Context, catalog *db.DB, h *model.Host, result *discover.Result, logger *log.Logger) (int, error) {
	tracked := 0
	for _, m := range result.Matches {
		switch match := m.(type) {
		case discover.RemoteOnly:
			existing, err := catalog.GetRepoByFullName(ctx, h.ID, match.Remote.FullName)
			if err != nil {
				return tracked, err
			}
			if existing != nil {
				continue
			}
			repo := repoFromRemote(match.Remote, h.ID, model.SourceAPI)
			if err := catalog.InsertRepo(ctx, repo); err != nil {
				return tracked, err
			}
			logger.Printf("Tracked %s from API listing", repo.FullName)
			tracked++

		case discover.Matched:
			existing, err := catalog.GetRepoByFullName(ctx, h.ID, match.Remote.FullName)
			if err != nil {
				return tracked, err
			}
			if existing == nil {
				repo := repoFromRemote(match.Remote, h.ID, model.SourceFilesystem)
				repo.LocalPath = match.Local.Path
				if err := catalog.InsertRepo(ctx, repo); err != nil {
					return tracked, err
				}
				logger.Printf("Tracked %s at %s", repo.FullName, repo.LocalPath)
				tracked++
			} else if existing.LocalPath == "" {
				if err := catalog.UpdateRepoLocalPath(ctx, existing.ID, match.Local.Path); err != nil {
					return tracked, err
				}
				logger.Printf("Recorded local path for %s: %s", existing.FullName, match.Local.Path)
			}
		}
	}
	return tracked, nil
}

// repoFromRemote converts a host API listing into a catalog row.
func repoFromRemote(r host.RemoteRepo, hostID model.HostID, source model.DiscoverySource) *model.Repo {
	repo := model.NewRepo(r.FullName, hostID, r.CloneURL, r.DefaultBranch, source)
	repo.IsFork = r.IsFork
	repo.UpstreamFullName = r.UpstreamFullName
	return repo
}

func init() {
	scanCmd.Flags().String("path", "", "Directory to scan for local repos")
	scanCmd.Flags().String("host", "", "Only scan for a specific host")
	rootCmd.AddCommand(scanCmd)
}
