package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/config"
	"github.com/forkmate/forkmate/internal/credential"
	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/forksync"
	"github.com/forkmate/forkmate/internal/git"
	"github.com/forkmate/forkmate/internal/host"
	"github.com/forkmate/forkmate/internal/model"
)

var syncCmd = &cobra.Command{
	Use:   "sync <target>",
	Short: "Sync forks with their upstreams",
	Long: `Sync brings forks up to date with their upstream repos.

The target is a repo name, a full name (owner/repo), or "all" to sync
every tracked fork. Forks without a local clone are cloned under
~/.forkmate/repos first.

Example:
  forkmate sync all --dry-run
  forkmate sync widget --strategy rebase`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		strategyFlag, _ := cmd.Flags().GetString("strategy")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		strategy := cfg.DefaultMergeStrategy
		if strategyFlag != "" {
			strategy, err = model.ParseMergeStrategy(strategyFlag)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if concurrency <= 0 {
			concurrency = cfg.SyncConcurrency
		}

		cloneBase, err := config.CloneBase()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.MkdirAll(cloneBase, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		runner := git.New(time.Duration(cfg.GitTimeoutSecs) * time.Second)
		if err := runner.CheckVersion(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()

		var forks []model.Repo
		if target == "all" {
			forks, err = catalog.ListForkRepos(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if len(forks) == 0 {
				fmt.Println("No forks tracked. Use `forkmate scan` to discover repos.")
				return
			}
			fmt.Printf("Syncing %d forks...\n", len(forks))
		} else {
			repo, err := findRepo(ctx, catalog, target)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if !repo.IsFork {
				fmt.Fprintf(os.Stderr, "Error: %s is not a fork\n", repo.FullName)
				os.Exit(1)
			}
			if repo.UpstreamFullName == "" {
				fmt.Fprintf(os.Stderr, "Error: no upstream known for %s\n", repo.FullName)
				os.Exit(1)
			}
			forks = []model.Repo{*repo}
			fmt.Printf("Syncing %s (strategy: %s)...\n", repo.FullName, strategy)
			if dryRun {
				fmt.Println("  (dry run)")
			}
		}

		resolver := newUpstreamResolver(catalog, credential.NewKeyring())
		var pairs []forksync.Pair
		for i := range forks {
			fork := &forks[i]
			if fork.UpstreamFullName == "" {
				fmt.Printf("  Skipping %s: no upstream known\n", fork.FullName)
				continue
			}
			pairs = append(pairs, forksync.Pair{
				Repo:        fork,
				UpstreamURL: resolver.cloneURL(ctx, fork),
			})
		}

		engine := forksync.NewEngine(forksync.New(runner, componentLogger("[sync] ")), concurrency)
		if target == "all" {
			engine.Progress = printProgress
		}

		results := engine.SyncAll(ctx, pairs, forksync.Options{
			CloneBase: cloneBase,
			Strategy:  strategy,
			DryRun:    dryRun,
		})

		// Dry runs leave no trace in the catalog.
		if !dryRun {
			for i := range results {
				rec := results[i].Record
				if err := catalog.InsertSyncRecord(ctx, rec); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: could not record sync of %s: %v\n", results[i].RepoFullName, err)
					continue
				}
				if rec.Status == model.StatusSuccess {
					if err := catalog.UpdateRepoLastSynced(ctx, rec.RepoID, rec.FinishedAt); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
					}
					refreshSnapshot(ctx, catalog, runner, pairs[i].Repo, cloneBase)
				}
			}
		}

		if target == "all" {
			synced, failed, skipped := tallyResults(results)
			fmt.Printf("\nSync complete: %d synced | %d failed | %d skipped\n", synced, failed, skipped)
			for i := range results {
				rec := results[i].Record
				if len(rec.Errors) > 0 {
					fmt.Printf("\nErrors for %s:\n", results[i].RepoFullName)
					for _, e := range rec.Errors {
						fmt.Printf("  %s\n", e)
					}
				}
			}
		} else if len(results) == 1 {
			printSingleResult(results[0], forks[0].DefaultBranch)
		}
	},
}

// printProgress reports one finished repo during a multi-fork sync.
// The engine calls it from worker goroutines; single Printf calls
// keep lines intact.
func printProgress(res forksync.Result) {
	rec := res.Record
	switch rec.Status {
	case model.StatusFailed:
		fmt.Printf("  %s %s\n", errorStyle.Render("✗"), res.RepoFullName)
	case model.StatusSkipped:
		fmt.Printf("  [dry-run] %s: %d commits behind\n", res.RepoFullName, rec.CommitsTransferred)
	default:
		fmt.Printf("  %s %s: %d commits\n", syncedStyle.Render("✓"), res.RepoFullName, rec.CommitsTransferred)
	}
}

// printSingleResult details the outcome of a single-repo sync.
func printSingleResult(res forksync.Result, branch string) {
	rec := res.Record
	switch rec.Status {
	case model.StatusSuccess:
		fmt.Printf("  Synced: %d commits transferred on %s\n", rec.CommitsTransferred, branch)
	case model.StatusSkipped:
		fmt.Printf("  [dry-run] %d commits behind on %s\n", rec.CommitsTransferred, branch)
	case model.StatusPartialSuccess:
		fmt.Println("  Partial success")
	case model.StatusFailed:
		fmt.Println("  Failed:")
		for _, e := range rec.Errors {
			fmt.Printf("    %s\n", e)
		}
	}
}

func tallyResults(results []forksync.Result) (synced, failed, skipped int) {
	for i := range results {
		switch results[i].Record.Status {
		case model.StatusSuccess:
			synced++
		case model.StatusFailed:
			failed++
		case model.StatusSkipped:
			skipped++
		}
	}
	return synced, failed, skipped
}

// upstreamResolver resolves upstream clone URLs, holding one provider
// per host. A host or token that cannot be loaded falls through to
// the public URL form.
type upstreamResolver struct {
	catalog   *db.DB
	store     credential.Store
	providers map[model.HostID]host.Provider
}

func newUpstreamResolver(catalog *db.DB, store credential.Store) *upstreamResolver {
	return &upstreamResolver{
		catalog:   catalog,
		store:     store,
		providers: make(map[model.HostID]host.Provider),
	}
}

// cloneURL returns where to fetch the fork's upstream from. The host
// API answers when it can; otherwise the upstream name is assumed to
// live on github.com.
func (r *upstreamResolver) cloneURL(ctx context.Context, fork *model.Repo) string {
	fallback := "https://github.com/" + fork.UpstreamFullName + ".git"

	owner, name, ok := strings.Cut(fork.UpstreamFullName, "/")
	if !ok {
		return fallback
	}
	provider := r.providerFor(ctx, fork.HostID)
	if provider == nil {
		return fallback
	}
	up, err := provider.GetRepo(ctx, owner, name)
	if err != nil || up == nil || up.CloneURL == "" {
		return fallback
	}
	return up.CloneURL
}

func (r *upstreamResolver) providerFor(ctx context.Context, hostID model.HostID) host.Provider {
	if p, cached := r.providers[hostID]; cached {
		return p
	}
	var p host.Provider
	if h, err := r.catalog.GetHostByID(ctx, hostID); err == nil && h != nil {
		if token, err := r.store.Get(h.CredentialKey); err == nil {
			p = host.NewProvider(h.Kind, h.APIURL, token, h.Username)
		}
	}
	r.providers[hostID] = p
	return p
}

// refreshSnapshot records where the default branch stands after a
// successful sync. Best effort: a repo that moved underneath us just
// keeps its previous snapshot.
func refreshSnapshot(ctx context.Context, catalog *db.DB, runner *git.Runner, repo *model.Repo, cloneBase string) {
	dir := repo.LocalPath
	if dir == "" {
		dir = filepath.Join(cloneBase, repo.Name)
	}
	branch := repo.DefaultBranch
	upstreamRef := "upstream/" + branch

	localSHA := runner.RevParse(ctx, dir, branch)
	if localSHA == "" {
		return
	}
	remoteSHA := runner.RevParse(ctx, dir, "origin/"+branch)
	upstreamSHA := runner.RevParse(ctx, dir, upstreamRef)
	behind, _ := runner.RevListCount(ctx, dir, branch, upstreamRef)
	ahead, _ := runner.RevListCount(ctx, dir, upstreamRef, branch)

	snap := &model.BranchSnapshot{
		RepoID:      repo.ID,
		Branch:      branch,
		LocalSHA:    localSHA,
		RemoteSHA:   remoteSHA,
		UpstreamSHA: upstreamSHA,
		BehindCount: behind,
		AheadCount:  ahead,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := catalog.UpsertBranchSnapshot(ctx, snap); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record snapshot for %s: %v\n", repo.FullName, err)
	}
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Show what would be done without making changes")
	syncCmd.Flags().String("strategy", "", "Override merge strategy (ff, merge, rebase, force_push)")
	syncCmd.Flags().Int("concurrency", 0, "Max forks synced at once (defaults to config)")
	rootCmd.AddCommand(syncCmd)
}
