package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/forkmate/forkmate/internal/config"
	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/model"
)

var (
	verbose bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "forkmate",
	Short: "Git repo sync & management across hosting services",
	Long: `Forkmate tracks the repos you own across hosting services, discovers
their local clones, and keeps your forks up to date with their upstreams.

Typical workflow:
  forkmate config init                              # create ~/.forkmate
  forkmate host add gh --provider github --user octocat
  forkmate scan --path ~/src                        # discover repos
  forkmate sync all                                 # bring forks up to date
  forkmate status                                   # see where everything stands`,
	SilenceUsage: true,
}

// Execute runs the root command. Subcommands print their own errors;
// this catches flag and usage errors from cobra itself.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write component logs to a rotating file")
}

// logWriter returns the destination for component logs: the rotating
// --log-file sink when set, stderr otherwise.
func logWriter() io.Writer {
	if logFile != "" {
		return &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return os.Stderr
}

// componentLogger builds the prefixed logger handed to internal
// components. Without --verbose or --log-file the chatter is dropped.
func componentLogger(prefix string) *log.Logger {
	if !verbose && logFile == "" {
		return log.New(io.Discard, "", 0)
	}
	return log.New(logWriter(), prefix, log.LstdFlags)
}

// openCatalog opens the catalog database at its configured location,
// creating the schema on first use.
func openCatalog() (*db.DB, error) {
	path, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	return db.Open(path)
}

// resolveHosts returns the host registered under label, or every
// registered host when label is empty.
func resolveHosts(ctx context.Context, catalog *db.DB, label string) ([]model.Host, error) {
	if label == "" {
		return catalog.ListHosts(ctx)
	}
	h, err := catalog.GetHostByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("host %q not found", label)
	}
	return []model.Host{*h}, nil
}

// findRepo locates a tracked repo by full name (owner/repo) or bare
// repo name. First match wins.
func findRepo(ctx context.Context, catalog *db.DB, target string) (*model.Repo, error) {
	repos, err := catalog.ListRepos(ctx)
	if err != nil {
		return nil, err
	}
	for i := range repos {
		if repos[i].FullName == target || repos[i].Name == target {
			return &repos[i], nil
		}
	}
	return nil, fmt.Errorf("repo %q not found", target)
}
