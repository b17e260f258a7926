package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/config"
	"github.com/forkmate/forkmate/internal/credential"
	"github.com/forkmate/forkmate/internal/daemon"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch scan paths and keep the catalog up to date",
	Long: `Watch runs in the foreground and rescans whenever repos appear or
disappear under the configured scan paths.

A debounce window folds bursts of file events into one rescan. With
--interval set, a full rescan also runs on a fixed schedule regardless
of file activity.

Example:
  forkmate watch
  forkmate watch --interval 10m --debounce 5s`,
	Run: func(cmd *cobra.Command, args []string) {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		interval, _ := cmd.Flags().GetDuration("interval")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(cfg.ScanPaths) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no scan paths configured; add scan_paths to config")
			os.Exit(1)
		}

		home, err := config.HomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// One watcher per machine. A second invocation fails fast
		// instead of fighting the first over the catalog.
		lock, err := daemon.AcquireLock(home)
		if err != nil {
			if errors.Is(err, daemon.ErrLocked) {
				fmt.Fprintln(os.Stderr, "Error: another forkmate watch is already running")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
		defer lock.Release()

		catalog, err := openCatalog()
		if err != nil {
			lock.Release()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		hosts, err := catalog.ListHosts(ctx)
		if err == nil && len(hosts) == 0 {
			err = errors.New("no hosts registered; use `forkmate host add` to register one")
		}
		if err != nil {
			lock.Release()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store := credential.NewKeyring()
		scanLogger := log.New(logWriter(), "[scan] ", log.LstdFlags)

		// Host API hiccups are logged by the daemon and retried on
		// the next cycle; they never stop the watch.
		rescan := func(ctx context.Context) error {
			var errs []error
			for i := range hosts {
				h := &hosts[i]
				if _, _, err := scanHost(ctx, catalog, store, h, cfg.ScanPaths, cfg.MaxScanDepth, scanLogger); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		}

		dcfg := daemon.DefaultConfig()
		dcfg.DebounceInterval = debounce
		dcfg.RescanInterval = interval
		dcfg.Logger = log.New(logWriter(), "[daemon] ", log.LstdFlags)

		d, err := daemon.NewWithConfig(cfg.ScanPaths, rescan, dcfg)
		if err != nil {
			lock.Release()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Watching %d scan paths for repo changes\n", len(cfg.ScanPaths))
		fmt.Println("Press Ctrl+C to stop...")

		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := d.Start(sigCtx); err != nil {
			lock.Release()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", 2*time.Second, "Quiet window after file changes before a rescan")
	watchCmd.Flags().Duration("interval", 0, "Also rescan on a fixed interval (0 disables)")
	rootCmd.AddCommand(watchCmd)
}
