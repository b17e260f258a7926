package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/config"
	"github.com/forkmate/forkmate/internal/db"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Initialize and manage forkmate configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.forkmate with a default config and catalog",
	Run: func(cmd *cobra.Command, args []string) {
		home, err := config.Init()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		dbPath, err := config.DBPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Open once so the schema exists before the first real command.
		catalog, err := db.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create catalog: %v\n", err)
			os.Exit(1)
		}
		catalog.Close()

		configPath, _ := config.ConfigPath()
		fmt.Printf("Initialized forkmate at %s\n", home)
		fmt.Printf("  config:  %s\n", configPath)
		fmt.Printf("  catalog: %s\n", dbPath)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
