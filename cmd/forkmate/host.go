package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/forkmate/forkmate/internal/credential"
	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/host"
	"github.com/forkmate/forkmate/internal/model"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Manage git hosting services",
}

var hostAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Register a new hosting service",
	Long: `Register a hosting service under a short label (e.g. "gh", "work-gl").

The API token goes into the OS keychain, never into the catalog. When
--token is omitted the token is prompted for, masked on a terminal.

Example:
  forkmate host add gh --provider github --user octocat`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		label := args[0]
		providerName, _ := cmd.Flags().GetString("provider")
		username, _ := cmd.Flags().GetString("user")
		token, _ := cmd.Flags().GetString("token")

		kind, err := model.ParseKind(providerName)
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

		existing, err := catalog.GetHostByLabel(ctx, label)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if existing != nil {
			fmt.Fprintf(os.Stderr, "Error: host %q already exists\n", label)
			os.Exit(1)
		}

		if token == "" {
			token, err = promptToken(label)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to read token: %v\n", err)
				os.Exit(1)
			}
		}
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: token cannot be empty")
			os.Exit(1)
		}

		h := model.NewHost(label, kind, username)

		store := credential.NewKeyring()
		if err := store.Set(h.CredentialKey, token); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to store token: %v\n", err)
			os.Exit(1)
		}

		if err := catalog.InsertHost(ctx, h); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Host %q added (%s, user: %s)\n", label, h.Kind, h.Username)
		fmt.Printf("Token stored in OS keychain as %q\n", h.CredentialKey)
	},
}

var hostListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered hosts",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()

		hosts, err := catalog.ListHosts(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(hosts) == 0 {
			fmt.Println("No hosts registered. Use `forkmate host add` to register one.")
			return
		}

		fmt.Printf("%-12s %-10s %-20s %s\n", "LABEL", "PROVIDER", "USERNAME", "API URL")
		for i := range hosts {
			h := &hosts[i]
			fmt.Printf("%-12s %-10s %-20s %s\n", h.Label, h.Kind, h.Username, h.APIURL)
		}
	},
}

var hostInfoCmd = &cobra.Command{
	Use:   "info <label>",
	Short: "Show details of a host",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		h, err := lookupHost(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Label:          %s\n", h.Label)
		fmt.Printf("Provider:       %s\n", h.Kind)
		fmt.Printf("Username:       %s\n", h.Username)
		fmt.Printf("API URL:        %s\n", h.APIURL)
		fmt.Printf("Credential key: %s\n", h.CredentialKey)

		repos, err := catalog.ListReposForHost(ctx, h.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		forks := 0
		for i := range repos {
			if repos[i].IsFork {
				forks++
			}
		}
		fmt.Printf("Tracked repos:  %d\n", len(repos))
		fmt.Printf("  Forks:        %d\n", forks)
	},
}

var hostVerifyCmd = &cobra.Command{
	Use:   "verify <label>",
	Short: "Verify credentials for a host",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		h, err := lookupHost(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		token, err := credential.NewKeyring().Get(h.CredentialKey)
		if err != nil {
			if errors.Is(err, credential.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Error: no token found in keychain for %q\n", h.Label)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}

		provider := host.NewProvider(h.Kind, h.APIURL, token, h.Username)
		valid, err := provider.ValidateCredentials(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if !valid {
			fmt.Printf("Credentials for %q are INVALID\n", h.Label)
			return
		}
		fmt.Printf("Credentials for %q are valid\n", h.Label)

		rl, err := provider.RateLimitStatus(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not fetch rate limit: %v\n", err)
			return
		}
		fmt.Printf("Rate limit: %d/%d remaining (resets %s)\n",
			rl.Remaining, rl.Limit, rl.ResetAt.Local().Format(time.RFC1123))
	},
}

var hostRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a registered host",
	Long: `Remove a host, its keychain token, and every repo tracked for it.

Sync history of the removed repos is deleted along with them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		h, err := lookupHost(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Keychain entry may already be gone; the row removal matters.
		_ = credential.NewKeyring().Delete(h.CredentialKey)

		if err := catalog.DeleteHost(ctx, h.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Host %q removed\n", h.Label)
	},
}

// lookupHost fetches one host by label, erroring when it is unknown.
func lookupHost(ctx context.Context, catalog *db.DB, label string) (*model.Host, error) {
	h, err := catalog.GetHostByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("host %q not found", label)
	}
	return h, nil
}

// promptToken reads an API token without echoing when stdin is a
// terminal, falling back to a plain line read otherwise (pipes, CI).
func promptToken(label string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		var token string
		input := huh.NewInput().
			Title(fmt.Sprintf("API token for %s", label)).
			EchoMode(huh.EchoModePassword).
			Value(&token)
		if err := input.Run(); err != nil {
			return "", err
		}
		return strings.TrimSpace(token), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	hostAddCmd.Flags().String("provider", "", "Provider type (github, gitlab, gitea, bitbucket, azure_devops)")
	hostAddCmd.Flags().String("user", "", "Username on the host")
	hostAddCmd.Flags().String("token", "", "API token (prompted for when omitted)")
	hostAddCmd.MarkFlagRequired("provider")
	hostAddCmd.MarkFlagRequired("user")

	hostCmd.AddCommand(hostAddCmd)
	hostCmd.AddCommand(hostListCmd)
	hostCmd.AddCommand(hostInfoCmd)
	hostCmd.AddCommand(hostVerifyCmd)
	hostCmd.AddCommand(hostRemoveCmd)
	rootCmd.AddCommand(hostCmd)
}
