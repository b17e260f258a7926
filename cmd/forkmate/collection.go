package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/model"
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Group tracked repos into named collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		description, _ := cmd.Flags().GetString("description")

		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		existing, err := catalog.GetCollectionByName(ctx, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if existing != nil {
			fmt.Fprintf(os.Stderr, "Error: collection %q already exists\n", name)
			os.Exit(1)
		}

		if err := catalog.InsertCollection(ctx, model.NewCollection(name, description)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Collection %q created\n", name)
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		cols, err := catalog.ListCollections(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(cols) == 0 {
			fmt.Println("No collections. Use `forkmate collection create` to add one.")
			return
		}

		fmt.Printf("%-20s %-8s %s\n", "NAME", "REPOS", "DESCRIPTION")
		for i := range cols {
			col := &cols[i]
			repos, err := catalog.ListCollectionRepos(ctx, col.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%-20s %-8d %s\n", col.Name, len(repos), col.Description)
		}
	},
}

var collectionShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a collection and its repos",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		col, err := lookupCollection(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		repos, err := catalog.ListCollectionRepos(ctx, col.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Collection: %s\n", col.Name)
		if col.Description != "" {
			fmt.Printf("Description: %s\n", col.Description)
		}
		fmt.Printf("Repos: %d\n", len(repos))
		for i := range repos {
			fmt.Printf("  %s\n", repos[i].FullName)
		}
	},
}

var collectionAddCmd = &cobra.Command{
	Use:   "add <name> <repo>",
	Short: "Add a repo to a collection",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		col, err := lookupCollection(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		repo, err := findRepo(ctx, catalog, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		member := model.CollectionMember{CollectionID: col.ID, RepoID: repo.ID}
		if err := catalog.AddCollectionMember(ctx, member); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added %s to %q\n", repo.FullName, col.Name)
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove <name> <repo>",
	Short: "Remove a repo from a collection",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		col, err := lookupCollection(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		repo, err := findRepo(ctx, catalog, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := catalog.RemoveCollectionMember(ctx, col.ID, repo.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %s from %q\n", repo.FullName, col.Name)
	},
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection",
	Long:  "Delete a collection. The repos in it stay tracked.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := openCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer catalog.Close()
		ctx := context.Background()

		col, err := lookupCollection(ctx, catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := catalog.DeleteCollection(ctx, col.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Collection %q deleted\n", col.Name)
	},
}

// lookupCollection fetches one collection by name, erroring when it
// is unknown.
func lookupCollection(ctx context.Context, catalog *db.DB, name string) (*model.Collection, error) {
	col, err := catalog.GetCollectionByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, fmt.Errorf("collection %q not found", name)
	}
	return col, nil
}

func init() {
	collectionCreateCmd.Flags().String("description", "", "What this collection is for")

	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)
	collectionCmd.AddCommand(collectionAddCmd)
	collectionCmd.AddCommand(collectionRemoveCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	rootCmd.AddCommand(collectionCmd)
}
