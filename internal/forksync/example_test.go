package forksync_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/forksync"
	"github.com/forkmate/forkmate/internal/git"
	"github.com/forkmate/forkmate/internal/model"
)

// This example demonstrates syncing one fork from its upstream.
// Note: This is for documentation only and won't run as a test.
func ExampleNew() {
	runner := git.New(10 * time.Minute)
	syncer := forksync.New(runner, nil)

	repo := model.NewRepo("octocat/widget", model.NewHostID(),
		"https://github.com/octocat/widget.git", "main", model.SourceAPI)
	repo.IsFork = true
	repo.UpstreamFullName = "upstream/widget"

	res := syncer.SyncFork(context.Background(), repo,
		"https://github.com/upstream/widget.git", forksync.Options{
			CloneBase: ".forkmate/repos",
			Strategy:  model.StrategyFastForward,
		})

	fmt.Printf("%s: %s\n", res.RepoFullName, res.Record.Status)
}

// This example demonstrates syncing every tracked fork with bounded
// concurrency.
func ExampleEngine_SyncAll() {
	catalog, err := db.Open(".forkmate/forkmate.db")
	if err != nil {
		log.Fatal(err)
	}
	defer catalog.Close()

	forks, err := catalog.ListForkRepos(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	var pairs []forksync.Pair
	for i := range forks {
		pairs = append(pairs, forksync.Pair{
			Repo:        &forks[i],
			UpstreamURL: "https://github.com/" + forks[i].UpstreamFullName + ".git",
		})
	}

	engine := forksync.NewEngine(forksync.New(git.New(0), nil), 4)
	results := engine.SyncAll(context.Background(), pairs, forksync.Options{
		CloneBase: ".forkmate/repos",
		Strategy:  model.StrategyMerge,
	})

	for _, res := range results {
		fmt.Printf("%s: %s\n", res.RepoFullName, res.Record.Status)
	}
}
