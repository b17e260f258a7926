package main

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/forkmate/forkmate/internal/db"
	"github.com/forkmate/forkmate/internal/discover"
	"github.com/forkmate/forkmate/internal/host"
	"github.com/forkmate/forkmate/internal/model"
)

var discard = log.New(io.Discard, "", 0)

func testCatalog(t *testing.T) *db.DB {
	t.Helper()
	catalog, err := db.Open(filepath.Join(t.TempDir(), "forkmate.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func testHost(t *testing.T, catalog *db.DB) *model.Host {
	t.Helper()
	h := model.NewHost("gh", model.KindGitHub, "octocat")
	if err := catalog.InsertHost(context.Background(), h); err != nil {
		t.Fatalf("insert host: %v", err)
	}
	return h
}

func TestTrackDiscoveries(t *testing.T) {
	catalog := testCatalog(t)
	h := testHost(t, catalog)
	ctx := context.Background()

	result := &discover.Result{
		HostLabel: h.Label,
		Matches: []discover.Match{
			discover.RemoteOnly{Remote: host.RemoteRepo{
				FullName:         "octocat/widget",
				Owner:            "octocat",
				Name:             "widget",
				CloneURL:         "https://github.com/octocat/widget.git",
				DefaultBranch:    "main",
				IsFork:           true,
				UpstreamFullName: "upstream/widget",
			}},
			discover.Matched{
				Local: discover.ScannedRepo{Path: "/src/gadget"},
				Remote: host.RemoteRepo{
					FullName:      "octocat/gadget",
					Owner:         "octocat",
					Name:          "gadget",
					CloneURL:      "https://github.com/octocat/gadget.git",
					DefaultBranch: "main",
				},
			},
			discover.LocalOnly{Local: discover.ScannedRepo{Path: "/src/scratch"}},
		},
	}

	tracked, err := trackDiscoveries(ctx, catalog, h, result, discard)
	if err != nil {
		t.Fatalf("trackDiscoveries: %v", err)
	}
	if tracked != 2 {
		t.Errorf("tracked = %d, want 2", tracked)
	}

	widget, err := catalog.GetRepoByFullName(ctx, h.ID, "octocat/widget")
	if err != nil || widget == nil {
		t.Fatalf("widget not tracked: %v", err)
	}
	if widget.DiscoverySource != model.SourceAPI {
		t.Errorf("widget source = %s, want %s", widget.DiscoverySource, model.SourceAPI)
	}
	if !widget.IsFork || widget.UpstreamFullName != "upstream/widget" {
		t.Errorf("widget fork fields not carried over: %+v", widget)
	}
	if widget.LocalPath != "" {
		t.Errorf("widget local path = %q, want empty", widget.LocalPath)
	}

	gadget, err := catalog.GetRepoByFullName(ctx, h.ID, "octocat/gadget")
	if err != nil || gadget == nil {
		t.Fatalf("gadget not tracked: %v", err)
	}
	if gadget.DiscoverySource != model.SourceFilesystem {
		t.Errorf("gadget source = %s, want %s", gadget.DiscoverySource, model.SourceFilesystem)
	}
	if gadget.LocalPath != "/src/gadget" {
		t.Errorf("gadget local path = %q, want /src/gadget", gadget.LocalPath)
	}

	// Local-only repos are never tracked.
	all, err := catalog.ListRepos(ctx)
	if err != nil {
		t.Fatalf("list repos: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("tracked %d repos, want 2", len(all))
	}

	// A second pass over the same result tracks nothing new.
	tracked, err = trackDiscoveries(ctx, catalog, h, result, discard)
	if err != nil {
		t.Fatalf("second trackDiscoveries: %v", err)
	}
	if tracked != 0 {
		t.Errorf("second pass tracked = %d, want 0", tracked)
	}
}

func TestTrackDiscoveriesFillsMissingLocalPath(t *testing.T) {
	catalog := testCatalog(t)
	h := testHost(t, catalog)
	ctx := context.Background()

	// Tracked earlier from the API listing, so no local path yet.
	repo := model.NewRepo("octocat/widget", h.ID, "https://github.com/octocat/widget.git", "main", model.SourceAPI)
	if err := catalog.InsertRepo(ctx, repo); err != nil {
		t.Fatalf("insert repo: %v", err)
	}

	result := &discover.Result{
		HostLabel: h.Label,
		Matches: []discover.Match{
			discover.Matched{
				Local: discover.ScannedRepo{Path: "/src/widget"},
				Remote: host.RemoteRepo{
					FullName:      "octocat/widget",
					CloneURL:      "https://github.com/octocat/widget.git",
					DefaultBranch: "main",
				},
			},
		},
	}

	tracked, err := trackDiscoveries(ctx, catalog, h, result, discard)
	if err != nil {
		t.Fatalf("trackDiscoveries: %v", err)
	}
	if tracked != 0 {
		t.Errorf("tracked = %d, want 0", tracked)
	}

	got, err := catalog.GetRepoByFullName(ctx, h.ID, "octocat/widget")
	if err != nil || got == nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.LocalPath != "/src/widget" {
		t.Errorf("local path = %q, want /src/widget", got.LocalPath)
	}
}

func TestRepoFromRemote(t *testing.T) {
	hostID := model.NewHostID()
	remote := host.RemoteRepo{
		FullName:         "octocat/widget",
		Owner:            "octocat",
		Name:             "widget",
		CloneURL:         "https://github.com/octocat/widget.git",
		DefaultBranch:    "develop",
		IsFork:           true,
		UpstreamFullName: "upstream/widget",
	}

	repo := repoFromRemote(remote, hostID, model.SourceAPI)
	if repo.FullName != "octocat/widget" || repo.Owner != "octocat" || repo.Name != "widget" {
		t.Errorf("name fields wrong: %+v", repo)
	}
	if repo.HostID != hostID {
		t.Errorf("host ID not carried over")
	}
	if repo.DefaultBranch != "develop" {
		t.Errorf("default branch = %q, want develop", repo.DefaultBranch)
	}
	if !repo.IsFork || repo.UpstreamFullName != "upstream/widget" {
		t.Errorf("fork fields wrong: %+v", repo)
	}
}
