package db

import (
	"context"
	"testing"

	"github.com/forkmate/forkmate/internal/model"
)

func TestHostCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	host := model.NewHost("gh", model.KindGitHub, "testuser")
	if err := db.InsertHost(ctx, host); err != nil {
		t.Fatalf("InsertHost() failed: %v", err)
	}

	found, err := db.GetHostByLabel(ctx, "gh")
	if err != nil {
		t.Fatalf("GetHostByLabel() failed: %v", err)
	}
	if found == nil {
		t.Fatal("GetHostByLabel() returned nil for existing host")
	}
	if found.ID != host.ID {
		t.Errorf("ID = %v, want %v", found.ID, host.ID)
	}
	if found.Label != "gh" || found.Kind != model.KindGitHub || found.Username != "testuser" {
		t.Errorf("host = %+v", found)
	}
	if found.CredentialKey != "forkmate:gh" {
		t.Errorf("CredentialKey = %q, want forkmate:gh", found.CredentialKey)
	}
	if found.APIURL != "https://api.github.com" {
		t.Errorf("APIURL = %q", found.APIURL)
	}

	byID, err := db.GetHostByID(ctx, host.ID)
	if err != nil {
		t.Fatalf("GetHostByID() failed: %v", err)
	}
	if byID == nil || byID.Label != "gh" {
		t.Errorf("GetHostByID() = %+v", byID)
	}

	all, err := db.ListHosts(ctx)
	if err != nil {
		t.Fatalf("ListHosts() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListHosts() returned %d hosts, want 1", len(all))
	}

	if err := db.DeleteHost(ctx, host.ID); err != nil {
		t.Fatalf("DeleteHost() failed: %v", err)
	}
	found, err = db.GetHostByLabel(ctx, "gh")
	if err != nil {
		t.Fatalf("GetHostByLabel() after delete failed: %v", err)
	}
	if found != nil {
		t.Errorf("host still present after delete: %+v", found)
	}
}

func TestListHostsOrderedByLabel(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, label := range []string{"work", "personal", "gitea-box"} {
		if err := db.InsertHost(ctx, model.NewHost(label, model.KindGitHub, "u")); err != nil {
			t.Fatalf("InsertHost(%s) failed: %v", label, err)
		}
	}

	hosts, err := db.ListHosts(ctx)
	if err != nil {
		t.Fatalf("ListHosts() failed: %v", err)
	}
	want := []string{"gitea-box", "personal", "work"}
	if len(hosts) != len(want) {
		t.Fatalf("ListHosts() returned %d hosts, want %d", len(hosts), len(want))
	}
	for i, label := range want {
		if hosts[i].Label != label {
			t.Errorf("hosts[%d].Label = %q, want %q", i, hosts[i].Label, label)
		}
	}
}

func TestInsertHostDuplicateLabel(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.InsertHost(ctx, model.NewHost("gh", model.KindGitHub, "a")); err != nil {
		t.Fatalf("InsertHost() failed: %v", err)
	}
	if err := db.InsertHost(ctx, model.NewHost("gh", model.KindGitLab, "b")); err == nil {
		t.Error("InsertHost() with duplicate label succeeded, want error")
	}
}

func TestGetHostMissing(t *testing.T) {
	db := openTestDB(t)

	host, err := db.GetHostByLabel(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetHostByLabel() failed: %v", err)
	}
	if host != nil {
		t.Errorf("GetHostByLabel() = %+v, want nil", host)
	}
}
