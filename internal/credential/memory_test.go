package credential

import (
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemory()

	if err := store.Set("forkmate:work", "tok-123"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get("forkmate:work")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("Get = %q, want tok-123", got)
	}

	// Overwrite replaces the previous value.
	if err := store.Set("forkmate:work", "tok-456"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := store.Get("forkmate:work"); got != "tok-456" {
		t.Errorf("Get after overwrite = %q, want tok-456", got)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemory()

	if _, err := store.Get("forkmate:nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing key error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemory()

	if err := store.Set("forkmate:tmp", "tok"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("forkmate:tmp"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("forkmate:tmp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}

	// Deleting a key that was never stored succeeds.
	if err := store.Delete("forkmate:never"); err != nil {
		t.Errorf("Delete missing key = %v, want nil", err)
	}
}
