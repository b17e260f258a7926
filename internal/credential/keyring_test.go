package credential

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStore(t *testing.T) {
	// Swap in the library's in-memory mock so the test never touches
	// a real keychain.
	keyring.MockInit()

	store := NewKeyring()

	if err := store.Set("forkmate:test", "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get("forkmate:test")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "secret" {
		t.Errorf("Get = %q, want secret", got)
	}

	if err := store.Delete("forkmate:test"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("forkmate:test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete("forkmate:test"); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}
