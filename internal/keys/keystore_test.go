package keys

import (
	"testing"
)

func newTestKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	return ks
}

func TestKeystore_CreateAndLoad(t *testing.T) {
	ks := newTestKeystore(t)
	seed := testSeed(t)
	password := []byte("pw")

	id, err := ks.Create("alice", seed, password, 0, fastParams())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id.Name != "alice" || id.Address.IsZero() {
		t.Errorf("identity = %+v", id)
	}

	key, err := ks.Load("alice", password)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if key.Address() != id.Address {
		t.Errorf("loaded address = %s, want %s", key.Address(), id.Address)
	}
	if !key.IsPrivate() {
		t.Error("loaded key is not private")
	}
}

func TestKeystore_DuplicateName(t *testing.T) {
	ks := newTestKeystore(t)
	seed := testSeed(t)

	if _, err := ks.Create("alice", seed, []byte("pw"), 0, fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := ks.Create("alice", seed, []byte("pw"), 1, fastParams()); err == nil {
		t.Fatal("expected error for duplicate identity name")
	}
}

func TestKeystore_WrongPassword(t *testing.T) {
	ks := newTestKeystore(t)

	if _, err := ks.Create("alice", testSeed(t), []byte("right"), 0, fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := ks.Load("alice", []byte("wrong")); err == nil {
		t.Fatal("Load() succeeded with wrong password")
	}
}

func TestKeystore_GetAndList(t *testing.T) {
	ks := newTestKeystore(t)
	seed := testSeed(t)

	ids, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("fresh keystore lists %d identities", len(ids))
	}

	created, err := ks.Create("alice", seed, []byte("pw"), 0, fastParams())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := ks.Create("bob", seed, []byte("pw"), 1, fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Get reads metadata without the password.
	got, err := ks.Get("alice")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Address != created.Address || got.Account != 0 {
		t.Errorf("Get() = %+v", got)
	}

	ids, err = ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("List() = %d identities, want 2", len(ids))
	}
}

func TestKeystore_Delete(t *testing.T) {
	ks := newTestKeystore(t)

	if _, err := ks.Create("alice", testSeed(t), []byte("pw"), 0, fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := ks.Delete("alice"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := ks.Get("alice"); err == nil {
		t.Error("Get() succeeded after Delete()")
	}
	if err := ks.Delete("alice"); err == nil {
		t.Error("expected error deleting a missing identity")
	}
}

// Identities from the same seed but different accounts get distinct
// addresses; restoring from the same seed and account reproduces the
// original address.
func TestKeystore_RestoreReproducesAddress(t *testing.T) {
	seed := testSeed(t)

	ks1 := newTestKeystore(t)
	original, err := ks1.Create("alice", seed, []byte("pw"), 0, fastParams())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	ks2 := newTestKeystore(t)
	restored, err := ks2.Create("alice-restored", seed, []byte("other"), 0, fastParams())
	if err != nil {
		t.Fatalf("Create() restore error: %v", err)
	}

	if original.Address != restored.Address {
		t.Errorf("restored address = %s, want %s", restored.Address, original.Address)
	}
}
