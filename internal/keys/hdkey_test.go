package keys

import (
	"bytes"
	"testing"
)

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		"",
	)
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}

func TestNewMasterKey(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	if !master.IsPrivate() {
		t.Error("master key should be private")
	}

	if _, err := NewMasterKey([]byte("short")); err == nil {
		t.Error("expected error for short seed")
	}
}

func TestDeriveIdentity_Deterministic(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}

	a, err := master.DeriveIdentity(0)
	if err != nil {
		t.Fatalf("DeriveIdentity(0) error: %v", err)
	}
	b, err := master.DeriveIdentity(0)
	if err != nil {
		t.Fatalf("DeriveIdentity(0) error: %v", err)
	}
	if a.Address() != b.Address() {
		t.Error("same path derived different addresses")
	}

	c, err := master.DeriveIdentity(1)
	if err != nil {
		t.Fatalf("DeriveIdentity(1) error: %v", err)
	}
	if a.Address() == c.Address() {
		t.Error("different accounts derived the same address")
	}
}

func TestHDKey_KeyMaterial(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	key, err := master.DeriveIdentity(0)
	if err != nil {
		t.Fatalf("DeriveIdentity() error: %v", err)
	}

	priv := key.PrivateKeyBytes()
	if len(priv) != 32 {
		t.Errorf("private key length = %d, want 32", len(priv))
	}
	pub := key.PublicKeyBytes()
	if len(pub) != 33 {
		t.Errorf("public key length = %d, want 33", len(pub))
	}

	// The signer's public key matches the HD key's.
	signer, err := key.Signer()
	if err != nil {
		t.Fatalf("Signer() error: %v", err)
	}
	defer signer.Zero()
	if !bytes.Equal(signer.PublicKey(), pub) {
		t.Error("signer public key differs from HD public key")
	}
}

func TestNeuter(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	key, err := master.DeriveIdentity(0)
	if err != nil {
		t.Fatalf("DeriveIdentity() error: %v", err)
	}

	pub := key.Neuter()
	if pub.IsPrivate() {
		t.Error("neutered key is still private")
	}
	if pub.PrivateKeyBytes() != nil {
		t.Error("neutered key exposes private bytes")
	}
	if pub.Address() != key.Address() {
		t.Error("neutered key address differs")
	}
	if _, err := pub.Signer(); err == nil {
		t.Error("expected error creating signer from public key")
	}
}
