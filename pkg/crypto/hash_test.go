package crypto

import "testing"

func TestHash_Deterministic(t *testing.T) {
	a := Hash([]byte("venue"))
	b := Hash([]byte("venue"))
	if a != b {
		t.Fatal("same input produced different hashes")
	}
	c := Hash([]byte("venues"))
	if a == c {
		t.Fatal("different inputs produced the same hash")
	}
	if a.IsZero() {
		t.Fatal("hash of non-empty input is zero")
	}
}

func TestAddressFromPubKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	defer key.Zero()

	addr := AddressFromPubKey(key.PublicKey())
	if addr.IsZero() {
		t.Fatal("derived address is zero")
	}

	// Derivation is deterministic for the same key.
	again := AddressFromPubKey(key.PublicKey())
	if addr != again {
		t.Fatal("address derivation not deterministic")
	}
}
