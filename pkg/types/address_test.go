package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAddress_StringRoundTrip(t *testing.T) {
	addr := Address{0x01, 0x02, 0x03, 0xAA, 0xBB}

	s := addr.String()
	if !strings.HasPrefix(s, MainnetHRP+"1") {
		t.Fatalf("address %q missing %q prefix", s, MainnetHRP)
	}

	parsed, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != addr {
		t.Errorf("round trip mismatch: got %x, want %x", parsed, addr)
	}
}

func TestAddress_ParseRawHex(t *testing.T) {
	addr := Address{0xDE, 0xAD, 0xBE, 0xEF}

	parsed, err := ParseAddress(addr.Hex())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != addr {
		t.Errorf("hex parse mismatch: got %x, want %x", parsed, addr)
	}
}

func TestAddress_ParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"vnu1",                // too short
		"not-an-address",      // garbage
		"deadbeef",            // wrong hex length
		"vnu1qqqqqqqqqqqqqqq", // bad checksum
	}
	for _, s := range cases {
		if _, err := ParseAddress(s); err == nil {
			t.Errorf("ParseAddress(%q): expected error", s)
		}
	}
}

func TestAddress_JSON(t *testing.T) {
	addr := Address{0x11, 0x22}

	data, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Address
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != addr {
		t.Errorf("JSON round trip mismatch: got %x, want %x", decoded, addr)
	}
}

func TestAddress_TestnetHRP(t *testing.T) {
	SetAddressHRP(TestnetHRP)
	defer SetAddressHRP(MainnetHRP)

	addr := Address{0x01}
	s := addr.String()
	if !strings.HasPrefix(s, TestnetHRP+"1") {
		t.Fatalf("address %q missing %q prefix", s, TestnetHRP)
	}

	parsed, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != addr {
		t.Errorf("round trip mismatch: got %x, want %x", parsed, addr)
	}
}

func TestTokenID_ParseRoundTrip(t *testing.T) {
	for _, id := range []TokenID{0, 1, 42, 1<<63 + 7} {
		parsed, err := ParseTokenID(id.String())
		if err != nil {
			t.Fatalf("ParseTokenID(%s): %v", id, err)
		}
		if parsed != id {
			t.Errorf("round trip mismatch: got %d, want %d", parsed, id)
		}
	}
	if _, err := ParseTokenID("-1"); err == nil {
		t.Error("ParseTokenID(-1): expected error")
	}
	if _, err := ParseTokenID("abc"); err == nil {
		t.Error("ParseTokenID(abc): expected error")
	}
}
