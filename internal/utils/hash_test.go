package utils

import "testing"

func TestHashString_Deterministic(t *testing.T) {
	a := HashString("payload", "key")
	b := HashString("payload", "key")
	if a != b {
		t.Fatalf("expected equal hashes, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if HashString("payload", "other") == a {
		t.Fatal("expected different hash for different key")
	}
}

func TestRandomToken_Unique(t *testing.T) {
	a, err := RandomToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RandomToken(32)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("expected different tokens")
	}
}
