package token

import (
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealer, err := NewSealer("secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	sealed, err := sealer.Seal("user-7.1700000000")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	value, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if value != "user-7.1700000000" {
		t.Fatalf("expected original value back, got %q", value)
	}
}

func TestSealProducesFreshCiphertext(t *testing.T) {
	sealer, err := NewSealer("secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	a, _ := sealer.Seal("value")
	b, _ := sealer.Seal("value")
	if a == b {
		t.Fatalf("expected random nonces, got identical sealed values")
	}
}

func TestOpenRejectsForgery(t *testing.T) {
	sealer, err := NewSealer("secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sealed, err := sealer.Seal("user-7.1700000000")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	// Tampered ciphertext.
	tampered := []byte(sealed)
	tampered[len(tampered)-1] ^= 1
	if _, err := sealer.Open(string(tampered)); !errors.Is(err, ErrSealOpen) {
		t.Fatalf("expected ErrSealOpen for tampered value, got %v", err)
	}

	// Sealed under another key.
	other, err := NewSealer("different secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	if _, err := other.Open(sealed); !errors.Is(err, ErrSealOpen) {
		t.Fatalf("expected ErrSealOpen under wrong key, got %v", err)
	}

	// Garbage.
	for _, s := range []string{"", "%%%", "c2hvcnQ"} {
		if _, err := sealer.Open(s); !errors.Is(err, ErrSealOpen) {
			t.Fatalf("expected ErrSealOpen for %q, got %v", s, err)
		}
	}
}
