package random

import "testing"

func TestNewSeedProducesDistinctValues(t *testing.T) {
	first, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	second, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct seeds, got %d twice", first)
	}
}

func TestNewChaCha8KeyProducesDistinctKeys(t *testing.T) {
	first, err := NewChaCha8Key()
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	second, err := NewChaCha8Key()
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct keys")
	}
}
