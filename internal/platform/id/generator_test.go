package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewIDIsUniqueUUID(t *testing.T) {
	gen := NewUUIDGenerator()

	seen := make(map[string]struct{}, 32)
	for i := 0; i < 32; i++ {
		value, err := gen.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, err := uuid.Parse(value); err != nil {
			t.Fatalf("id %q is not a uuid: %v", value, err)
		}
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = struct{}{}
	}
}

func TestSequence_ExhaustsInOrder(t *testing.T) {
	seq := NewSequence("a", "b")

	for _, want := range []string{"a", "b"} {
		got, err := seq.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
	if _, err := seq.NewID(); err == nil {
		t.Fatalf("expected error after sequence exhausted")
	}
}
