package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	g := NewUUIDGenerator()

	a, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	b, _ := g.NewID()
	if a == b {
		t.Fatalf("expected distinct ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("id %q is not a uuid: %v", a, err)
	}
}
