// Package idgen supplies opaque unique identifiers. The ledger treats the
// generator as a capability so tests can substitute a deterministic sequence.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

type Generator interface {
	NewID() string
}

// UUID generates random version-4 UUIDs. This is the production generator.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence generates "prefix-1", "prefix-2", ... for deterministic tests.
// Not safe for concurrent use.
type Sequence struct {
	Prefix string
	n      int
}

func (s *Sequence) NewID() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}
