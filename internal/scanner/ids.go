package scanner

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for scanned documents. Implementations
// must be safe for concurrent use; a generator is the only state shared
// between concurrent scans.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs. It is the default.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequentialGenerator issues Prefix1, Prefix2, ... in call order.
type SequentialGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequentialGenerator returns a generator starting at 1.
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	return &SequentialGenerator{Prefix: prefix}
}

// NewID implements IDGenerator.
func (g *SequentialGenerator) NewID() string {
	return fmt.Sprintf("%s%d", g.Prefix, g.n.Add(1))
}
