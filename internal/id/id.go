// Package id hands out stable record identifiers.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator mints ULIDs from a clock and an entropy source. IDs minted in
// the same millisecond increase monotonically, so one load pass yields IDs
// that sort in load order.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewGenerator builds a generator. A nil clock means time.Now and a nil
// entropy source means crypto/rand.
func NewGenerator(now func() time.Time, entropy io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{now: now, entropy: ulid.Monotonic(entropy, 0)}
}

// New returns the next ID as a 26 character string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	v, err := ulid.New(ms, g.entropy)
	if err != nil {
		// The monotonic counter ran out within this millisecond; carry on
		// from the next one.
		v = ulid.MustNew(ms+1, g.entropy)
	}
	return v.String()
}

var std = NewGenerator(nil, nil)

// New mints an ID from the process-wide generator.
func New() string {
	return std.New()
}
