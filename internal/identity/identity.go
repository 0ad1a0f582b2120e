// Package identity mints opaque string ids that are unique within one
// running session: a base36 timestamp prefix plus a random suffix.
package identity

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const suffixLen = 6

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator produces session-unique ids. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	now func() time.Time
	rnd *rand.Rand
	seq uint64
}

// NewGenerator returns a Generator seeded from the wall clock.
func NewGenerator() *Generator {
	return NewGeneratorWithClock(time.Now)
}

// NewGeneratorWithClock allows deterministic timestamps in tests.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{
		now: now,
		rnd: rand.New(rand.NewSource(now().UnixNano())),
	}
}

// NewID returns a fresh id. Uniqueness holds across all entities created
// during one session; cryptographic strength is not a goal.
func (g *Generator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	// The sequence rules out same-millisecond collisions; the random
	// suffix keeps ids from separate sessions apart.
	g.seq++
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(g.now().UnixMilli(), 36))
	sb.WriteByte('-')
	sb.WriteString(strconv.FormatUint(g.seq, 36))
	sb.WriteByte('-')
	for i := 0; i < suffixLen; i++ {
		sb.WriteByte(alphabet[g.rnd.Intn(len(alphabet))])
	}
	return sb.String()
}
