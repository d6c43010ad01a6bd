package order

import (
	"strconv"
	"sync"
	"time"
)

const (
	PrefixOrder = "ORD-"
	PrefixQuote = "QUO-"
)

// IDGenerator issues "<prefix><unix millis>" ids. The millisecond value is
// strictly increasing per generator, so orders placed in the same millisecond
// (or across a backwards clock step) still get distinct ids.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next(kind Kind) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	prefix := PrefixOrder
	if kind == KindQuote {
		prefix = PrefixQuote
	}
	return prefix + strconv.FormatInt(ms, 10)
}
