// Package idx generates the identifiers used for accounts, tasks and
// refresh tokens: lexicographically sortable ULIDs.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

// Generator produces ULIDs from a monotonic entropy source, so IDs minted
// within the same millisecond still sort in creation order.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewGenerator returns a generator using now as its clock. A nil clock
// means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

// New returns an ID stamped with the generator's clock.
func (g *Generator) New() ID {
	return g.NewAt(g.now())
}

// NewAt returns an ID stamped with t.
func (g *Generator) NewAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t.UTC()), g.entropy).String())
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

func def() *Generator {
	defaultOnce.Do(func() { defaultGen = NewGenerator(nil) })
	return defaultGen
}

// New returns an ID for the current time from the package generator.
func New() ID { return def().New() }

// NewAt returns an ID for t from the package generator.
func NewAt(t time.Time) ID { return def().NewAt(t) }

// Parse validates s as a ULID. Path parameters go through here before
// they reach the store.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

func (id ID) String() string { return string(id) }

// Time extracts the embedded timestamp, or the zero time for invalid IDs.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// Compare orders a and b lexically, which for ULIDs is creation order.
func Compare(a, b ID) int {
	return strings.Compare(string(a), string(b))
}
