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

// Zero represents the zero value ID, don't use this unless its a placeholder.
const Zero ID = ""

// Prefixes used for the identifiers handed out by the gateway. Keeping them
// here means log lines and database rows can be told apart at a glance.
const (
	PrefixCredential  = "cred"
	PrefixSearch      = "srch"
	PrefixCorrelation = "corr"
	PrefixSecret      = "sk"
)

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	globalOnce sync.Once
	global     *generator
)

// generator is a tool to safely generate ULIDs concurrently using a monotonic
// source.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) NewAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	u := ulid.MustNew(ulid.Timestamp(t), g.entropy)
	return ID(u.String())
}

func initGlobal() {
	src := ulid.Monotonic(rand.Reader, 0) // Max Monotonic Window
	global = &generator{entropy: src}
}

// New returns a new lexicographically sortable ULID-based ID using the
// current time in UTC and a monotonic entropy source.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt generates an ID at the provided time (UTC), useful for tests or
// constructing time-bounded cursors.
func NewAt(t time.Time) ID {
	globalOnce.Do(initGlobal)
	return global.NewAt(t)
}

// NewPrefixed returns "<prefix>_<ulid>" with the ULID lowercased, e.g.
// "srch_01hq7t3z1mz0jq3m6mzq1fq3zv".
func NewPrefixed(prefix string) string {
	return prefix + "_" + strings.ToLower(New().String())
}

// Parse parses a ULID string into an ID and validates its form.
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

// ParsePrefixed splits a prefixed id produced by NewPrefixed and validates
// the ULID part.
func ParsePrefixed(s string) (prefix string, id ID, err error) {
	prefix, rest, ok := strings.Cut(strings.TrimSpace(s), "_")
	if !ok || prefix == "" {
		return "", Zero, ErrInvalid
	}

	id, err = Parse(strings.ToUpper(rest))
	if err != nil {
		return "", Zero, err
	}
	return prefix, id, nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded UTC timestamp from the ID.
// If the ID is invalid or zero, it returns the zero time.
func (id ID) Time() time.Time {
	if id.IsZero() {
		return time.Time{}
	}

	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}

	// ULID time component is in ms since epoch.
	return ulid.Time(u.Time())
}
