package persist

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// entropy is a monotonic ULID source shared across calls so IDs minted in
// the same process still sort stably at sub-millisecond rates. ulid's
// monotonic reader is not safe for concurrent use, hence the mutex.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID mints a lexically sortable, time-ordered unique identifier. Used to
// stamp review-retry failure entries and repo-map cache provenance so both
// can be cross-referenced by mint order without a database.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
