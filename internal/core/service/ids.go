package service

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// newAuditID returns a lexicographically sortable identifier for audit entries.
func newAuditID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// newRecordID returns a protocol number in the format PRT-XXXXXX.
func newRecordID() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("PRT-%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("PRT-%06X", b)
}
