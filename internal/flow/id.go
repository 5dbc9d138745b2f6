package flow

import (
	"fmt"
	"sync"
	"time"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// newCardID returns a millisecond-timestamp record id. Successive calls in
// the same millisecond bump the counter so ids stay unique and ordered.
func newCardID() string {
	idMu.Lock()
	defer idMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return fmt.Sprintf("card_%d", now)
}
