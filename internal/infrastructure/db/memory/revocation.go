package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationList is the in-process fallback used when Redis is not
// configured. Entries are dropped lazily once expired.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time), now: time.Now}
}

func (r *RevocationList) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tokenID] = r.now().Add(ttl)
	return nil
}

func (r *RevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expires, ok := r.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expires) {
		delete(r.entries, tokenID)
		return false, nil
	}
	return true, nil
}
