package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLocks serializes work per profile without keeping a mutex per
// profile alive. Distinct profiles may share a stripe.
type stripedLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLocks) lock(profileID string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(profileID))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
