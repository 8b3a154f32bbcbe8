package manager

import "time"

// cacheTTL is the staleness ceiling for cached collection reads. Mutations
// invalidate eagerly; the TTL only bounds reads between mutations.
const cacheTTL = 5 * time.Minute

// collectionCache memoizes one collection read with a timestamp. It is not
// a concurrency mechanism; the manager's lock guards it.
type collectionCache[T any] struct {
	data      []T
	fetchedAt time.Time
	valid     bool
}

// get returns the cached collection if it is present and younger than ttl.
func (c *collectionCache[T]) get(now time.Time, ttl time.Duration) ([]T, bool) {
	if !c.valid || now.Sub(c.fetchedAt) >= ttl {
		return nil, false
	}
	return c.data, true
}

func (c *collectionCache[T]) put(now time.Time, data []T) {
	c.data = data
	c.fetchedAt = now
	c.valid = true
}

func (c *collectionCache[T]) invalidate() {
	c.data = nil
	c.valid = false
}
