package perf

import (
	"sync"
	"time"
)

// store holds per-key sample buffers. All mutations happen under mu;
// reads copy under the lock so readers never observe a torn bucket and
// never hold the lock beyond the copy itself.
type store struct {
	mu        sync.RWMutex
	buckets   map[EndpointKey][]MetricSample
	maxPerKey int           // 0 = unbounded
	maxAge    time.Duration // 0 = unbounded
	now       func() time.Time
}

func newStore(maxPerKey int, maxAge time.Duration, now func() time.Time) *store {
	if now == nil {
		now = time.Now
	}
	return &store{
		buckets:   make(map[EndpointKey][]MetricSample),
		maxPerKey: maxPerKey,
		maxAge:    maxAge,
		now:       now,
	}
}

// append adds one sample to its bucket, evicting oldest-first when the
// per-key bound is reached and dropping samples past the age bound.
func (s *store) append(sample MetricSample) {
	key := sample.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[key]
	bucket = s.pruneExpired(bucket)

	if s.maxPerKey > 0 && len(bucket) >= s.maxPerKey {
		drop := len(bucket) - s.maxPerKey + 1
		bucket = bucket[drop:]
	}

	s.buckets[key] = append(bucket, sample)
}

// pruneExpired drops samples older than the age bound. Samples are
// appended in arrival order, so expiry removes a prefix.
func (s *store) pruneExpired(bucket []MetricSample) []MetricSample {
	if s.maxAge <= 0 || len(bucket) == 0 {
		return bucket
	}
	cutoff := s.now().Add(-s.maxAge)
	first := len(bucket)
	for i, sample := range bucket {
		if sample.Timestamp.After(cutoff) {
			first = i
			break
		}
	}
	return bucket[first:]
}

// snapshot returns a copy of one bucket's retained samples.
// The second return is false if the key has no samples.
func (s *store) snapshot(key EndpointKey) ([]MetricSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.pruneExpired(s.buckets[key])
	if len(bucket) == 0 {
		return nil, false
	}
	out := make([]MetricSample, len(bucket))
	copy(out, bucket)
	return out, true
}

// snapshotAll returns a copy of every non-empty bucket.
func (s *store) snapshotAll() map[EndpointKey][]MetricSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[EndpointKey][]MetricSample, len(s.buckets))
	for key, bucket := range s.buckets {
		bucket = s.pruneExpired(bucket)
		if len(bucket) == 0 {
			continue
		}
		cp := make([]MetricSample, len(bucket))
		copy(cp, bucket)
		out[key] = cp
	}
	return out
}

// clear removes one bucket atomically. No reader sees a partially
// cleared key; unrelated keys are unaffected.
func (s *store) clear(key EndpointKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
}

// clearAll removes every bucket atomically.
func (s *store) clearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[EndpointKey][]MetricSample)
}
