package clips

import "sync"

// Store caches each bucket's clip list for the active workspace. A
// workspace change resets every bucket.
type Store struct {
	mu      sync.Mutex
	buckets map[Bucket][]Clip
}

// NewStore constructs an empty clip cache.
func NewStore() *Store {
	return &Store{buckets: make(map[Bucket][]Clip)}
}

// Set replaces one bucket's cached list with the fetch result.
func (s *Store) Set(bucket Bucket, list []Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = append([]Clip(nil), list...)
}

// Clips returns one bucket's cached list and whether it has been loaded.
func (s *Store) Clips(bucket Bucket) ([]Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.buckets[bucket]
	if !ok {
		return nil, false
	}
	return append([]Clip(nil), list...), true
}

// Counts derives aspect-ratio tallies for one cached bucket.
func (s *Store) Counts(bucket Bucket) (Counts, bool) {
	list, ok := s.Clips(bucket)
	if !ok {
		return Counts{}, false
	}
	return Count(list), true
}

// Reset discards every cached bucket. Called on workspace change and
// logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[Bucket][]Clip)
}
