package signing

import (
	"github.com/signpack/signpack/signing/values"
)

// Session carries the state shared by every archive in one batch run: the
// signing cache and the run-level counters. A session is created when the
// batch starts and discarded when it completes.
type Session struct {
	cache     *Cache
	fromCache int
}

// NewSession creates a session with an empty cache.
func NewSession() *Session {
	return &Session{cache: NewCache()}
}

// LookupOrCompute delegates to the shared cache and accounts cache hits at
// the run level.
func (s *Session) LookupOrCompute(sum values.Checksum, compute func() ([]byte, error)) ([]byte, bool, error) {
	payload, hit, err := s.cache.LookupOrCompute(sum, compute)
	if hit {
		s.fromCache++
	}
	return payload, hit, err
}

// Signed returns the number of distinct artifacts signed so far.
func (s *Session) Signed() int {
	return s.cache.Len()
}

// FromCache returns the number of entries served from the cache so far.
func (s *Session) FromCache() int {
	return s.fromCache
}
