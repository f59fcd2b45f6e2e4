// Package signing implements the content-addressed deduplication that keeps
// every distinct artifact signed at most once per batch run.
package signing

import (
	"github.com/signpack/signpack/signing/entities"
	"github.com/signpack/signpack/signing/values"
)

// Cache maps a content checksum to the signed payload produced for it.
// One Cache is shared by every archive in a run; it lives in memory for the
// duration of the batch and has no eviction.
//
// The pipeline is single-threaded, so the check-then-populate sequence in
// LookupOrCompute needs no locking.
type Cache struct {
	payloads map[values.Checksum][]byte
}

// NewCache creates an empty signing cache.
func NewCache() *Cache {
	return &Cache{
		payloads: make(map[values.Checksum][]byte),
	}
}

// Get retrieves the signed payload for sum, if present.
func (c *Cache) Get(sum values.Checksum) ([]byte, bool) {
	payload, ok := c.payloads[sum]
	return payload, ok
}

// Put stores the signed payload for sum. Defensive: LookupOrCompute never
// stores on a hit, so a duplicate put indicates a programming fault.
func (c *Cache) Put(sum values.Checksum, payload []byte) error {
	if _, ok := c.payloads[sum]; ok {
		return &entities.DuplicateChecksumError{Checksum: sum}
	}
	c.payloads[sum] = payload
	return nil
}

// LookupOrCompute returns the payload for sum, invoking compute at most once
// per distinct checksum. On a hit compute is skipped entirely; on a miss its
// result is stored and returned. A compute failure stores nothing, so a
// later occurrence of the same checksum retries.
func (c *Cache) LookupOrCompute(sum values.Checksum, compute func() ([]byte, error)) (payload []byte, hit bool, err error) {
	if payload, ok := c.payloads[sum]; ok {
		return payload, true, nil
	}

	payload, err = compute()
	if err != nil {
		return nil, false, err
	}

	if err := c.Put(sum, payload); err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// Len returns the number of distinct payloads cached so far, which equals
// the number of signing invocations performed.
func (c *Cache) Len() int {
	return len(c.payloads)
}
