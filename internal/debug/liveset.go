//go:build debug

package debug

import (
	"github.com/dolthub/maphash"
)

// LiveSet is a debug-only open-addressing set of live block addresses.
//
// Tests use it to assert that no two live blocks share a start address
// across a randomised operation sequence without paying for a full
// map[uintptr]struct{} in every build. It records addresses only, not
// block sizes, so it does not detect blocks whose ranges overlap at
// different start addresses. It is not part of the
// allocator's double-free guard: production code never consults it.
type LiveSet struct {
	hasher maphash.Hasher[uintptr]
	slots  []uintptr
	used   []bool
	count  int
}

// NewLiveSet returns an empty LiveSet with capacity slots (at least 8). The
// set doubles its slots once half of them are in use.
func NewLiveSet(capacity int) *LiveSet {
	if capacity < 8 {
		capacity = 8
	}
	return &LiveSet{
		hasher: maphash.NewHasher[uintptr](),
		slots:  make([]uintptr, capacity),
		used:   make([]bool, capacity),
	}
}

// Add inserts addr, returning false if it was already present.
func (s *LiveSet) Add(addr uintptr) bool {
	if s.count*2 >= len(s.slots) {
		s.grow()
	}

	i, found := s.find(addr)
	if found {
		return false
	}

	s.slots[i] = addr
	s.used[i] = true
	s.count++

	return true
}

// Remove deletes addr, returning false if it was not present.
//
// This uses a simple tombstone-free removal: since LiveSet is only ever
// used inside one test at a time and never iterated while mutating, a
// linear rebuild on removal keeps the implementation small.
func (s *LiveSet) Remove(addr uintptr) bool {
	i, found := s.find(addr)
	if !found {
		return false
	}

	s.used[i] = false
	s.count--

	s.rehashFrom(i)

	return true
}

// Contains reports whether addr is present.
func (s *LiveSet) Contains(addr uintptr) bool {
	_, found := s.find(addr)
	return found
}

// Len returns the number of live addresses tracked.
func (s *LiveSet) Len() int { return s.count }

func (s *LiveSet) find(addr uintptr) (int, bool) {
	mask := len(s.slots) - 1
	i := int(s.hasher.Hash(addr)) & mask

	for probes := 0; probes < len(s.slots); probes++ {
		if !s.used[i] {
			return i, false
		}
		if s.slots[i] == addr {
			return i, true
		}
		i = (i + 1) & mask
	}

	return -1, false
}

func (s *LiveSet) grow() {
	old := s.slots
	oldUsed := s.used

	s.slots = make([]uintptr, len(old)*2)
	s.used = make([]bool, len(old)*2)
	s.count = 0

	for i, addr := range old {
		if oldUsed[i] {
			s.Add(addr)
		}
	}
}

// rehashFrom repairs the probe chain after a deletion at i, by re-inserting
// every entry in the cluster following i. Open-addressing sets must do this
// (or use tombstones) or later lookups of still-present keys can find a
// false "not found" once a hole appears mid-chain.
func (s *LiveSet) rehashFrom(i int) {
	mask := len(s.slots) - 1
	j := (i + 1) & mask

	for s.used[j] {
		addr := s.slots[j]
		s.used[j] = false
		s.count--

		k, _ := s.find(addr)
		s.slots[k] = addr
		s.used[k] = true
		s.count++

		j = (j + 1) & mask
	}
}
