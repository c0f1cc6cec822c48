// Package arena implements a fixed-capacity, goroutine-local bump allocator
// with per-size-class free lists and an anonymous-page-mapping fallback.
//
// # Design
//
// Every allocation is preceded by a small header carrying its size, an
// origin flag (arena vs. OS-mapped), a validity flag, and four link
// fields: two that thread the block into the doubly-linked chain of every
// block currently resident in the arena (in address order), and two that
// thread it into the free list for its size class while it sits unused.
//
// Allocate tries, in order: pop a same-size block off its free list; bump
// the arena's fill offset; fall back to an anonymous OS page mapping. Free
// reverses whichever of those an allocation came from, coalescing adjacent
// freed arena blocks into larger ones along the way. Resize tries, in
// order: keep the existing block if it is already big enough; absorb a
// free trailing neighbour in place; fall back to allocate-copy-free.
//
// # Goroutine locality
//
// There is no locking and no shared state between arenas: each call to the
// package-level Allocate, Free, and Resize functions resolves the calling
// goroutine's own Arena through a goroutine-local variable. Arenas must
// never be shared across goroutines — see [Arena] for details. Callers
// that want one Arena per OS thread rather than per goroutine should pin
// the goroutine with runtime.LockOSThread first.
//
// # What this package does not do
//
// There is no compaction, no defragmentation of live allocations, no
// thread-safe shared heap, and no double-free guard beyond the validity
// flag already described above. The free-list size classes are exact-size
// buckets, not a best-fit or segregated-fit policy.
package arena
