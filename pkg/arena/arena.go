package arena

import (
	"unsafe"

	"github.com/flier/memalloc/internal/debug"
	"github.com/flier/memalloc/pkg/xunsafe"
)

// DefaultCapacity is the default size in bytes of a newly created Arena's
// bump region.
const DefaultCapacity = 128 * 1024

// Option configures an Arena at construction time. Go has no
// preprocessor, so the compile-time knobs the reference allocator exposes
// as macros (its arena size and a multiplier on it) are exposed here as
// functional options instead.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity sets the arena's bump-region capacity directly. capacity
// must be a positive multiple of maxAlign.
func WithCapacity(capacity int) Option {
	return func(c *config) { c.capacity = capacity }
}

// WithCapacityMultiplier scales DefaultCapacity by n.
func WithCapacityMultiplier(n int) Option {
	return func(c *config) { c.capacity = DefaultCapacity * n }
}

// Arena is a fixed-capacity bump region backed by per-size-class free
// lists, with an anonymous OS page mapping as a fallback once the bump
// region is exhausted.
//
// An Arena is not safe for concurrent use. The package-level Allocate,
// Free, and Resize functions hide this by resolving an implicit
// goroutine-local Arena per caller; a *Arena obtained directly from New
// must likewise only ever be touched by one goroutine at a time.
type Arena struct {
	_ xunsafe.NoCopy

	buffer    []byte
	offset    int
	freeTails []*header
	chainTail *header

	warnedInit bool
	warnedFull bool

	allocCount debug.Value[uint64]
}

// New creates a standalone Arena. Most callers should prefer the
// package-level Allocate/Free/Resize functions, which lazily resolve one
// Arena per goroutine; New is for tests, and for callers who deliberately
// want more than one arena live on a single goroutine.
func New(opts ...Option) *Arena {
	cfg := config{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	debug.Assert(cfg.capacity > 0 && cfg.capacity%maxAlign == 0,
		"arena capacity must be a positive multiple of %d, got %d", maxAlign, cfg.capacity)

	numClasses := sizeClass(cfg.capacity) + 1

	return &Arena{
		buffer:    make([]byte, cfg.capacity),
		freeTails: make([]*header, numClasses),
	}
}

// Cap returns the arena's total bump-region capacity in bytes.
func (a *Arena) Cap() int { return len(a.buffer) }

// Len returns the number of bytes of the bump region currently claimed by
// blocks in the chain, live or sitting on a free list (coalesced or not).
func (a *Arena) Len() int { return a.offset }

func (a *Arena) headerAt(offset int) *header {
	return (*header)(unsafe.Pointer(&a.buffer[offset]))
}
