package arena

import (
	"unsafe"

	"github.com/timandy/routine"
)

var local = routine.NewThreadLocal[*Arena]()

// defaultCapacity is the capacity CurrentArena uses when it lazily
// creates a goroutine's arena. SetDefaultCapacity is the Go equivalent of
// overriding the reference allocator's arena-size macro at compile time,
// since Go has no preprocessor to do it with.
var defaultCapacity = DefaultCapacity

// SetDefaultCapacity overrides the capacity used by CurrentArena when it
// creates a new goroutine's arena. It has no effect on goroutines whose
// arena already exists.
func SetDefaultCapacity(n int) {
	defaultCapacity = n
}

// CurrentArena returns the calling goroutine's private Arena, creating it
// with defaultCapacity on first use.
//
// Arenas are goroutine-local, not OS-thread-local: a goroutine that is
// rescheduled onto a different OS thread keeps the same Arena, but two
// goroutines sharing one OS thread (as most do) each get their own.
func CurrentArena() *Arena {
	a := local.Get()
	if a == nil {
		a = New(WithCapacity(defaultCapacity))
		local.Set(a)
	}

	return a
}

// ResetCurrentArena discards the calling goroutine's arena. Any pointer
// previously returned by Allocate or Resize on this goroutine becomes
// invalid; the next call to Allocate, Free, or Resize creates a fresh
// arena.
func ResetCurrentArena() {
	local.Set(nil)
}

// Allocate allocates size bytes from the calling goroutine's arena. See
// Arena.Allocate.
func Allocate(size int) unsafe.Pointer {
	return CurrentArena().Allocate(size)
}

// Free releases ptr back to the calling goroutine's arena. See Arena.Free.
func Free(ptr unsafe.Pointer) {
	CurrentArena().Free(ptr)
}

// Resize grows or shrinks ptr on the calling goroutine's arena. See
// Arena.Resize.
func Resize(ptr unsafe.Pointer, newSize int) unsafe.Pointer {
	return CurrentArena().Resize(ptr, newSize)
}
