package arena_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/memalloc/pkg/arena"
)

func bytesAt(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

func fill(p unsafe.Pointer, n int, b byte) {
	buf := bytesAt(p, n)
	for i := range buf {
		buf[i] = b
	}
}

func TestArenaAllocate(t *testing.T) {
	Convey("Given a fresh arena", t, func() {
		a := arena.New(arena.WithCapacity(4096))

		Convey("When allocating zero bytes", func() {
			p := a.Allocate(0)

			Convey("It returns a non-nil, usable pointer", func() {
				So(p, ShouldNotBeNil)
			})
		})

		Convey("When allocating a small block", func() {
			p := a.Allocate(32)

			Convey("It returns a non-nil pointer", func() {
				So(p, ShouldNotBeNil)
			})

			Convey("And the payload is writable for its full requested size", func() {
				fill(p, 32, 0xAB)
				buf := bytesAt(p, 32)
				for _, b := range buf {
					So(b, ShouldEqual, byte(0xAB))
				}
			})
		})

		Convey("When allocating two blocks back to back", func() {
			p1 := a.Allocate(16)
			p2 := a.Allocate(16)

			Convey("They occupy distinct, non-overlapping addresses", func() {
				So(p1, ShouldNotEqual, p2)

				a1 := uintptr(p1)
				a2 := uintptr(p2)
				diff := a2 - a1
				if a1 > a2 {
					diff = a1 - a2
				}

				So(diff, ShouldBeGreaterThanOrEqualTo, uintptr(16))
			})
		})

		Convey("When a request exceeds the arena's capacity", func() {
			p := a.Allocate(1 << 20)

			Convey("It still succeeds via the OS mapping fallback", func() {
				So(p, ShouldNotBeNil)
			})
		})
	})
}

func TestArenaFree(t *testing.T) {
	Convey("Given an arena with one live allocation", t, func() {
		a := arena.New(arena.WithCapacity(4096))
		p := a.Allocate(64)

		Convey("When freeing it", func() {
			a.Free(p)

			Convey("A subsequent allocation of the same size reuses the freed block", func() {
				q := a.Allocate(64)
				So(q, ShouldEqual, p)
			})
		})

		Convey("When freeing nil", func() {
			Convey("It does not panic", func() {
				So(func() { a.Free(nil) }, ShouldNotPanic)
			})
		})

		Convey("When freeing the same pointer twice", func() {
			a.Free(p)

			Convey("The second free is a silent no-op", func() {
				So(func() { a.Free(p) }, ShouldNotPanic)
			})
		})
	})

	Convey("Given an arena with three adjacent allocations", t, func() {
		a := arena.New(arena.WithCapacity(4096))
		p1 := a.Allocate(64)
		p2 := a.Allocate(64)
		p3 := a.Allocate(64)

		Convey("When the middle block is freed and then an equal block requested", func() {
			a.Free(p2)
			q := a.Allocate(64)

			Convey("The freed interior block is reused", func() {
				So(q, ShouldEqual, p2)
			})
		})

		Convey("When the last block is freed", func() {
			before := a.Len()
			a.Free(p3)

			Convey("The bump offset shrinks instead of the block joining a free list", func() {
				So(a.Len(), ShouldBeLessThan, before)
			})

			Convey("And a new allocation reuses the reclaimed space", func() {
				q := a.Allocate(64)
				So(q, ShouldEqual, p3)
			})
		})

		Convey("When the first two of three blocks are freed", func() {
			a.Free(p1)
			a.Free(p2)

			Convey("Allocating the original single size no longer reuses either address, since they coalesced into a larger block", func() {
				q := a.Allocate(64)
				So(q, ShouldNotEqual, p1)
				So(q, ShouldNotEqual, p2)
			})
		})
	})
}

func TestArenaResize(t *testing.T) {
	Convey("Given an arena with one live allocation", t, func() {
		a := arena.New(arena.WithCapacity(4096))
		p := a.Allocate(64)
		fill(p, 64, 0xCD)

		Convey("When resizing to a smaller size", func() {
			q := a.Resize(p, 16)

			Convey("The same pointer is returned", func() {
				So(q, ShouldEqual, p)
			})
		})

		Convey("When resizing to nil", func() {
			Convey("It returns nil without allocating", func() {
				So(a.Resize(nil, 32), ShouldBeNil)
			})
		})

		Convey("When resizing a much larger size", func() {
			q := a.Resize(p, 4096)

			Convey("It returns a usable pointer", func() {
				So(q, ShouldNotBeNil)
			})

			Convey("And the first 64 bytes are preserved", func() {
				buf := bytesAt(q, 64)
				for _, b := range buf {
					So(b, ShouldEqual, byte(0xCD))
				}
			})
		})
	})

	Convey("Given an arena with a freed block directly after a live one", t, func() {
		a := arena.New(arena.WithCapacity(4096))
		p1 := a.Allocate(32)
		p2 := a.Allocate(32)
		_ = a.Allocate(32) // keep p2 an interior block so freeing it joins a free list instead of shrinking the arena
		a.Free(p2)

		fill(p1, 32, 0xEF)

		Convey("When growing the live block into its freed neighbour", func() {
			q := a.Resize(p1, 48)

			Convey("It grows in place rather than relocating", func() {
				So(q, ShouldEqual, p1)
			})

			Convey("And the original contents survive the growth", func() {
				buf := bytesAt(q, 32)
				for _, b := range buf {
					So(b, ShouldEqual, byte(0xEF))
				}
			})
		})
	})

	Convey("Given an allocation that must relocate to grow", t, func() {
		a := arena.New(arena.WithCapacity(4096))
		p1 := a.Allocate(32)
		_ = a.Allocate(32) // block the forward neighbour so growth cannot happen in place
		fill(p1, 32, 0x11)

		Convey("When resizing past what in-place growth allows", func() {
			q := a.Resize(p1, 512)

			Convey("A new pointer is returned", func() {
				So(q, ShouldNotEqual, p1)
			})

			Convey("The old contents were copied over", func() {
				buf := bytesAt(q, 32)
				for _, b := range buf {
					So(b, ShouldEqual, byte(0x11))
				}
			})

			Convey("The old block was freed and is available for reuse", func() {
				r := a.Allocate(32)
				So(r, ShouldEqual, p1)
			})
		})
	})
}

func TestCurrentArenaIsGoroutineLocal(t *testing.T) {
	Convey("Given the package-level allocation functions", t, func() {
		arena.ResetCurrentArena()

		Convey("Allocations on the calling goroutine are visible to that goroutine", func() {
			p := arena.Allocate(16)
			So(p, ShouldNotBeNil)
			arena.Free(p)
		})

		Convey("Each goroutine resolves its own arena", func() {
			done := make(chan unsafe.Pointer, 1)

			go func() {
				arena.ResetCurrentArena()
				done <- arena.Allocate(16)
			}()

			other := <-done
			mine := arena.Allocate(16)

			So(other, ShouldNotEqual, mine)
		})
	})
}
