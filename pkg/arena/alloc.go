package arena

import (
	"unsafe"

	"github.com/flier/memalloc/internal/debug"
)

// Allocate returns a pointer to a region of at least size bytes, aligned
// to maxAlign. It is a thin dispatcher over three strategies, tried in
// order: reuse a same-size freed block, bump the arena's fill offset, or
// fall back to an anonymous OS page mapping. It returns nil only if the
// fallback OS mapping itself fails.
func (a *Arena) Allocate(size int) unsafe.Pointer {
	p := a.allocate(size)

	if debug.Enabled && p != nil {
		n := a.allocCount.Get()
		*n++
	}

	return p
}

func (a *Arena) allocate(size int) unsafe.Pointer {
	total := effectiveSize(size)

	if class := sizeClass(total); class < len(a.freeTails) {
		if h := a.freeTails[class]; h != nil {
			return a.popFreeList(h, class)
		}
	}

	if a.offset+total <= a.Cap() {
		if !a.warnedInit {
			a.warnedInit = true
			debug.Log(nil, "arena", "first allocation into a %dKB bump region", a.Cap()/1024)
		}

		return a.bump(total)
	}

	if !a.warnedFull {
		a.warnedFull = true
		debug.Log(nil, "arena", "bump region exhausted at offset %d of %d, falling back to OS mappings", a.offset, a.Cap())
	}

	return a.mapFromOS(total)
}

// popFreeList removes the tail of the free list for class and returns its
// payload, marking the block live again.
func (a *Arena) popFreeList(h *header, class int) unsafe.Pointer {
	a.freeTails[class] = h.prevFree

	if h.prevFree != nil {
		h.prevFree.nextFree = nil
	}

	h.prevFree = nil
	h.nextFree = nil
	h.valid = true

	return h.payload()
}

// bump carves a fresh block of total bytes off the end of the arena's
// fill region and appends it to the chain.
func (a *Arena) bump(total int) unsafe.Pointer {
	h := a.headerAt(a.offset)

	*h = header{
		mem:         addrOf(h).ByteAdd(headerStride),
		totalSize:   uintptr(total),
		valid:       true,
		prevInChain: a.chainTail,
	}

	if a.chainTail != nil {
		a.chainTail.nextInChain = h
	}

	a.chainTail = h
	a.offset += total

	return h.payload()
}

// mapFromOS satisfies a request the bump region can no longer hold by
// mapping fresh anonymous pages directly from the OS. Blocks allocated
// this way never join the arena's chain or free lists: they are returned
// to the OS individually on Free, never coalesced, never reused.
func (a *Arena) mapFromOS(total int) unsafe.Pointer {
	mapped, err := mmapAnon(total)
	if err != nil {
		debug.Log(nil, "arena", "OS mapping of %d bytes failed: %v", total, err)

		return nil
	}

	h := (*header)(unsafe.Pointer(&mapped[0]))

	*h = header{
		mem:       addrOf(h).ByteAdd(headerStride),
		totalSize: uintptr(len(mapped)),
		valid:     true,
		fromOS:    true,
	}

	return h.payload()
}
