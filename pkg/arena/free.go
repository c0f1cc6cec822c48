package arena

import "unsafe"

// Free releases the allocation at ptr. A nil ptr is a no-op, and so is a
// ptr that has already been freed: Free never double-frees a block, and
// never panics on a pointer this arena itself produced.
func (a *Arena) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h := headerAt(ptr)
	if !h.valid {
		return
	}

	if h.fromOS {
		h.valid = false

		mapped := unsafe.Slice((*byte)(unsafe.Pointer(h)), h.totalSize)
		_ = munmapAnon(mapped)

		return
	}

	if h.nextInChain == nil {
		// h is the chain tail: shrink the bump region instead of adding it to
		// a free list, so a allocate/free churn at the end of the arena
		// doesn't leak size classes full of unreachable blocks.
		a.chainTail = h.prevInChain

		if h.prevInChain != nil {
			h.prevInChain.nextInChain = nil
		}

		a.offset -= int(h.totalSize)
		h.valid = false

		return
	}

	a.addToFreeList(h)
	a.coalesce(h)
}

func (a *Arena) addToFreeList(h *header) {
	h.valid = false

	class := sizeClass(int(h.totalSize))
	tail := a.freeTails[class]

	h.prevFree = tail
	h.nextFree = nil

	if tail != nil {
		tail.nextFree = h
	}

	a.freeTails[class] = h
}

func (a *Arena) removeFromFreeList(h *header) {
	class := sizeClass(int(h.totalSize))

	if a.freeTails[class] == h {
		a.freeTails[class] = h.prevFree
	}

	if h.nextFree != nil {
		h.nextFree.prevFree = h.prevFree
	}

	if h.prevFree != nil {
		h.prevFree.nextFree = h.nextFree
	}

	h.prevFree = nil
	h.nextFree = nil
}

// coalesce merges h with an immediately adjacent free neighbour on either
// side, keeping h's free-list membership (and, on a backward merge, its
// neighbour's) consistent with its resulting size.
//
// A free neighbour can be the chain tail: popping the tail in Free makes
// its predecessor the new tail even when that predecessor sits on a free
// list. So whenever a merge absorbs the chain tail, the survivor becomes
// the new chainTail.
func (a *Arena) coalesce(h *header) {
	if next := h.nextInChain; next != nil && !next.valid {
		a.removeFromFreeList(next)
		a.removeFromFreeList(h)

		h.totalSize += next.totalSize
		h.nextInChain = next.nextInChain

		if next.nextInChain != nil {
			next.nextInChain.prevInChain = h
		}

		if a.chainTail == next {
			a.chainTail = h
		}

		a.addToFreeList(h)
	}

	if prev := h.prevInChain; prev != nil && !prev.valid {
		a.removeFromFreeList(h)
		a.removeFromFreeList(prev)

		prev.totalSize += h.totalSize
		prev.nextInChain = h.nextInChain

		if h.nextInChain != nil {
			h.nextInChain.prevInChain = prev
		}

		if a.chainTail == h {
			a.chainTail = prev
		}

		a.addToFreeList(prev)
	}
}
