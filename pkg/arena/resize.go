package arena

import "unsafe"

// Resize grows or shrinks the allocation at ptr to hold newSize bytes,
// preserving its existing contents up to min(old payload size, newSize).
// A nil ptr, or a pointer to an already-freed block, returns nil without
// allocating, mirroring the reference allocator's realloc(NULL, ...) and
// use-after-free behaviour respectively.
//
// Resize tries, in order: keep ptr in place if the block is already big
// enough; absorb a free trailing neighbour in place; allocate a new
// block, copy the old contents over, and free the old block. The last
// case may return a different pointer than ptr.
func (a *Arena) Resize(ptr unsafe.Pointer, newSize int) unsafe.Pointer {
	if ptr == nil {
		return nil
	}

	h := headerAt(ptr)
	if !h.valid {
		return nil
	}

	newTotal := effectiveSize(newSize)

	if int(h.totalSize) >= newTotal {
		return ptr
	}

	if h.fromOS {
		return a.relocate(h, ptr, newSize, newTotal)
	}

	if next := h.nextInChain; next != nil && !next.valid &&
		int(h.totalSize+next.totalSize) >= newTotal {
		a.removeFromFreeList(next)

		h.totalSize += next.totalSize
		h.nextInChain = next.nextInChain

		if next.nextInChain != nil {
			next.nextInChain.prevInChain = h
		}

		if a.chainTail == next {
			a.chainTail = h
		}

		return ptr
	}

	return a.relocate(h, ptr, newSize, newTotal)
}

// relocate allocates a fresh block for newSize bytes, copies over as much
// of the old payload as still fits, and frees the old block.
func (a *Arena) relocate(h *header, oldPtr unsafe.Pointer, newSize, newTotal int) unsafe.Pointer {
	newPtr := a.Allocate(newSize)
	if newPtr == nil {
		return nil
	}

	oldPayload := int(h.totalSize) - headerStride
	newPayload := newTotal - headerStride

	n := oldPayload
	if newPayload < n {
		n = newPayload
	}

	if n > 0 {
		src := unsafe.Slice((*byte)(oldPtr), n)
		dst := unsafe.Slice((*byte)(newPtr), n)
		copy(dst, src)
	}

	a.Free(oldPtr)

	return newPtr
}
