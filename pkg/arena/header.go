package arena

import (
	"unsafe"

	"github.com/flier/memalloc/pkg/xunsafe"
	"github.com/flier/memalloc/pkg/xunsafe/layout"
)

// maxAlign is the alignment guaranteed for every pointer this package
// returns. It matches the platform's widest common scalar alignment
// (what C calls alignof(max_align_t)) so that any type can be placed at
// the returned address.
const maxAlign = 16

// header is the fixed-size metadata block immediately preceding every
// payload this package hands out, whether it came from the bump region or
// from an OS mapping.
//
// header never moves: once placed, it stays at the same address for the
// block's lifetime. Growing a block in place (see Arena.Resize) extends
// totalSize without relocating the header; growing past what in-place
// extension allows always allocates a fresh header elsewhere.
type header struct {
	mem         xunsafe.Addr[byte]
	totalSize   uintptr
	prevInChain *header
	nextInChain *header
	prevFree    *header
	nextFree    *header
	valid       bool
	fromOS      bool
}

// headerStride is sizeof(header) rounded up to maxAlign, so the payload
// address immediately following a header is always maximally aligned.
var headerStride = layout.RoundUp(layout.Size[header](), maxAlign)

// effectiveSize returns the total number of bytes (header plus padded
// payload) a request for size user bytes requires. A zero-byte request is
// treated as a request for one minimum quantum, matching the reference
// allocator's handling of malloc(0).
func effectiveSize(size int) int {
	if size <= 0 {
		return headerStride + maxAlign
	}

	return headerStride + layout.RoundUp(size, maxAlign)
}

// sizeClass maps a block's total size to the index of the free list that
// holds blocks of exactly that size. Size classes are direct multiples of
// maxAlign, so the mapping is a division rather than a search.
func sizeClass(total int) int {
	return total / maxAlign
}

// headerAt recovers the header that precedes the payload at p.
func headerAt(p unsafe.Pointer) *header {
	return (*header)(unsafe.Add(p, -headerStride))
}

// payload returns the address of h's user-visible payload, i.e. the
// pointer this package handed to the caller for this block.
func (h *header) payload() unsafe.Pointer {
	return unsafe.Pointer(h.mem.AssertValid())
}

// addrOf returns h's own address as a byte address, for storing into
// another header's mem field or for arithmetic against other headers.
func addrOf(h *header) xunsafe.Addr[byte] {
	return xunsafe.Addr[byte](xunsafe.AddrOf(h))
}
