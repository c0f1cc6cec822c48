//go:build go1.20

package xunsafe

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/flier/memalloc/pkg/xunsafe/layout"
)

// Addr is an untyped machine address that remembers the type it points to.
//
// Unlike a *T, an Addr[T] can be zero, compared, hashed, stored in a slice
// of free-list tails, and bit-twiddled, while still offering scaled
// arithmetic (Add) and unscaled arithmetic (ByteAdd) appropriate to T.
//
// The underlying representation is a signed machine word rather than a
// uintptr, so that SignBit and friends can treat the high bit the way the
// hardware's address-space canonicalization does, instead of it merely
// making every address "very large".
type Addr[T any] int

// AddrOf returns the address of p.
func AddrOf[T any](p *T) Addr[T] {
	return Addr[T](uintptr(unsafe.Pointer(p)))
}

// EndOf returns the address just past the last element of s.
func EndOf[S ~[]E, E any](s S) Addr[E] {
	return AddrOf(unsafe.SliceData(s)).Add(len(s))
}

// Add adds n elements worth of offset, scaled by sizeof(T).
func (a Addr[T]) Add(n int) Addr[T] {
	return a + Addr[T](n*layout.Size[T]())
}

// ByteAdd adds n bytes of offset, unscaled.
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return a + Addr[T](n)
}

// Sub computes the number of Ts between a and b.
func (a Addr[T]) Sub(b Addr[T]) int {
	return int(a-b) / layout.Size[T]()
}

// AssertValid reinterprets this address as a *T.
//
// The caller is asserting that the address is either zero (in which case
// the result is nil) or was itself produced by AddrOf/arithmetic on a live
// *T; this package has no way to check that.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(uintptr(a))) //nolint:govet // address arithmetic is the point of this package.
}

// Padding returns how many bytes must be added to a to reach the next
// multiple of align, which must be a power of two.
func (a Addr[T]) Padding(align int) int {
	return int(layout.Padding(uintptr(a), uintptr(align)))
}

// RoundUpTo rounds a up to the next multiple of align, which must be a
// power of two.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(uintptr(a), uintptr(align)))
}

// SignBit returns whether the top bit of the address is set.
func (a Addr[T]) SignBit() bool {
	return a < 0
}

// SignBitMask returns 0 if SignBit is clear, or all-ones if it is set.
//
// This is the classic branchless sign-extension trick: an arithmetic shift
// of a signed integer by one less than its width replicates the sign bit
// across the whole word.
func (a Addr[T]) SignBitMask() Addr[T] {
	return a >> (bits.UintSize - 1)
}

// ClearSignBit returns a with its top bit forced to zero.
func (a Addr[T]) ClearSignBit() Addr[T] {
	return a &^ (Addr[T](1) << (bits.UintSize - 1))
}

// Format implements fmt.Formatter, printing the address in hex.
//
// %v and %s print with a 0x prefix; %x prints without one.
func (a Addr[T]) Format(s fmt.State, verb rune) {
	switch verb {
	case 'x':
		fmt.Fprintf(s, "%x", uintptr(a))
	default:
		fmt.Fprintf(s, "%#x", uintptr(a))
	}
}
