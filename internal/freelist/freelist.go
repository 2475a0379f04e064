// Package freelist implements the intrusive singly-linked block chains shared
// by the thread and central caches. A free block's first machine word holds
// the pointer to the next free block of the same class, so the lists need no
// node storage of their own. Callers guarantee every block is at least one
// pointer wide, which the 8-byte minimum block size already ensures.
package freelist

import "unsafe"

// Next returns the link stored in the first word of block p.
func Next(p unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(p)
}

// SetNext stores next into the first word of block p.
func SetNext(p, next unsafe.Pointer) {
	*(*unsafe.Pointer)(p) = next
}

// Push prepends block p to the list at *head.
func Push(head *unsafe.Pointer, p unsafe.Pointer) {
	SetNext(p, *head)
	*head = p
}

// Pop detaches and returns the head block of the list at *head, or nil when
// the list is empty.
func Pop(head *unsafe.Pointer) unsafe.Pointer {
	p := *head
	if p == nil {
		return nil
	}
	*head = Next(p)
	return p
}

// Carve links n consecutive blocks of the given size starting at base into a
// chain and returns its head. The last block's link is set to nil. n must be
// at least 1.
func Carve(base unsafe.Pointer, size uintptr, n int) unsafe.Pointer {
	addr := uintptr(base)
	for i := 0; i < n-1; i++ {
		cur := unsafe.Pointer(addr + uintptr(i)*size)
		SetNext(cur, unsafe.Pointer(addr+uintptr(i+1)*size))
	}
	SetNext(unsafe.Pointer(addr+uintptr(n-1)*size), nil)
	return base
}

// Len walks the chain from head and returns its length, visiting at most
// limit blocks. A negative limit means no bound. Chains produced by this
// package are nil-terminated, so Len with a bound is the safe way to measure
// a chain whose claimed length is in doubt.
func Len(head unsafe.Pointer, limit int) int {
	n := 0
	for head != nil && (limit < 0 || n < limit) {
		n++
		head = Next(head)
	}
	return n
}

// Take walks at most n blocks from head, severs the chain after the last one
// walked, and returns the remainder along with the number of blocks actually
// taken. head must be non-nil.
func Take(head unsafe.Pointer, n int) (rest unsafe.Pointer, taken int) {
	cur := head
	taken = 1
	for taken < n && Next(cur) != nil {
		cur = Next(cur)
		taken++
	}
	rest = Next(cur)
	SetNext(cur, nil)
	return rest, taken
}
