package ptr

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/shared/memutils"
)

// Deleter destroys and releases a separately-allocated payload when its
// last owner lets go. It runs exactly once per payload, and must not fail.
type Deleter[T any] func(p *T)

// DefaultDeleter returns the deleter used when a consumer does not provide
// one: it runs the payload's Dispose method if it has one, then zeroes the
// value so anything it referenced can be collected. Storage reclamation is
// left to the garbage collector.
func DefaultDeleter[T any]() Deleter[T] {
	return func(p *T) {
		if d, ok := any(p).(memutils.Disposer); ok {
			d.Dispose()
		}

		var zero T
		*p = zero
	}
}

// MakeShared builds a value and its control block inside one combined
// allocation from DefaultAllocator and returns the first owning handle,
// with a strong count of 1 and a weak count of 0. construct initializes
// the value in place; nil leaves it zero-valued.
//
// If the value's type embeds SharedFromThis, the embedded observer is
// bound to the new control block before MakeShared returns.
func MakeShared[T any](construct func(p *T)) Shared[T] {
	s, err := AllocateShared[T](memutils.DefaultAllocator, construct)
	if err != nil {
		// DefaultAllocator does not fail unless replaced with a strategy
		// that can; such strategies belong with AllocateShared.
		panic(err)
	}

	return s
}

// AllocateShared is MakeShared with a caller-supplied allocator. The
// single allocation is sized for the control block header and the value
// together, and the allocator's failure is returned as this function's
// failure. If construct panics, the fresh allocation is returned to the
// allocator before the panic continues, so no partially-constructed block
// remains reachable.
func AllocateShared[T any](alloc memutils.Allocator, construct func(p *T)) (Shared[T], error) {
	if alloc == nil {
		alloc = memutils.DefaultAllocator
	}

	size := int(unsafe.Sizeof(inlineBlock[T]{}))
	raw, err := alloc.Allocate(size, func() any { return &inlineBlock[T]{} })
	if err != nil {
		return Shared[T]{}, errors.Wrapf(err, "failed to allocate a combined control block of %d bytes", size)
	}

	block := raw.(*inlineBlock[T])
	block.blockHeader = blockHeader{strong: 1, weak: 0}
	block.alloc = alloc

	if construct != nil {
		constructed := false
		defer func() {
			if !constructed {
				alloc.Deallocate(block, size)
			}
		}()

		construct(&block.value)
		constructed = true
	}

	s := Shared[T]{cb: block}
	if obs, ok := any(&block.value).(selfObserver[T]); ok {
		obs.initSelf(s.Downgrade())
	}

	return s, nil
}

// NewShared takes ownership of the separately-allocated payload p, to be
// destroyed with DefaultDeleter once the last owner releases. The control
// block comes from DefaultAllocator, which does not fail.
//
// p must not already be owned by another control block: double ownership
// is not detected and leads to double destruction.
func NewShared[T any](p *T) Shared[T] {
	s, err := NewSharedWithOptions(p, nil, nil)
	if err != nil {
		panic(err)
	}

	return s
}

// NewSharedWithOptions takes ownership of the separately-allocated payload
// p under a caller-supplied deleter and allocator; nil selects
// DefaultDeleter and DefaultAllocator. The deleter destroys the payload
// when the last owner releases; the allocator provides, and later
// reclaims, only the control block's own storage.
//
// p must not already be owned by another control block: double ownership
// is not detected and leads to double destruction.
func NewSharedWithOptions[T any](p *T, del Deleter[T], alloc memutils.Allocator) (Shared[T], error) {
	if del == nil {
		del = DefaultDeleter[T]()
	}
	if alloc == nil {
		alloc = memutils.DefaultAllocator
	}

	size := int(unsafe.Sizeof(pointerBlock[T]{}))
	raw, err := alloc.Allocate(size, func() any { return &pointerBlock[T]{} })
	if err != nil {
		return Shared[T]{}, errors.Wrapf(err, "failed to allocate a control block of %d bytes", size)
	}

	block := raw.(*pointerBlock[T])
	block.blockHeader = blockHeader{strong: 1, weak: 0}
	block.ptr = p
	block.del = del
	block.alloc = alloc

	return Shared[T]{value: p, cb: block}, nil
}
