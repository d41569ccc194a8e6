package ptr

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/shared/memutils"
)

// blockHeader holds the reference counts shared by every handle bound to
// one managed payload. The counts are plain integers: a control block and
// all of its handles belong to a single goroutine, or to callers providing
// their own synchronization.
type blockHeader struct {
	strong uint
	weak   uint
}

// Validate catches count underflow, which always indicates a handle was
// released more times than it was acquired.
func (h *blockHeader) Validate() error {
	if h.strong > math.MaxUint/2 {
		return errors.Newf("strong count underflowed: %d", h.strong)
	}
	if h.weak > math.MaxUint/2 {
		return errors.Newf("weak count underflowed: %d", h.weak)
	}

	return nil
}

// controlBlock is the shared metadata record for one managed payload. It
// knows how to tear the payload down and how to free its own storage, so
// handles never care which construction path produced the block or which
// deleter and allocator it carries.
//
// Exactly one controlBlock exists per managed payload.
type controlBlock interface {
	header() *blockHeader
	// payload returns the address of the managed value. Handles only
	// consult it while the strong count is positive.
	payload() unsafe.Pointer
	// destroy tears down the payload. It does not free storage: the block,
	// and for inline blocks the payload bytes, must stay valid for weak
	// observers afterward.
	destroy()
	// deallocate returns the block's storage to its allocator. It must run
	// after destroy, exactly once, when both counts have reached zero.
	deallocate()
}

// inlineBlock stores the payload directly behind the counts in a single
// combined allocation. MakeShared and AllocateShared produce this variant.
type inlineBlock[T any] struct {
	blockHeader
	alloc memutils.Allocator
	value T
}

func (b *inlineBlock[T]) header() *blockHeader {
	return &b.blockHeader
}

func (b *inlineBlock[T]) payload() unsafe.Pointer {
	return unsafe.Pointer(&b.value)
}

func (b *inlineBlock[T]) destroy() {
	if d, ok := any(&b.value).(memutils.Disposer); ok {
		d.Dispose()
	}

	// A self-observing payload holds a weak handle to its own block. Move
	// it out before zeroing so it can be released against intact storage:
	// if it is the last observer, releasing it frees the block.
	var self Weak[T]
	if obs, ok := any(&b.value).(selfObserver[T]); ok {
		self = obs.takeSelf()
	}

	var zero T
	b.value = zero
	self.Release()
}

func (b *inlineBlock[T]) deallocate() {
	b.alloc.Deallocate(b, int(unsafe.Sizeof(*b)))
}

// pointerBlock manages a payload that was allocated separately from the
// block. The deleter owns payload teardown; the allocator frees only the
// block's own storage.
type pointerBlock[T any] struct {
	blockHeader
	ptr   *T
	del   Deleter[T]
	alloc memutils.Allocator
}

func (b *pointerBlock[T]) header() *blockHeader {
	return &b.blockHeader
}

func (b *pointerBlock[T]) payload() unsafe.Pointer {
	return unsafe.Pointer(b.ptr)
}

func (b *pointerBlock[T]) destroy() {
	b.del(b.ptr)
	b.ptr = nil
}

func (b *pointerBlock[T]) deallocate() {
	b.alloc.Deallocate(b, int(unsafe.Sizeof(*b)))
}
