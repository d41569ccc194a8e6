// Package ptr implements reference-counted shared ownership of a single
// value: an owning Shared handle that keeps the value alive as long as any
// owner remains, and a non-owning Weak handle that observes the value and
// can be upgraded to an owner only while the value is still alive.
//
// Every handle bound to one value shares a control block tracking a strong
// and a weak count. Releasing the last Shared handle destroys the value;
// the block's storage is freed only once the weak count is also zero, so a
// Weak handle can always safely ask whether its value is still alive.
//
// Counts are not atomic. A control block and all handles referencing it
// must be confined to one goroutine or externally synchronized. Cycles of
// Shared handles are never collected; break cycles with Weak handles.
package ptr

import "github.com/vkngwrapper/shared/memutils"

// Shared is an owning handle for a reference-counted value. The zero value
// is an empty handle. Non-empty handles are produced by MakeShared,
// AllocateShared, NewShared and NewSharedWithOptions, or by Clone, Lock
// and CastShared on existing handles.
//
// Shared is a value type, but plain Go assignment does not participate in
// reference counting: use Clone to add an owner and Move to transfer one.
// Every non-empty handle must be released exactly once.
type Shared[T any] struct {
	value *T
	cb    controlBlock
}

// Clone returns a new handle sharing ownership with s. Cloning an empty
// handle returns an empty handle.
func (s *Shared[T]) Clone() Shared[T] {
	if s.cb != nil {
		s.cb.header().strong++
	}

	return Shared[T]{value: s.value, cb: s.cb}
}

// Move transfers s's ownership to the returned handle and empties s. The
// counts are untouched.
func (s *Shared[T]) Move() Shared[T] {
	moved := Shared[T]{value: s.value, cb: s.cb}
	s.value = nil
	s.cb = nil
	return moved
}

// Assign replaces s's ownership with a share of other's, releasing
// whatever s previously owned. It is implemented as clone-then-swap, so a
// failure to share leaves s untouched, and assigning a handle to itself is
// a no-op.
func (s *Shared[T]) Assign(other *Shared[T]) {
	if s == other {
		return
	}

	tmp := other.Clone()
	s.Swap(&tmp)
	tmp.Release()
}

// AssignMove replaces s's ownership with other's, emptying other and
// releasing whatever s previously owned. Assigning a handle to itself is a
// no-op.
func (s *Shared[T]) AssignMove(other *Shared[T]) {
	if s == other {
		return
	}

	tmp := other.Move()
	s.Swap(&tmp)
	tmp.Release()
}

// Get returns the address of the managed value, or nil if s is empty. For
// values built by MakeShared or AllocateShared the address points into the
// combined block allocation.
func (s *Shared[T]) Get() *T {
	if s.value != nil {
		return s.value
	}
	if s.cb != nil {
		return (*T)(s.cb.payload())
	}

	return nil
}

// UseCount returns the number of Shared handles currently sharing
// ownership of the managed value, or 0 if s is empty.
func (s *Shared[T]) UseCount() uint {
	if s.cb == nil {
		return 0
	}

	return s.cb.header().strong
}

// WeakCount returns the number of Weak handles currently observing the
// managed value, or 0 if s is empty.
func (s *Shared[T]) WeakCount() uint {
	if s.cb == nil {
		return 0
	}

	return s.cb.header().weak
}

// Reset releases s's ownership and leaves it empty.
func (s *Shared[T]) Reset() {
	var empty Shared[T]
	empty.Swap(s)
	empty.Release()
}

// ResetTo releases s's current ownership and takes ownership of p under
// the provided deleter and allocator, either of which may be nil to select
// the defaults. If allocating the new control block fails, s is left
// unmodified.
func (s *Shared[T]) ResetTo(p *T, del Deleter[T], alloc memutils.Allocator) error {
	tmp, err := NewSharedWithOptions(p, del, alloc)
	if err != nil {
		return err
	}

	tmp.Swap(s)
	tmp.Release()
	return nil
}

// Swap exchanges the contents of s and other. The counts are untouched.
func (s *Shared[T]) Swap(other *Shared[T]) {
	s.value, other.value = other.value, s.value
	s.cb, other.cb = other.cb, s.cb
}

// Downgrade returns a Weak handle observing s's value without owning it.
// Downgrading an empty handle yields an empty Weak handle.
func (s *Shared[T]) Downgrade() Weak[T] {
	if s.cb == nil {
		return Weak[T]{}
	}

	s.cb.header().weak++
	return Weak[T]{value: s.value, cb: s.cb}
}

// Release drops s's ownership and empties it. When the last owner
// releases, the value is destroyed; the block's storage is freed once no
// weak observers remain either. Releasing an empty handle is a no-op.
func (s *Shared[T]) Release() {
	if s.cb == nil {
		s.value = nil
		return
	}

	h := s.cb.header()
	h.strong--
	memutils.DebugValidate(h)

	if h.strong == 0 {
		// Capture the weak count before destroying: payload teardown can
		// release an embedded self-observation handle, and when that handle
		// is the last observer the block is freed from the weak side.
		weakRemaining := h.weak
		s.cb.destroy()
		if weakRemaining == 0 {
			s.cb.deallocate()
		}
	}

	s.value = nil
	s.cb = nil
}
