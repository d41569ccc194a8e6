package ptr

import "github.com/vkngwrapper/shared/memutils"

// Weak is a non-owning handle observing a value owned by Shared handles.
// It never keeps the value alive, but it does keep the value's control
// block alive, so it can always report whether the value still has owners
// and attempt an upgrade. The zero value is an empty handle.
//
// Like Shared, a Weak handle is copied with Clone, transferred with Move,
// and must be released exactly once.
type Weak[T any] struct {
	value *T
	cb    controlBlock
}

// Clone returns a new handle observing the same value as w. Cloning an
// empty handle returns an empty handle.
func (w *Weak[T]) Clone() Weak[T] {
	if w.cb != nil {
		w.cb.header().weak++
	}

	return Weak[T]{value: w.value, cb: w.cb}
}

// Move transfers w's observation to the returned handle and empties w. The
// counts are untouched.
func (w *Weak[T]) Move() Weak[T] {
	moved := Weak[T]{value: w.value, cb: w.cb}
	w.value = nil
	w.cb = nil
	return moved
}

// Assign replaces w's observation with a share of other's, releasing
// whatever w previously observed. Assigning a handle to itself is a no-op.
func (w *Weak[T]) Assign(other *Weak[T]) {
	if w == other {
		return
	}

	tmp := other.Clone()
	w.Swap(&tmp)
	tmp.Release()
}

// AssignMove replaces w's observation with other's, emptying other and
// releasing whatever w previously observed. Assigning a handle to itself
// is a no-op.
func (w *Weak[T]) AssignMove(other *Weak[T]) {
	if w == other {
		return
	}

	tmp := other.Move()
	w.Swap(&tmp)
	tmp.Release()
}

// Swap exchanges the contents of w and other. The counts are untouched.
func (w *Weak[T]) Swap(other *Weak[T]) {
	w.value, other.value = other.value, w.value
	w.cb, other.cb = other.cb, w.cb
}

// UseCount returns the number of Shared handles currently owning the
// observed value: the liveness of the value, not of this handle. It
// returns 0 if w is empty.
func (w *Weak[T]) UseCount() uint {
	if w.cb == nil {
		return 0
	}

	return w.cb.header().strong
}

// Expired reports whether the observed value no longer has any owners, or
// w is empty.
func (w *Weak[T]) Expired() bool {
	return w.UseCount() == 0
}

// Lock attempts to upgrade w to an owning handle. It returns a new Shared
// handle sharing ownership with the value's existing owners, or an empty
// handle if the value has already been destroyed or w is empty. Lock never
// fails in any other way.
func (w *Weak[T]) Lock() Shared[T] {
	if w.Expired() {
		return Shared[T]{}
	}

	value := w.value
	if value == nil {
		value = (*T)(w.cb.payload())
	}

	w.cb.header().strong++
	return Shared[T]{value: value, cb: w.cb}
}

// Release drops w's observation and empties it. If w was the last observer
// of a value whose owners are all gone, the control block's storage is
// freed. Releasing an empty handle is a no-op.
func (w *Weak[T]) Release() {
	if w.cb == nil {
		w.value = nil
		return
	}

	h := w.cb.header()
	h.weak--
	memutils.DebugValidate(h)

	if h.weak == 0 && h.strong == 0 {
		w.cb.deallocate()
	}

	w.value = nil
	w.cb = nil
}
