package ptr

// SharedFromThis lets a payload type manufacture an owning handle to
// itself from inside its own methods. Embed it in the payload type:
//
//	type session struct {
//		ptr.SharedFromThis[session]
//		...
//	}
//
// MakeShared and AllocateShared detect the capability and bind the
// embedded observer to the control block they create. Payloads constructed
// any other way keep an empty observer, and Self returns an empty handle.
type SharedFromThis[T any] struct {
	self Weak[T]
}

// Self returns an owning handle for the payload this capability is
// embedded in, sharing the control block of the handles already
// outstanding. It returns an empty handle if the payload was not built by
// a construction helper or no longer has owners.
func (s *SharedFromThis[T]) Self() Shared[T] {
	return s.self.Lock()
}

func (s *SharedFromThis[T]) initSelf(w Weak[T]) {
	s.self = w
}

func (s *SharedFromThis[T]) takeSelf() Weak[T] {
	return s.self.Move()
}

// selfObserver is the capability the construction helpers probe payloads
// for. It is satisfied by embedding SharedFromThis.
type selfObserver[T any] interface {
	initSelf(w Weak[T])
	takeSelf() Weak[T]
}
