package ptr

// CastShared returns a handle sharing ownership with s whose value is
// exposed through view — typically to widen a concrete payload to an
// interface it implements, or to hand out one of its fields. The full
// original payload remains the unit of destruction regardless of the view.
// Casting an empty handle yields an empty handle and view is not called.
func CastShared[T any, Y any](s *Shared[Y], view func(*Y) *T) Shared[T] {
	if s.cb == nil {
		return Shared[T]{}
	}

	s.cb.header().strong++
	return Shared[T]{value: view(s.Get()), cb: s.cb}
}

// CastWeak returns a Weak handle observing s's value through view, without
// owning it. Casting an empty handle yields an empty handle and view is
// not called.
func CastWeak[T any, Y any](s *Shared[Y], view func(*Y) *T) Weak[T] {
	if s.cb == nil {
		return Weak[T]{}
	}

	s.cb.header().weak++
	return Weak[T]{value: view(s.Get()), cb: s.cb}
}
