// Package memutils provides the storage strategy and instrumentation layer
// shared by memory-management primitives in this module: a pluggable
// Allocator interface, decorators that count and log allocator traffic, and
// debug-build validation helpers.
package memutils

// Allocator is a storage strategy for individually-allocated values. The
// same Allocator value serves every element type it is asked to allocate,
// so one strategy can provide storage for both payloads and the control
// structures that manage them.
//
// Implementations are not required to be safe for concurrent use.
type Allocator interface {
	// Allocate obtains storage for a single value. The construct callback
	// produces the value; implementations call it exactly once on success
	// and may record, wrap, or pool the result. size is the in-memory
	// footprint of the value in bytes and is provided for accounting.
	//
	// On failure, Allocate returns an error (conventionally wrapping
	// AllocationFailedError) and the callback's result must not be retained.
	Allocate(size int, construct func() any) (any, error)
	// Deallocate returns storage previously obtained from Allocate on this
	// same allocator. v must be the exact value Allocate returned and size
	// must match the size it was allocated with. The value must not be used
	// after Deallocate returns.
	Deallocate(v any, size int)
}

// RuntimeAllocator delegates storage to the Go runtime. Allocate never
// fails and Deallocate is a no-op, leaving reclamation to the garbage
// collector.
type RuntimeAllocator struct{}

func (RuntimeAllocator) Allocate(size int, construct func() any) (any, error) {
	return construct(), nil
}

func (RuntimeAllocator) Deallocate(v any, size int) {}

// DefaultAllocator is the allocator used when a consumer does not provide
// one.
var DefaultAllocator Allocator = RuntimeAllocator{}

// Disposer is implemented by payload types that need teardown to run when
// the last owner releases them.
type Disposer interface {
	Dispose()
}
