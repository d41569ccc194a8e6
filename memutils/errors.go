package memutils

import "github.com/pkg/errors"

// AllocationFailedError is the error Allocator implementations should return, possibly
// wrapped, from Allocate when the underlying storage strategy cannot provide storage
var AllocationFailedError error = errors.New("allocation failed")
