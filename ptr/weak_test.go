package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/shared/memutils"
	"github.com/vkngwrapper/shared/ptr"
)

func TestWeakEmptyHandle(t *testing.T) {
	var w ptr.Weak[int]

	require.Equal(t, uint(0), w.UseCount())
	require.True(t, w.Expired())

	locked := w.Lock()
	require.Equal(t, uint(0), locked.UseCount())
	require.Nil(t, locked.Get())

	clone := w.Clone()
	require.True(t, clone.Expired())

	w.Release()
	clone.Release()
}

func TestWeakCountAccounting(t *testing.T) {
	p := ptr.MakeShared(func(v *int) { *v = 5 })

	w := p.Downgrade()
	require.Equal(t, uint(1), p.WeakCount())
	require.Equal(t, uint(1), p.UseCount())

	w2 := w.Clone()
	require.Equal(t, uint(2), p.WeakCount())

	moved := w2.Move()
	require.Equal(t, uint(2), p.WeakCount())

	moved.Release()
	require.Equal(t, uint(1), p.WeakCount())
	w.Release()
	require.Equal(t, uint(0), p.WeakCount())

	p.Release()
}

func TestWeakAssign(t *testing.T) {
	a := ptr.MakeShared(func(v *int) { *v = 1 })
	b := ptr.MakeShared(func(v *int) { *v = 2 })

	wa := a.Downgrade()
	wb := b.Downgrade()

	wa.Assign(&wb)
	require.Equal(t, uint(0), a.WeakCount())
	require.Equal(t, uint(2), b.WeakCount())

	locked := wa.Lock()
	require.Equal(t, 2, *locked.Get())
	locked.Release()

	wa.AssignMove(&wb)
	require.Equal(t, uint(1), b.WeakCount())
	require.True(t, wb.Expired())

	wa.Release()
	a.Release()
	b.Release()
}

func TestWeakLockWhileAlive(t *testing.T) {
	p := ptr.MakeShared(func(v *int) { *v = 9 })
	w := p.Downgrade()

	locked := w.Lock()
	require.Equal(t, uint(2), p.UseCount())
	require.Same(t, p.Get(), locked.Get())

	// The upgraded handle owns independently of the original.
	locked.Release()
	require.Equal(t, uint(1), p.UseCount())
	require.False(t, w.Expired())

	w.Release()
	p.Release()
}

func TestWeakOutlivesStrong(t *testing.T) {
	var disposed int
	alloc := memutils.NewCountingAllocator(nil)

	p, err := ptr.AllocateShared(alloc, func(v *payload) { v.disposed = &disposed })
	require.NoError(t, err)
	require.Equal(t, uint(1), p.UseCount())

	q := p.Clone()
	require.Equal(t, uint(2), q.UseCount())

	w := q.Downgrade()
	require.Equal(t, uint(2), w.UseCount())
	require.Equal(t, uint(1), p.WeakCount())

	p.Release()
	q.Release()

	require.Equal(t, 1, disposed)
	require.True(t, w.Expired())
	require.Equal(t, uint(0), w.UseCount())

	locked := w.Lock()
	require.Equal(t, uint(0), locked.UseCount())
	require.Nil(t, locked.Get())

	// The block stays allocated for the observer even though the payload
	// is gone.
	require.Equal(t, 1, alloc.LiveCount())

	w.Release()
	require.Equal(t, 0, alloc.LiveCount())
	require.Equal(t, 1, alloc.Stats().AllocationCount)
	require.Equal(t, 1, disposed)
}

func TestDeallocateFromStrongSide(t *testing.T) {
	alloc := memutils.NewCountingAllocator(nil)

	p, err := ptr.AllocateShared(alloc, func(v *int) { *v = 3 })
	require.NoError(t, err)

	w := p.Downgrade()
	w.Release()
	require.Equal(t, 1, alloc.LiveCount())

	// The weak observer is already gone, so the last strong release both
	// destroys and deallocates.
	p.Release()
	require.Equal(t, 0, alloc.LiveCount())
}

func TestDeallocateSeparateAllocationBlock(t *testing.T) {
	var disposed int
	alloc := memutils.NewCountingAllocator(nil)

	p, err := ptr.NewSharedWithOptions(&payload{id: 1, disposed: &disposed}, nil, alloc)
	require.NoError(t, err)
	require.Equal(t, 1, alloc.LiveCount())

	w := p.Downgrade()
	p.Release()
	require.Equal(t, 1, disposed)
	require.Equal(t, 1, alloc.LiveCount())

	w.Release()
	require.Equal(t, 0, alloc.LiveCount())
}

func TestCastWeak(t *testing.T) {
	var disposed int
	p := ptr.MakeShared(func(v *payload) {
		v.id = 4
		v.disposed = &disposed
	})

	wid := ptr.CastWeak(&p, func(v *payload) *int { return &v.id })
	require.Equal(t, uint(1), p.WeakCount())
	require.Equal(t, uint(1), wid.UseCount())

	locked := wid.Lock()
	require.Equal(t, 4, *locked.Get())
	locked.Release()

	p.Release()
	require.True(t, wid.Expired())
	wid.Release()
}

// TestSharedWeakLifecycle runs the full lifecycle end to end: two owners,
// one observer, destruction on the last strong release, block reclamation
// on the last weak release.
func TestSharedWeakLifecycle(t *testing.T) {
	var disposed int
	alloc := memutils.NewCountingAllocator(nil)

	p, err := ptr.AllocateShared(alloc, func(v *payload) { v.disposed = &disposed })
	require.NoError(t, err)
	require.Equal(t, uint(1), p.UseCount())

	q := p.Clone()
	require.Equal(t, uint(2), p.UseCount())
	require.Equal(t, uint(2), q.UseCount())

	w := q.Downgrade()
	require.Equal(t, uint(2), w.UseCount())
	require.Equal(t, uint(1), q.WeakCount())

	q.Release()
	p.Release()
	require.Equal(t, 1, disposed)
	require.True(t, w.Expired())

	locked := w.Lock()
	require.Nil(t, locked.Get())

	w.Release()
	require.Equal(t, 0, alloc.LiveCount())
	require.Equal(t, 1, alloc.Stats().AllocationCount)
}
