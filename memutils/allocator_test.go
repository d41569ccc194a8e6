package memutils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/shared/memutils"
	mock_memutils "github.com/vkngwrapper/shared/memutils/mocks"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

func TestRuntimeAllocator(t *testing.T) {
	var alloc memutils.RuntimeAllocator

	v, err := alloc.Allocate(8, func() any { return new(int64) })
	require.NoError(t, err)
	require.IsType(t, new(int64), v)

	alloc.Deallocate(v, 8)
}

func TestCountingAllocatorAccounting(t *testing.T) {
	alloc := memutils.NewCountingAllocator(nil)

	first, err := alloc.Allocate(16, func() any { return new([2]int64) })
	require.NoError(t, err)
	second, err := alloc.Allocate(8, func() any { return new(int64) })
	require.NoError(t, err)

	require.Equal(t, memutils.Statistics{
		BlockCount:      2,
		AllocationCount: 2,
		BlockBytes:      24,
		AllocationBytes: 24,
	}, alloc.Stats())
	require.Equal(t, 2, alloc.LiveCount())

	alloc.Deallocate(first, 16)
	alloc.Deallocate(second, 8)

	require.Equal(t, memutils.Statistics{
		BlockCount:      0,
		AllocationCount: 2,
		BlockBytes:      0,
		AllocationBytes: 24,
	}, alloc.Stats())
	require.Equal(t, 0, alloc.LiveCount())
}

func TestCountingAllocatorRejectsForeignStorage(t *testing.T) {
	alloc := memutils.NewCountingAllocator(nil)

	require.Panics(t, func() {
		alloc.Deallocate(new(int64), 8)
	})
}

func TestCountingAllocatorRejectsSizeMismatch(t *testing.T) {
	alloc := memutils.NewCountingAllocator(nil)

	v, err := alloc.Allocate(16, func() any { return new([2]int64) })
	require.NoError(t, err)

	require.Panics(t, func() {
		alloc.Deallocate(v, 8)
	})
}

func TestCountingAllocatorPropagatesFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	inner := mock_memutils.NewMockAllocator(ctrl)
	inner.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(nil, memutils.AllocationFailedError)

	alloc := memutils.NewCountingAllocator(inner)

	_, err := alloc.Allocate(8, func() any { return new(int64) })
	require.ErrorIs(t, err, memutils.AllocationFailedError)
	require.Equal(t, 0, alloc.LiveCount())
	require.Equal(t, memutils.Statistics{}, alloc.Stats())
}

func TestCountingAllocatorBuildStatsString(t *testing.T) {
	alloc := memutils.NewCountingAllocator(nil)

	_, err := alloc.Allocate(8, func() any { return new(int64) })
	require.NoError(t, err)

	require.JSONEq(t,
		`{"BlockCount":1,"AllocationCount":1,"BlockBytes":8,"AllocationBytes":8}`,
		alloc.BuildStatsString())
}

func TestLoggingAllocator(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	alloc := memutils.NewLoggingAllocator(nil, logger)

	v, err := alloc.Allocate(8, func() any { return new(int64) })
	require.NoError(t, err)
	alloc.Deallocate(v, 8)

	require.Contains(t, buf.String(), "LoggingAllocator::Allocate")
	require.Contains(t, buf.String(), "LoggingAllocator::Deallocate")
}
