package dataset

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	acquires   atomic.Int64
	releases   atomic.Int64
	acquireErr error
}

func (g *fakeGate) AcquireDataset(ctx context.Context) error {
	if g.acquireErr != nil {
		return g.acquireErr
	}
	g.acquires.Add(1)
	return nil
}

func (g *fakeGate) ReleaseDataset() { g.releases.Add(1) }

func smallFrame() *Frame {
	return NewFrame("s", 2, []*Column{
		{Name: "v", Kind: KindNumeric, Floats: []float64{1, 2}, Missing: []bool{false, false}},
	})
}

func TestManagerAdoptGetClose(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Minute, time.Hour, gate, nil)

	id, err := m.Adopt(context.Background(), smallFrame())
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())
	require.EqualValues(t, 1, gate.acquires.Load())

	h, ok := m.Get(id)
	require.True(t, ok)
	require.Equal(t, id, h.ID)
	require.Equal(t, 2, h.Frame.Rows)

	require.NoError(t, m.WithFrame(id, func(f *Frame) error {
		require.Equal(t, "s", f.Sheet)
		return nil
	}))

	require.NoError(t, m.CloseHandle(context.Background(), id))
	require.Zero(t, m.Count())
	require.EqualValues(t, 1, gate.releases.Load())

	require.ErrorIs(t, m.CloseHandle(context.Background(), id), ErrHandleNotFound)
	require.ErrorIs(t, m.WithFrame(id, func(*Frame) error { return nil }), ErrHandleNotFound)
}

func TestManagerAdoptGateDenied(t *testing.T) {
	gate := &fakeGate{acquireErr: errors.New("at capacity")}
	m := NewManager(time.Minute, time.Hour, gate, nil)

	_, err := m.Adopt(context.Background(), smallFrame())
	require.Error(t, err)
	require.Zero(t, m.Count())
}

func TestManagerTTLEviction(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	gate := &fakeGate{}
	m := NewManager(time.Minute, time.Hour, gate, clock)

	id, err := m.Adopt(context.Background(), smallFrame())
	require.NoError(t, err)

	// Not yet expired.
	now = now.Add(30 * time.Second)
	m.EvictExpired()
	require.Equal(t, 1, m.Count())

	// Access refreshes the idle TTL.
	_, ok := m.Get(id)
	require.True(t, ok)
	now = now.Add(45 * time.Second)
	m.EvictExpired()
	require.Equal(t, 1, m.Count())

	// Idle past the TTL drops the handle and releases capacity.
	now = now.Add(2 * time.Minute)
	m.EvictExpired()
	require.Zero(t, m.Count())
	require.EqualValues(t, 1, gate.releases.Load())
	_, ok = m.Get(id)
	require.False(t, ok)
}

func TestManagerOpenUnsupportedFormat(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Minute, time.Hour, gate, nil)

	_, _, err := m.Open(context.Background(), "/tmp/data.csv", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported format")
	require.Equal(t, gate.acquires.Load(), gate.releases.Load())
}

func TestManagerOpenLoadsWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"x", "y"},
		{"1", "2"},
		{"3", "4"},
	})
	m := NewManager(time.Minute, time.Hour, nil, nil)

	id, canonical, err := m.Open(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, path, canonical)

	h, ok := m.Get(id)
	require.True(t, ok)
	require.Equal(t, "Data", h.Frame.Sheet)
	require.Equal(t, 2, h.Frame.Rows)
	require.Equal(t, 2, h.Meta.Rows)
}

func TestManagerOpenBadSheetReleasesGate(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{{"x"}, {"1"}})
	gate := &fakeGate{}
	m := NewManager(time.Minute, time.Hour, gate, nil)

	_, _, err := m.Open(context.Background(), path, "NoSuch")
	require.Error(t, err)
	require.Equal(t, gate.acquires.Load(), gate.releases.Load())
	require.Zero(t, m.Count())
}

func TestManagerCloseDropsAllHandles(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Minute, time.Millisecond, gate, nil)
	m.Start()

	_, err := m.Adopt(context.Background(), smallFrame())
	require.NoError(t, err)
	_, err = m.Adopt(context.Background(), smallFrame())
	require.NoError(t, err)

	require.NoError(t, m.Close(context.Background()))
	require.Zero(t, m.Count())
	require.EqualValues(t, 2, gate.releases.Load())
}
