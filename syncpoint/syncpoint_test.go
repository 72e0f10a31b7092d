package syncpoint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

func TestPoint_Synchronize(t *testing.T) {
	p := New()
	assert.Equal(t, entities.StatusExecInProgress, p.Status())
	assert.Equal(t, entities.StatusExecTimeout, p.Synchronize(context.Background(), 0))
	assert.Equal(t, entities.StatusExecTimeout, p.Synchronize(context.Background(), 10))

	p.Signal(entities.StatusTimeGap)
	p.Signal(entities.StatusDeviceLost)

	assert.Equal(t, entities.StatusTimeGap, p.Synchronize(context.Background(), 0))
	assert.Equal(t, entities.StatusTimeGap, p.Wait(context.Background()))
	assert.Equal(t, entities.StatusTimeGap, p.Status())
}

func TestPoint_SynchronizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, entities.StatusExecAborted, New().Synchronize(ctx, TimeoutInfinite))
}

func TestGo(t *testing.T) {
	p := Go(context.Background(), func(context.Context) entities.Status {
		return entities.StatusNoError
	})
	assert.Equal(t, entities.StatusNoError, p.Wait(context.Background()))
}

func TestPoint_Capability(t *testing.T) {
	released := 0
	p := New(WithReleaseHook(func() { released++ }))

	sp, ok := capability.Query[SyncPoint](p, CUID)
	require.True(t, ok)
	assert.Same(t, p, sp)
	assert.Same(t, p, p.QueryCapability(entities.BaseCUID))
	assert.Nil(t, p.QueryCapability(entities.Code("EMTN")))

	p.Release()
	p.Release()
	assert.Equal(t, 1, released)
	assert.Equal(t, "'SHSP'", CUID.String())
}

func TestSynchronizeEx_EmptySet(t *testing.T) {
	idx, sts := SynchronizeEx(context.Background(), nil, nil, WaitAll, TimeoutInfinite)
	assert.Equal(t, -1, idx)
	assert.Equal(t, entities.StatusNoError, sts)

	var nilPoint *Point
	idx, sts = SynchronizeEx(context.Background(), []SyncPoint{nil, nilPoint}, []<-chan struct{}{nil}, WaitAny, TimeoutInfinite)
	assert.Equal(t, -1, idx)
	assert.Equal(t, entities.StatusNoError, sts)
}

func TestSynchronizeEx_WaitAll(t *testing.T) {
	a, b := New(), New()
	ev := make(chan struct{})

	go func() {
		a.Signal(entities.StatusNoError)
		time.Sleep(5 * time.Millisecond)
		b.Signal(entities.StatusNoError)
		close(ev)
	}()

	idx, sts := SynchronizeEx(context.Background(), []SyncPoint{a, nil, b}, []<-chan struct{}{ev}, WaitAll, TimeoutInfinite)
	assert.Equal(t, -1, idx)
	assert.Equal(t, entities.StatusNoError, sts)
}

func TestSynchronizeEx_WaitAllTimeout(t *testing.T) {
	a, b := Completed(entities.StatusNoError), New()

	_, sts := SynchronizeEx(context.Background(), []SyncPoint{a, b}, nil, WaitAll, 10)
	assert.Equal(t, entities.StatusExecTimeout, sts)

	_, sts = SynchronizeEx(context.Background(), []SyncPoint{a, b}, nil, WaitAll, 0)
	assert.Equal(t, entities.StatusExecTimeout, sts)
}

func TestSynchronizeEx_WaitAny(t *testing.T) {
	a, b := New(), New()
	ev := make(chan struct{})

	b.Signal(entities.StatusNoError)
	idx, sts := SynchronizeEx(context.Background(), []SyncPoint{nil, a, b}, []<-chan struct{}{ev}, WaitAny, TimeoutInfinite)
	assert.Equal(t, entities.StatusNoError, sts)
	assert.Equal(t, 2, idx)

	c := New()
	close(ev)
	idx, sts = SynchronizeEx(context.Background(), []SyncPoint{a, c}, []<-chan struct{}{nil, ev}, WaitAny, 0)
	assert.Equal(t, entities.StatusNoError, sts)
	assert.Equal(t, 3, idx, "events are indexed after points")
}

func TestSynchronizeEx_WaitAnyTimeoutAndCancel(t *testing.T) {
	a := New()

	idx, sts := SynchronizeEx(context.Background(), []SyncPoint{a}, nil, WaitAny, 10)
	assert.Equal(t, -1, idx)
	assert.Equal(t, entities.StatusExecTimeout, sts)

	_, sts = SynchronizeEx(context.Background(), []SyncPoint{a}, nil, WaitAny, 0)
	assert.Equal(t, entities.StatusExecTimeout, sts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, sts = SynchronizeEx(ctx, []SyncPoint{a}, nil, WaitAny, TimeoutInfinite)
	assert.Equal(t, entities.StatusExecAborted, sts)
}

func TestSynchronizeEx_Limit(t *testing.T) {
	points := make([]SyncPoint, SyncExLimit)
	events := make([]<-chan struct{}, 1)

	_, sts := SynchronizeEx(context.Background(), points, events, WaitAll, 0)
	assert.Equal(t, entities.StatusParamUnsupported, sts)

	_, sts = SynchronizeEx(context.Background(), points, nil, WaitAll, 0)
	assert.Equal(t, entities.StatusNoError, sts)
}

func TestReleaseAll(t *testing.T) {
	released := 0
	hook := WithReleaseHook(func() { released++ })
	points := []SyncPoint{New(hook), nil, New(hook), New(hook)}

	ReleaseAll(points, 0, 3)
	assert.Equal(t, 2, released)
	assert.Nil(t, points[0])
	assert.Nil(t, points[2])
	assert.NotNil(t, points[3])

	ReleaseAll(points, 3, 10)
	assert.Equal(t, 3, released)
	assert.Nil(t, points[3])
}
