// Package syncpoint provides completion handles for asynchronous operations
// and helpers that wait on many of them at once.
package syncpoint

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// CUID identifies the sync point capability ('SHSP').
const CUID entities.CUID = 'S' | 'H'<<8 | 'S'<<16 | 'P'<<24

const (
	// TimeoutInfinite waits without a deadline.
	TimeoutInfinite int32 = -1
	// SyncExLimit is the maximum number of entries SynchronizeEx accepts.
	SyncExLimit = 64
)

// WaitMode selects how SynchronizeEx completes.
type WaitMode int

const (
	// WaitAll returns once every entry is signalled.
	WaitAll WaitMode = iota
	// WaitAny returns once one entry is signalled, with its index.
	WaitAny
)

// SyncPoint is the completion handle of an asynchronous operation.
type SyncPoint interface {
	capability.Base
	// Synchronize waits up to timeout milliseconds for completion.
	Synchronize(ctx context.Context, timeout int32) entities.Status
	// Done is closed when the operation completes.
	Done() <-chan struct{}
}

// Point is the standard SyncPoint.
type Point struct {
	done      chan struct{}
	onRelease func()
	once      sync.Once
	status    atomic.Int32
	released  atomic.Bool
}

// PointOption configures a Point.
type PointOption func(*Point)

// WithReleaseHook runs fn once when the point is released.
func WithReleaseHook(fn func()) PointOption {
	return func(p *Point) {
		p.onRelease = fn
	}
}

// New returns a pending point.
func New(opts ...PointOption) *Point {
	p := &Point{done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Completed returns a point that is already signalled with s.
func Completed(s entities.Status) *Point {
	p := New()
	p.Signal(s)
	return p
}

// Go runs fn on a new goroutine and signals the returned point with its
// result.
func Go(ctx context.Context, fn func(context.Context) entities.Status) *Point {
	p := New()
	go func() {
		p.Signal(fn(ctx))
	}()
	return p
}

// Signal completes the point with s. Only the first call has an effect.
func (p *Point) Signal(s entities.Status) {
	p.once.Do(func() {
		p.status.Store(int32(s))
		close(p.done)
	})
}

// Done implements SyncPoint.
func (p *Point) Done() <-chan struct{} {
	return p.done
}

// Status returns the completion status, or StatusExecInProgress while the
// point is pending.
func (p *Point) Status() entities.Status {
	select {
	case <-p.done:
		return entities.Status(p.status.Load())
	default:
		return entities.StatusExecInProgress
	}
}

// Synchronize waits for completion and returns the completion status.
// It returns StatusExecTimeout when timeout elapses and StatusExecAborted
// when ctx is cancelled first.
func (p *Point) Synchronize(ctx context.Context, timeout int32) entities.Status {
	if ctx == nil {
		ctx = context.Background()
	}
	timer, stop := deadline(timeout)
	defer stop()

	select {
	case <-p.done:
		return entities.Status(p.status.Load())
	default:
	}
	if timeout == 0 {
		return entities.StatusExecTimeout
	}

	select {
	case <-p.done:
		return entities.Status(p.status.Load())
	case <-timer:
		return entities.StatusExecTimeout
	case <-ctx.Done():
		return entities.StatusExecAborted
	}
}

// Wait synchronizes without a deadline.
func (p *Point) Wait(ctx context.Context) entities.Status {
	return p.Synchronize(ctx, TimeoutInfinite)
}

// QueryCapability implements capability.Base.
func (p *Point) QueryCapability(id entities.CUID) any {
	switch id {
	case CUID, entities.BaseCUID:
		return p
	}
	return nil
}

// Release runs the release hook once.
func (p *Point) Release() {
	if !p.released.CompareAndSwap(false, true) {
		return
	}
	if p.onRelease != nil {
		p.onRelease()
	}
}

// SynchronizeEx waits on sync points and plain event channels. Nil entries
// are skipped. Events are indexed after points. With WaitAny the index of
// the first signalled entry is returned; with WaitAll the index is -1.
// An empty wait set succeeds immediately.
func SynchronizeEx(ctx context.Context, points []SyncPoint, events []<-chan struct{}, mode WaitMode, timeout int32) (int, entities.Status) {
	if len(points)+len(events) > SyncExLimit {
		return -1, entities.StatusParamUnsupported
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		chans   []<-chan struct{}
		indices []int
	)
	for i, sp := range points {
		if isNilPoint(sp) {
			continue
		}
		chans = append(chans, sp.Done())
		indices = append(indices, i)
	}
	for j, ev := range events {
		if ev == nil {
			continue
		}
		chans = append(chans, ev)
		indices = append(indices, len(points)+j)
	}
	if len(chans) == 0 {
		return -1, entities.StatusNoError
	}

	timer, stop := deadline(timeout)
	defer stop()

	if mode == WaitAny {
		return waitAny(ctx, chans, indices, timer, timeout == 0)
	}
	return -1, waitAll(ctx, chans, timer, timeout == 0)
}

func waitAll(ctx context.Context, chans []<-chan struct{}, timer <-chan time.Time, poll bool) entities.Status {
	for _, ch := range chans {
		if poll {
			select {
			case <-ch:
				continue
			default:
				return entities.StatusExecTimeout
			}
		}
		select {
		case <-ch:
		case <-timer:
			return entities.StatusExecTimeout
		case <-ctx.Done():
			return entities.StatusExecAborted
		}
	}
	return entities.StatusNoError
}

func waitAny(ctx context.Context, chans []<-chan struct{}, indices []int, timer <-chan time.Time, poll bool) (int, entities.Status) {
	cases := make([]reflect.SelectCase, 0, len(chans)+2)
	for _, ch := range chans {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ch)})
	}
	ctxCase := len(cases)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
	timerCase := len(cases)
	switch {
	case poll:
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectDefault})
	case timer != nil:
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(timer)})
	default:
		timerCase = -1
	}

	chosen, _, _ := reflect.Select(cases)
	switch {
	case chosen < len(chans):
		return indices[chosen], entities.StatusNoError
	case chosen == ctxCase:
		return -1, entities.StatusExecAborted
	case chosen == timerCase:
		return -1, entities.StatusExecTimeout
	}
	return -1, entities.StatusExecTimeout
}

// ReleaseAll releases points[start:start+n] and clears the released slots.
// The range is clamped to the slice.
func ReleaseAll(points []SyncPoint, start, n int) {
	if start < 0 {
		start = 0
	}
	end := start + n
	if end > len(points) {
		end = len(points)
	}
	for i := start; i < end; i++ {
		if !isNilPoint(points[i]) {
			points[i].Release()
		}
		points[i] = nil
	}
}

func deadline(timeout int32) (<-chan time.Time, func()) {
	if timeout <= 0 {
		return nil, func() {}
	}
	t := time.NewTimer(time.Duration(timeout) * time.Millisecond)
	return t.C, func() { t.Stop() }
}

func isNilPoint(sp SyncPoint) bool {
	if sp == nil {
		return true
	}
	v := reflect.ValueOf(sp)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
