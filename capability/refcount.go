package capability

import (
	"sync/atomic"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// RefCounted gives inner a shared lifetime. The count starts at one and
// inner is released exactly once, when the count drops to zero.
type RefCounted struct {
	inner     Base
	count     atomic.Int32
	destroyed atomic.Bool
}

// NewRefCounted wraps inner with a count of one.
func NewRefCounted(inner Base) *RefCounted {
	r := &RefCounted{inner: inner}
	r.count.Store(1)
	return r
}

// AddRef increments the count and returns the new value. It returns zero
// and leaves the count unchanged once the object is destroyed.
func (r *RefCounted) AddRef() int32 {
	for {
		n := r.count.Load()
		if n <= 0 {
			return 0
		}
		if r.count.CompareAndSwap(n, n+1) {
			return n + 1
		}
	}
}

// Release decrements the count and destroys inner on the transition to
// zero. Releases after that are ignored.
func (r *RefCounted) Release() {
	for {
		n := r.count.Load()
		if n <= 0 {
			return
		}
		if r.count.CompareAndSwap(n, n-1) {
			if n == 1 && r.destroyed.CompareAndSwap(false, true) {
				r.inner.Release()
			}
			return
		}
	}
}

// Count returns the current count.
func (r *RefCounted) Count() int32 {
	return r.count.Load()
}

// Destroyed reports whether inner has been released.
func (r *RefCounted) Destroyed() bool {
	return r.destroyed.Load()
}

// QueryCapability implements Base. Answers that resolve to the wrapped
// object are replaced by the wrapper.
func (r *RefCounted) QueryCapability(id entities.CUID) any {
	if id == AddRefCUID {
		return r
	}
	v := r.inner.QueryCapability(id)
	if Same(v, r.inner) {
		return r
	}
	return v
}

// Inner returns the wrapped object.
func (r *RefCounted) Inner() Base {
	return r.inner
}
