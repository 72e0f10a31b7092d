package capability

import (
	"sync/atomic"

	"github.com/reglet-dev/sensecore/domain/entities"
)

type objectConfig struct {
	self      any
	onRelease func()
}

// Option configures an Object or a Composite.
type Option func(*objectConfig)

// WithSelf sets the value returned for the object's own identity. Use it
// when the object is embedded in a larger struct that should be returned
// instead. The owner is never queried or released through the fallback.
func WithSelf(self any) Option {
	return func(c *objectConfig) {
		c.self = self
	}
}

// WithReleaseHook runs fn once, after the facets have been released.
func WithReleaseHook(fn func()) Option {
	return func(c *objectConfig) {
		c.onRelease = fn
	}
}

// Object exposes a single facet. Its own identity is the facet identity
// plus one.
type Object struct {
	facet    any
	self     any
	hook     func()
	id       entities.CUID
	released atomic.Bool
}

// NewObject wraps facet under id.
func NewObject(id entities.CUID, facet any, opts ...Option) *Object {
	cfg := objectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	o := &Object{id: id, facet: facet, self: cfg.self, hook: cfg.onRelease}
	if o.self == nil {
		o.self = o
	}
	return o
}

// ID returns the object's own identity.
func (o *Object) ID() entities.CUID {
	return entities.Derive(o.id)
}

// FacetID returns the identity of the wrapped facet.
func (o *Object) FacetID() entities.CUID {
	return o.id
}

// QueryCapability implements Base.
func (o *Object) QueryCapability(id entities.CUID) any {
	switch id {
	case o.ID():
		return o.self
	case o.id, entities.BaseCUID:
		return o.facet
	}
	return nil
}

// Release releases the facet once.
func (o *Object) Release() {
	if !o.released.CompareAndSwap(false, true) {
		return
	}
	if !Same(o.facet, o.self) && !Same(o.facet, o) {
		Release(o.facet)
	}
	if o.hook != nil {
		o.hook()
	}
}
