package capability

import (
	"sync/atomic"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
)

// Limits on the number of constituents of a Composite.
const (
	MinConstituents = 2
	MaxConstituents = 6
)

// Constituent is one facet of a Composite.
type Constituent struct {
	Facet any
	ID    entities.CUID
}

// Facet builds a Constituent.
func Facet(id entities.CUID, facet any) Constituent {
	return Constituent{ID: id, Facet: facet}
}

// Composite exposes two to six facets. Its identity is the XOR of the
// constituent identities.
type Composite struct {
	self         any
	hook         func()
	constituents []Constituent
	id           entities.CUID
	released     atomic.Bool
}

// NewComposite validates cs and builds the composite. Identities must be
// non-zero and pairwise distinct, and their XOR must differ from zero and
// from every constituent identity.
func NewComposite(cs []Constituent, opts ...Option) (*Composite, error) {
	ids := make([]entities.CUID, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}

	if len(cs) < MinConstituents || len(cs) > MaxConstituents {
		return nil, &errors.CompositionError{Reason: "between 2 and 6 constituents required", IDs: ids}
	}
	seen := make(map[entities.CUID]bool, len(cs))
	for _, id := range ids {
		if id == entities.BaseCUID {
			return nil, &errors.CompositionError{Reason: "constituent id is zero", IDs: ids}
		}
		if seen[id] {
			return nil, &errors.CompositionError{Reason: "duplicate constituent id " + id.String(), IDs: ids}
		}
		seen[id] = true
	}
	composite := entities.Compose(ids...)
	if composite == entities.BaseCUID || seen[composite] {
		return nil, &errors.CompositionError{Reason: "composite id collides with " + composite.String(), IDs: ids}
	}

	cfg := objectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Composite{
		constituents: append([]Constituent(nil), cs...),
		id:           composite,
		self:         cfg.self,
		hook:         cfg.onRelease,
	}
	if c.self == nil {
		c.self = c
	}
	return c, nil
}

// MustComposite is NewComposite that panics on invalid input. Use it for
// statically known facet sets.
func MustComposite(cs []Constituent, opts ...Option) *Composite {
	c, err := NewComposite(cs, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns the composite identity.
func (c *Composite) ID() entities.CUID {
	return c.id
}

// IDs returns the constituent identities in declaration order.
func (c *Composite) IDs() []entities.CUID {
	out := make([]entities.CUID, len(c.constituents))
	for i, con := range c.constituents {
		out[i] = con.ID
	}
	return out
}

// QueryCapability implements Base. Unknown identities are forwarded to the
// constituents in declaration order; the first non-nil answer wins.
func (c *Composite) QueryCapability(id entities.CUID) any {
	if id == c.id {
		return c.self
	}
	for _, con := range c.constituents {
		if con.ID == id {
			return con.Facet
		}
	}
	if id == entities.BaseCUID {
		return c.constituents[0].Facet
	}
	for _, con := range c.constituents {
		if c.isSelf(con.Facet) {
			continue
		}
		q, ok := con.Facet.(Querier)
		if !ok || isNil(q) {
			continue
		}
		if v := q.QueryCapability(id); v != nil {
			return v
		}
	}
	return nil
}

// Release releases every distinct constituent in reverse declaration order,
// once, then runs the release hook.
func (c *Composite) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	var done []any
	for i := len(c.constituents) - 1; i >= 0; i-- {
		f := c.constituents[i].Facet
		if c.isSelf(f) || containsSame(done, f) {
			continue
		}
		done = append(done, f)
		Release(f)
	}
	if c.hook != nil {
		c.hook()
	}
}

// Released reports whether Release has run.
func (c *Composite) Released() bool {
	return c.released.Load()
}

func (c *Composite) isSelf(v any) bool {
	return Same(v, c) || Same(v, c.self)
}

func containsSame(list []any, v any) bool {
	for _, x := range list {
		if Same(x, v) {
			return true
		}
	}
	return false
}
