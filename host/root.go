package host

import (
	"context"
	"sync"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// Root is the root capability returned by a bootstrap. It answers the
// queries of the module's root object. Releasing it releases the root
// object and then closes the module, unless the module is cached.
type Root struct {
	entities.Capability

	id        string
	candidate entities.Candidate
	status    entities.Status
	done      func(context.Context)
	once      sync.Once
}

// ID identifies the root in load reports.
func (r *Root) ID() string {
	return r.id
}

// Candidate returns the discovery candidate the root was loaded from.
func (r *Root) Candidate() entities.Candidate {
	return r.candidate
}

// Status returns the status reported by the entry point. It is
// StatusNoError or a warning.
func (r *Root) Status() entities.Status {
	return r.status
}

// Session returns the root's session facet.
func (r *Root) Session() (capabilities.Session, bool) {
	return capability.Query[capabilities.Session](r.Capability, capabilities.CUIDSession)
}

// SessionService returns the root's session service facet.
func (r *Root) SessionService() (capabilities.SessionService, bool) {
	return capability.Query[capabilities.SessionService](r.Capability, capabilities.CUIDSessionService)
}

// Release releases the root object and its module. Later calls do
// nothing.
func (r *Root) Release() {
	r.once.Do(func() {
		r.Capability.Release()
		if r.done != nil {
			r.done(context.Background())
		}
	})
}
