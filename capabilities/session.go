package capabilities

import (
	"context"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// Session is the application-facing root facet.
type Session interface {
	capability.Base
	// Version returns the interface version the session provides.
	Version() entities.Version
	// QueryImpl returns the idx-th implementation matching tmpl, in
	// descending merit order.
	QueryImpl(tmpl entities.ImplDesc, idx int) (entities.ImplDesc, entities.Status)
	// CreateImpl instantiates the best implementation matching tmpl that
	// offers id. The returned handle answers id and owns the instance.
	CreateImpl(ctx context.Context, tmpl entities.ImplDesc, id entities.CUID) (capability.Base, entities.Status)
}

// SessionService is the module-facing root facet.
type SessionService interface {
	capability.Base
	QueryImplEx(tmpl entities.ImplDesc, idx int) (*entities.ExportTable, entities.Status)
	LoadImpl(table *entities.ExportTable) entities.Status
	// UnloadImpl fails with StatusExecInProgress while instances created
	// from table are alive.
	UnloadImpl(table *entities.ExportTable) entities.Status
	TraceEvent(name string)
	TraceBegin(task string)
	TraceEnd()
	TraceParam(name, value string)
}
