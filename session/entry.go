package session

import (
	"context"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
	"github.com/reglet-dev/sensecore/domain/ports"
)

// CreateExt is the module-side creation entry point. It refuses requests
// the session version cannot serve with StatusParamUnsupported.
func CreateExt(ctx context.Context, req entities.SessionRequest, opts ...Option) (entities.Capability, entities.Status) {
	cfg := defaultServiceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.version.Supports(req.Version) {
		err := &errors.VersionError{Requested: req.Version, Provided: cfg.version}
		cfg.logger.DebugContext(ctx, "session version mismatch", "error", err)
		return nil, errors.StatusOf(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, entities.StatusExecAborted
	}
	return New(append(opts[:len(opts):len(opts)], WithOptions(req.Options))...), entities.StatusNoError
}

// EntryPoint returns CreateExt bound to opts.
func EntryPoint(opts ...Option) entities.CreateSessionFunc {
	return func(ctx context.Context, req entities.SessionRequest) (entities.Capability, entities.Status) {
		return CreateExt(ctx, req, opts...)
	}
}

// Register publishes the session entry point under path.
func Register(reg ports.ModuleRegistry, path string, opts ...Option) error {
	return reg.Register(path, EntryPoint(opts...))
}
