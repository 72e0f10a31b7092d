// Package sensecore loads the sensecore core module and hands out its root
// capability.
//
// Most programs need a single call:
//
//	root := sensecore.CreateSession(ctx)
//	if root == nil {
//		// no core module installed
//	}
//	defer root.Release()
//	sess, _ := root.Session()
//
// Discovery is configured through the environment (SENSECORE_CORE,
// SENSECORE_<ARCH>_LOCAL_RUNTIME, SENSECORE_DISPATCH_FILE), the dispatch
// file, or host.LoaderOption values.
package sensecore

import (
	"context"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/host"
)

// Version is the interface version this package requests by default.
var Version = entities.SDKVersion

// CreateSession runs discovery and returns the root, or nil when no
// candidate produced one.
func CreateSession(ctx context.Context, opts ...host.LoaderOption) *host.Root {
	root, _, err := Bootstrap(ctx, opts...)
	if err != nil {
		return nil
	}
	return root
}

// Bootstrap runs discovery once and returns the root together with the
// load report. On failure the error is a *errors.DiscoveryError unless the
// loader could not be configured.
func Bootstrap(ctx context.Context, opts ...host.LoaderOption) (*host.Root, *entities.LoadReport, error) {
	l, err := host.NewLoader(opts...)
	if err != nil {
		return nil, nil, err
	}
	return l.Bootstrap(ctx)
}
