package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

type contextKey struct {
	name string
}

var modulePathKey = &contextKey{name: "module_path"}

// WithModulePath records the path of the module being called into.
func WithModulePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, modulePathKey, path)
}

// ModulePathFromContext returns the path stored by WithModulePath.
func ModulePathFromContext(ctx context.Context) (string, bool) {
	path, ok := ctx.Value(modulePathKey).(string)
	return path, ok
}

// ModulePath returns the module path from ctx, falling back to the
// instance name.
func ModulePath(ctx context.Context, mod api.Module) string {
	if path, ok := ModulePathFromContext(ctx); ok {
		return path
	}
	if mod == nil {
		return ""
	}
	return mod.Name()
}
