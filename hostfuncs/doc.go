// Package hostfuncs implements the JSON host functions a WASM core module
// can import from the host module. Handlers are plain Go with no runtime
// dependency; infrastructure/wazero binds a HandlerRegistry to an
// instantiated runtime.
//
// A registry is built once and is immutable afterwards:
//
//	reg, err := hostfuncs.NewRegistry(
//		hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//		hostfuncs.WithBundle(hostfuncs.CoreBundle()),
//	)
package hostfuncs
