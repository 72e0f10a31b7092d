// Package wazero loads WASM core modules with the wazero runtime.
//
// Opener implements ports.ModuleOpener for ".wasm" paths. Every module gets
// its own runtime with WASI and the "sensecore_host" host module, which
// exports the JSON host functions of a hostfuncs.HandlerRegistry plus
// log_message.
//
// # Guest ABI
//
// A core module exports
//
//	session_create(major, minor, build, reserved, options, reserved2 i32) -> status i32
//	query_instance(cuid i32) -> handle i32     (optional, 0 = absent)
//	release_instance(handle i32)               (optional, 0 = the root)
//
// Byte buffers cross the boundary as one i64 holding ptr<<32 | len. Host
// function responses are written into memory obtained from the guest's
// "allocate" export.
//
// # Host functions only
//
// RegisterWithRuntime can also be used on its own:
//
//	reg, err := hostfuncs.NewRegistry(hostfuncs.WithBundle(hostfuncs.CoreBundle()))
//	if err != nil {
//		return err
//	}
//	err = wazero.RegisterWithRuntime(ctx, rt, reg, wazero.WithModuleName("sensecore_host"))
package wazero
