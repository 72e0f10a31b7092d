// Package host locates and loads the sensecore core module.
//
// A Loader walks its discovery steps in order (local runtime override,
// optional compiled fallback, system install), opens each candidate with
// the first ModuleOpener that accepts it, resolves the fixed
// session_create entry point and calls it with the requested interface
// version. The first candidate that yields a root wins. Every bootstrap
// produces an entities.LoadReport describing the attempts made.
//
// Native modules are Go entry points published in a registry.Registry;
// ".wasm" modules are instantiated with wazero.
package host
