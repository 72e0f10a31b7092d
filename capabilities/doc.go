// Package capabilities declares the domain interfaces offered by vendor
// modules, each under its own capability identifier. The behaviour behind
// them is supplied at runtime by the loaded core module; this package only
// fixes identities, data shapes and method sets, plus a few in-process
// implementations that need no hardware (images, metadata, power state
// bookkeeping).
package capabilities
