// Package abi names the functions and encodings shared by the host and
// WASM core modules.
//
// Byte buffers cross the boundary as a single i64: the pointer into guest
// linear memory in the high 32 bits and the length in the low 32 bits.
package abi

import (
	"fmt"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// HostModule is the import module core modules link against.
const HostModule = "sensecore_host"

// Host function imported by core modules for structured logging.
const ImportLogMessage = "log_message"

// Core module exports.
const (
	ExportSessionCreate   = entities.EntryPointName
	ExportQueryInstance   = "query_instance"
	ExportReleaseInstance = "release_instance"
	ExportAllocate        = "allocate"
	ExportInitialize      = "_initialize"
	ExportMemory          = "memory"
)

// PtrHighBits is the shift of the pointer half of a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen splits a packed value. Values come from guests, so a null
// pointer with a length is returned as is for the caller to reject.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> PtrHighBits), uint32(packed) //nolint:gosec // G115: packed 32-bit halves
}

// Valid reports whether packed does not pair a null pointer with a length.
func Valid(packed uint64) bool {
	ptr, length := UnpackPtrLen(packed)
	return ptr != 0 || length == 0
}
