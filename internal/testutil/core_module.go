package testutil

import (
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/internal/abi"
)

const (
	logOffset     = 1024
	releaseOffset = 2048
)

// CoreModule describes a fake core module.
type CoreModule struct {
	// Major is the only interface major version session_create accepts.
	// Other requests return StatusParamUnsupported.
	Major uint32
	// Status is returned on an accepted request.
	Status entities.Status
	// Log, when set, is passed to sensecore_host.log_message by
	// session_create.
	Log string
	// ReleaseLog, when set, is logged by release_instance.
	ReleaseLog string
	// Handles maps capability ids to instance handles for query_instance.
	Handles map[entities.CUID]uint32
	// OmitEntryPoint leaves out session_create.
	OmitEntryPoint bool
	// Trap makes session_create execute unreachable.
	Trap bool
}

// Bytes assembles the module.
func (c CoreModule) Bytes() []byte {
	b := NewModuleBuilder()
	logFn := uint32(0)
	needsLog := c.Log != "" || c.ReleaseLog != ""
	if needsLog {
		logFn = b.ImportFunc(abi.HostModule, abi.ImportLogMessage, []byte{I64}, nil)
	}
	b.Memory(1)

	callLog := func(offset uint32, msg string) []byte {
		packed := int64(abi.PackPtrLen(offset, uint32(len(msg)))) //nolint:gosec // G115: test data offsets
		return Code(I64Const(packed), []byte{OpCall}, appendU32(nil, logFn))
	}

	if !c.OmitEntryPoint {
		var body []byte
		if c.Trap {
			body = []byte{OpUnreachable}
		} else {
			if c.Log != "" {
				b.Data(logOffset, []byte(c.Log))
				body = append(body, callLog(logOffset, c.Log)...)
			}
			body = append(body, Code(
				[]byte{OpLocalGet, 0}, I32Const(int32(c.Major)), []byte{OpI32Ne},
				[]byte{OpIf, BlockI32},
				I32Const(int32(entities.StatusParamUnsupported)),
				[]byte{OpElse},
				I32Const(int32(c.Status)),
				[]byte{OpEnd},
			)...)
		}
		i32x6 := []byte{I32, I32, I32, I32, I32, I32}
		b.Export(abi.ExportSessionCreate, b.Func(i32x6, []byte{I32}, body))
	}

	if len(c.Handles) > 0 {
		var body []byte
		for id, h := range c.Handles {
			body = append(body, Code(
				[]byte{OpLocalGet, 0}, I32Const(int32(id)), []byte{OpI32Eq},
				[]byte{OpIf, BlockEmpty},
				I32Const(int32(h)), []byte{OpReturn},
				[]byte{OpEnd},
			)...)
		}
		body = append(body, I32Const(0)...)
		b.Export(abi.ExportQueryInstance, b.Func([]byte{I32}, []byte{I32}, body))
	}

	var release []byte
	if c.ReleaseLog != "" {
		b.Data(releaseOffset, []byte(c.ReleaseLog))
		release = callLog(releaseOffset, c.ReleaseLog)
	}
	b.Export(abi.ExportReleaseInstance, b.Func([]byte{I32}, nil, release))

	return b.Bytes()
}
