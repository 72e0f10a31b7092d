package capabilities

import (
	"context"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/syncpoint"
)

// DevCapLimit is the maximum number of device capabilities in a DataDesc.
const DevCapLimit = 120

// DeviceCap is a device property and its requested value.
type DeviceCap struct {
	Label int32
	Value float32
}

// StreamDesc describes one requested stream.
type StreamDesc struct {
	SizeMin     SizeI32
	SizeMax     SizeI32
	FrameRate   RangeF32
	Options     StreamOption
	PropertySet int32
}

// StreamDescSet holds one descriptor per stream type.
type StreamDescSet struct {
	Color    StreamDesc
	Depth    StreamDesc
	IR       StreamDesc
	Left     StreamDesc
	Right    StreamDesc
	Reserved [StreamLimit - 5]StreamDesc
}

// Get returns the descriptor of stream t. Stream bits above Right map onto
// the reserved slots, highest bit last.
func (s *StreamDescSet) Get(t StreamType) *StreamDesc {
	switch t {
	case StreamTypeColor:
		return &s.Color
	case StreamTypeDepth:
		return &s.Depth
	case StreamTypeIR:
		return &s.IR
	case StreamTypeLeft:
		return &s.Left
	case StreamTypeRight:
		return &s.Right
	}
	for i, bit := len(s.Reserved)-1, StreamType(1<<(StreamLimit-1)); i >= 0; i, bit = i-1, bit>>1 {
		if t&bit != 0 {
			return &s.Reserved[i]
		}
	}
	return &s.Reserved[StreamLimit-6]
}

// DeviceInfo identifies a capture device.
type DeviceInfo struct {
	Name    string
	Serial  string
	Model   DeviceModel
	Streams StreamType
}

// DataDesc describes the input a module needs.
type DataDesc struct {
	Streams    StreamDescSet
	DeviceCaps []DeviceCap
	DeviceInfo DeviceInfo
}

// Validate checks the device capability limit.
func (d *DataDesc) Validate() entities.Status {
	if len(d.DeviceCaps) > DevCapLimit {
		return entities.StatusParamUnsupported
	}
	return entities.StatusNoError
}

// VideoModule is a frame processing module.
type VideoModule interface {
	capability.Base
	// QueryCaptureProfile returns StatusItemUnavailable past the last profile.
	QueryCaptureProfile(idx int32) (DataDesc, entities.Status)
	SetCaptureProfile(inputs *DataDesc) entities.Status
	// ProcessImageAsync starts processing and returns a sync point the
	// caller must release.
	ProcessImageAsync(ctx context.Context, sample *Sample) (syncpoint.SyncPoint, entities.Status)
}
