package capabilities

import (
	"context"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// AudioFormat is a sample format.
type AudioFormat int32

// AudioFormatPCM is 16-bit PCM and AudioFormatIEEEFloat 32-bit float.
const (
	AudioFormatPCM       AudioFormat = 'P' | 'C'<<8 | 'M'<<16 | ' '<<24
	AudioFormatIEEEFloat AudioFormat = 'F' | 'L'<<8 | 'T'<<16 | ' '<<24
)

// AudioInfo describes an audio stream.
type AudioInfo struct {
	BufferSize  int32
	Format      AudioFormat
	SampleRate  int32
	NChannels   int32
	ChannelMask int32
}

// Audio is one audio buffer.
type Audio interface {
	capability.Base
	Info() AudioInfo
	Data() []byte
	TimeStamp() int64
}

// AudioProfile is a stream configuration.
type AudioProfile struct {
	Info AudioInfo
}

// AudioSourceService streams audio from a device.
type AudioSourceService interface {
	capability.Base
	// QueryProfile returns StatusItemUnavailable past the last profile.
	QueryProfile(idx int32) (AudioProfile, entities.Status)
	Open(profile *AudioProfile) entities.Status
	ReadSample(ctx context.Context) (Audio, entities.Status)
	Close()
}
