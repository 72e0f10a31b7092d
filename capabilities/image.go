package capabilities

import (
	"sync"

	"github.com/reglet-dev/sensecore/capability"
)

// PixelFormat is the layout of image samples.
type PixelFormat int32

const (
	PixelFormatAny      PixelFormat = 0
	PixelFormatYUY2     PixelFormat = 0x00010000
	PixelFormatNV12     PixelFormat = 0x00010001
	PixelFormatRGB32    PixelFormat = 0x00010002
	PixelFormatRGB24    PixelFormat = 0x00010003
	PixelFormatY8       PixelFormat = 0x00010004
	PixelFormatDepth    PixelFormat = 0x00020000
	PixelFormatDepthF   PixelFormat = 0x00020001
	PixelFormatDepthRaw PixelFormat = 0x00020002
	PixelFormatY16      PixelFormat = 0x00040000
)

// BytesPerPixel returns the sample size of packed formats and zero for
// planar or unknown ones.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB32, PixelFormatDepthF:
		return 4
	case PixelFormatRGB24:
		return 3
	case PixelFormatYUY2, PixelFormatDepth, PixelFormatDepthRaw, PixelFormatY16:
		return 2
	case PixelFormatY8:
		return 1
	}
	return 0
}

// ImageInfo describes an image.
type ImageInfo struct {
	Width    int32
	Height   int32
	Format   PixelFormat
	Reserved int32
}

// Size returns the pixel buffer length in bytes. Non-positive dimensions
// give 0.
func (i ImageInfo) Size() int {
	if i.Width <= 0 || i.Height <= 0 {
		return 0
	}
	return int(i.Width) * int(i.Height) * i.Format.BytesPerPixel()
}

// Image is a reference-counted frame buffer.
type Image interface {
	capability.Base
	capability.AddRefer
	Info() ImageInfo
	// Data returns the pixel buffer. It is nil after the last release.
	Data() []byte
	TimeStamp() int64
}

// SharedImage is an in-memory Image.
type SharedImage struct {
	*capability.RefCounted
	mu        sync.RWMutex
	info      ImageInfo
	pix       []byte
	timeStamp int64
}

// NewImage allocates a zeroed image of info.Size() bytes. The returned
// image holds one reference.
func NewImage(info ImageInfo, timeStamp int64) *SharedImage {
	return NewImageFrom(info, make([]byte, info.Size()), timeStamp)
}

// NewImageFrom wraps pix without copying.
func NewImageFrom(info ImageInfo, pix []byte, timeStamp int64) *SharedImage {
	img := &SharedImage{info: info, pix: pix, timeStamp: timeStamp}
	obj := capability.NewObject(CUIDImage, img,
		capability.WithSelf(img),
		capability.WithReleaseHook(img.free))
	img.RefCounted = capability.NewRefCounted(obj)
	return img
}

// Info implements Image.
func (i *SharedImage) Info() ImageInfo {
	return i.info
}

// Data implements Image.
func (i *SharedImage) Data() []byte {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.pix
}

// TimeStamp implements Image.
func (i *SharedImage) TimeStamp() int64 {
	return i.timeStamp
}

func (i *SharedImage) free() {
	i.mu.Lock()
	i.pix = nil
	i.mu.Unlock()
}

// StreamType is a capture stream bit.
type StreamType int32

const (
	StreamTypeAny   StreamType = 0
	StreamTypeColor StreamType = 0x0001
	StreamTypeDepth StreamType = 0x0002
	StreamTypeIR    StreamType = 0x0004
	StreamTypeLeft  StreamType = 0x0008
	StreamTypeRight StreamType = 0x0010
)

// StreamLimit is the number of stream types a device can expose.
const StreamLimit = 8

// StreamOption is a bit set of stream options.
type StreamOption uint32

const (
	StreamOptionAny              StreamOption = 0
	StreamOptionDepthPrecision   StreamOption = 0x00000001
	StreamOptionStrongStreamSync StreamOption = 0x00000002
	StreamOptionUnrectified      StreamOption = 0x00010000
)

// DeviceModel identifies the camera model for distortion handling.
type DeviceModel int32

const (
	DeviceModelGeneric      DeviceModel = 0x00000000
	DeviceModelF200         DeviceModel = 0x0020000E
	DeviceModelIVCAM        DeviceModel = 0x0020000E
	DeviceModelR200         DeviceModel = 0x0020000F
	DeviceModelSR300        DeviceModel = 0x00200010
	DeviceModelR200Enhanced DeviceModel = 0x0020001F
	DeviceModelZR300        DeviceModel = 0x00200020
)

// Sample is one synchronized capture of all streams.
type Sample struct {
	Color Image
	Depth Image
	IR    Image
	Left  Image
	Right Image
}

// Get returns the image of stream t.
func (s *Sample) Get(t StreamType) Image {
	switch t {
	case StreamTypeColor:
		return s.Color
	case StreamTypeDepth:
		return s.Depth
	case StreamTypeIR:
		return s.IR
	case StreamTypeLeft:
		return s.Left
	case StreamTypeRight:
		return s.Right
	}
	return nil
}

// Release releases every image of the sample.
func (s *Sample) Release() {
	for _, img := range []Image{s.Color, s.Depth, s.IR, s.Left, s.Right} {
		capability.Release(img)
	}
	*s = Sample{}
}
