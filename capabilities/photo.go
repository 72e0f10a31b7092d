package capabilities

import (
	"context"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// Photo is a color+depth photo with calibration (XDM container).
type Photo interface {
	capability.Base
	ImportFromPreviewSample(sample *Sample) entities.Status
	LoadXDM(ctx context.Context, fileName string) entities.Status
	SaveXDM(ctx context.Context, fileName string) entities.Status
	CopyPhoto(src Photo) entities.Status
	QueryReferenceImage() Image
	QueryOriginalImage() Image
	QueryDepthImage() Image
	QueryRawDepthImage() Image
}

// EnhancedPhoto groups the enhanced photography algorithms; query it for
// the individual facets.
type EnhancedPhoto interface {
	capability.Base
}

// MaskParams tunes depth mask generation. Negative values select defaults.
type MaskParams struct {
	FrontObjectDepth float32
	BackObjectDepth  float32
	NearFallOffDepth float32
	FarFallOffDepth  float32
}

// DefaultMaskParams leaves every parameter to the algorithm.
func DefaultMaskParams() MaskParams {
	return MaskParams{FrontObjectDepth: -1, BackObjectDepth: -1, NearFallOffDepth: -1, FarFallOffDepth: -1}
}

// DepthMask computes masks from depth.
type DepthMask interface {
	capability.Base
	Init(photo Photo) entities.Status
	ComputeFromThreshold(depthThreshold float32, params *MaskParams) Image
	ComputeFromCoordinate(coord PointI32, params *MaskParams) Image
}

// MotionEffect renders parallax effects.
type MotionEffect interface {
	capability.Base
	Init(photo Photo) entities.Status
	Apply(motion, rotation [3]float32, zoomFactor float32) Image
}

// DepthRefocus changes the focal point.
type DepthRefocus interface {
	capability.Base
	Init(photo Photo) entities.Status
	Apply(focusPoint PointI32, aperture float32) Photo
}

// DepthFillQuality trades quality for speed.
type DepthFillQuality int32

const (
	DepthFillHigh DepthFillQuality = iota
	DepthFillLow
)

// DepthMapQuality grades a depth map.
type DepthMapQuality int32

const (
	DepthMapBad DepthMapQuality = iota
	DepthMapFair
	DepthMapGood
)

// PhotoUtils offers photo transformations. Returned photos and images are
// owned by the caller.
type PhotoUtils interface {
	capability.Base
	EnhanceDepth(photo Photo, quality DepthFillQuality) Photo
	PreviewEnhanceDepth(sample *Sample, quality DepthFillQuality) Image
	GetDepthQuality(depth Image) DepthMapQuality
	CommonFOV(photo Photo) Photo
	PreviewCommonFOV(sample *Sample) (RectI32, entities.Status)
	PhotoCrop(photo Photo, rect RectI32) Photo
	DepthResize(photo Photo, width int32, quality DepthFillQuality) Photo
	ColorResize(photo Photo, width int32) Photo
	PhotoRotate(photo Photo, degrees float32) Photo
}

// Segmentation extracts objects.
type Segmentation interface {
	capability.Base
	ObjectSegment(photo Photo, mask Image) Image
	RefineMask(points []PointI32, foreground bool) Image
	Undo() Image
	Redo() Image
}

// PasteEffects controls sticker blending.
type PasteEffects struct {
	MatchIllumination  bool
	Transparency       float32
	EmbossHighFreqPass float32
	ShadingCorrection  bool
	ColorCorrection    bool
	EmbossingAmplifier float32
	SkinDetection      bool
}

// DefaultPasteEffects returns the documented defaults.
func DefaultPasteEffects() PasteEffects {
	return PasteEffects{MatchIllumination: true, EmbossingAmplifier: 1}
}

// PasteType selects planes or any surface.
type PasteType int32

const (
	PasteOnPlane PasteType = iota
	PasteOnSurface
)

// StickerData sizes and rotates a sticker.
type StickerData struct {
	Height   float32
	Rotation float32
}

// DefaultStickerData returns the documented defaults.
func DefaultStickerData() StickerData {
	return StickerData{Height: 200}
}

// Paster pastes stickers onto photos.
type Paster interface {
	capability.Base
	SetPhoto(photo Photo, mode PasteType) entities.Status
	GetPlanesMap() Image
	// AddSticker returns a non-negative sticker id, or a negative value on failure.
	AddSticker(sticker Image, coord PointI32, data *StickerData, effects *PasteEffects) int32
	SetSticker(sticker Image, coord PointI32, data *StickerData, effects *PasteEffects) entities.Status
	PreviewSticker(stickerID int32) Image
	GetStickerROI(stickerID int32) (RectI32, entities.Status)
	Paste() Photo
	UpdateSticker(stickerID int32, coord *PointI32, data *StickerData, effects *PasteEffects) entities.Status
	RemoveSticker(stickerID int32) entities.Status
	RemoveAllStickers()
}

// DistanceType tells whether measured points are coplanar.
type DistanceType int32

const (
	DistanceUnknown DistanceType = iota
	DistanceCoplanar
	DistanceNonCoplanar
)

// WorldPoint is a point in millimeters. Confidence and precision are NaN
// when unavailable.
type WorldPoint struct {
	Coord      Point3DF32
	Confidence float32
	Precision  float32
}

// MeasureData is a distance between two world points, in millimeters.
type MeasureData struct {
	Distance   float32
	Confidence float32
	Precision  float32
	StartPoint WorldPoint
	EndPoint   WorldPoint
	DistType   DistanceType
}

// Measurement measures distances on photos.
type Measurement interface {
	capability.Base
	MeasureDistance(photo Photo, start, end PointI32) (MeasureData, entities.Status)
	MeasureUADistance(photo Photo, start, end PointI32) (MeasureData, entities.Status)
	QueryUADataSize() int32
	QueryUAData() ([]MeasureData, entities.Status)
}
