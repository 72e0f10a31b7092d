package capabilities

import (
	"context"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// ScanningMode selects the scanning area behaviour.
type ScanningMode int32

const (
	ScanningModeVariable ScanningMode = iota
	ScanningModeObjectOnPlanarSurfaceDetection
	ScanningModeFace
	ScanningModeHead
	ScanningModeBody
)

// ReconstructionOption is a bit set of reconstruction features.
type ReconstructionOption int32

const (
	ReconstructionNone           ReconstructionOption = 0
	ReconstructionSolidification ReconstructionOption = 1 << 0
	ReconstructionTexture        ReconstructionOption = 1 << 1
	ReconstructionLandmarks      ReconstructionOption = 1 << 2
)

// Has reports whether every bit of opt is set.
func (o ReconstructionOption) Has(opt ReconstructionOption) bool {
	return o&opt == opt
}

// AlertEvent is a scanning usability notification.
type AlertEvent int32

const (
	AlertInRange AlertEvent = iota
	AlertTooClose
	AlertTooFar
	AlertTracking
	AlertLostTracking
	AlertSufficientStructure
	AlertInsufficientStructure
	AlertFaceDetected
	AlertFaceNotDetected
	AlertFaceXInRange
	AlertFaceXTooFarLeft
	AlertFaceXTooFarRight
	AlertFaceYInRange
	AlertFaceYTooFarUp
	AlertFaceYTooFarDown
	AlertFaceZInRange
	AlertFaceZTooClose
	AlertFaceZTooFar
	AlertFaceYawInRange
	AlertFaceYawTooFarLeft
	AlertFaceYawTooFarRight
	AlertFacePitchInRange
	AlertFacePitchTooFarUp
	AlertFacePitchTooFarDown
	AlertFaceMotionTooSlow
	AlertFaceMotionTooFast
	AlertFaceMotionInRange
	AlertFiducialMarkerDetected
	AlertFiducialMarkerNotDetected
)

// FileFormat is an output mesh format.
type FileFormat int32

const (
	FileFormatOBJ FileFormat = iota
	FileFormatPLY
	FileFormatSTL
)

// Extension returns the file extension of f, or "Unknown".
func (f FileFormat) Extension() string {
	switch f {
	case FileFormatOBJ:
		return "obj"
	case FileFormatPLY:
		return "ply"
	case FileFormatSTL:
		return "stl"
	}
	return "Unknown"
}

// ScanArea is the scanning volume.
type ScanArea struct {
	Shape      Size3DF32
	Resolution int32
}

// ScanConfiguration configures scanning.
type ScanConfiguration struct {
	StartScan            bool
	Mode                 ScanningMode
	Options              ReconstructionOption
	MaxTriangles         int32
	MaxVertices          int32
	MaxTextureResolution SizeI32
	FlopPreviewImage     bool
	UseMarker            bool
}

// ScanAlert is delivered to a ScanAlertHandler.
type ScanAlert struct {
	TimeStamp int64
	Label     AlertEvent
}

// ScanAlertHandler receives scanning alerts.
type ScanAlertHandler interface {
	OnAlert(data ScanAlert)
}

// ScanAlertFunc adapts a function to ScanAlertHandler.
type ScanAlertFunc func(ScanAlert)

// OnAlert implements ScanAlertHandler.
func (f ScanAlertFunc) OnAlert(data ScanAlert) { f(data) }

// Scan3D captures and reconstructs 3D meshes.
type Scan3D interface {
	capability.Base
	// SetArea fails unless the configured mode is ScanningModeVariable.
	SetArea(area ScanArea) entities.Status
	QueryArea() ScanArea
	SetConfiguration(cfg ScanConfiguration) entities.Status
	QueryConfiguration() ScanConfiguration
	// AcquirePreviewImage returns a preview the caller must release.
	AcquirePreviewImage() Image
	QueryBoundingBox() RectF32
	IsScanning() bool
	// Reconstruct writes a mesh and resets scanning on success.
	Reconstruct(ctx context.Context, format FileFormat, fileName string) entities.Status
	// Subscribe replaces the alert handler. nil unsubscribes.
	Subscribe(handler ScanAlertHandler)
}
