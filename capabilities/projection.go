package capabilities

import (
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// StreamTransform is the extrinsic transform of a sensor to the depth
// camera coordinate system, in millimeters.
type StreamTransform struct {
	Translation [3]float32
	Rotation    [3][3]float32
}

// StreamCalibration holds the intrinsics of a sensor.
type StreamCalibration struct {
	FocalLength          PointF32
	PrincipalPoint       PointF32
	RadialDistortion     [3]float32
	TangentialDistortion [2]float32
	Model                DeviceModel
}

// Calibration exposes sensor calibration.
type Calibration interface {
	capability.Base
	QueryStreamProjectionParameters(stream StreamType) (StreamCalibration, StreamTransform, entities.Status)
}

// CalibrationEx adds per-option calibration.
type CalibrationEx interface {
	Calibration
	QueryStreamProjectionParametersEx(stream StreamType, options StreamOption) (StreamCalibration, StreamTransform, entities.Status)
}

// ProjectionOption selects a projection variant.
type ProjectionOption int32

const (
	ProjectionOptionDefault ProjectionOption = iota
	ProjectionOptionClippingNone
)

// Projection maps between depth, color and camera coordinates.
type Projection interface {
	capability.Base
	MapDepthToColor(uvz []Point3DF32) ([]PointF32, entities.Status)
	MapColorToDepth(depth Image, ij []PointF32) ([]PointF32, entities.Status)
	ProjectDepthToCamera(uvz []Point3DF32) ([]Point3DF32, entities.Status)
	ProjectColorToCamera(ijz []Point3DF32) ([]Point3DF32, entities.Status)
	ProjectCameraToDepth(pos3d []Point3DF32) ([]PointF32, entities.Status)
	ProjectCameraToColor(pos3d []Point3DF32) ([]PointF32, entities.Status)
	QueryUVMap(depth Image) ([]PointF32, entities.Status)
	QueryInvUVMap(depth Image) ([]PointF32, entities.Status)
	QueryVertices(depth Image) ([]Point3DF32, entities.Status)
	CreateColorImageMappedToDepth(depth, color Image) Image
	CreateDepthImageMappedToColor(depth, color Image) Image
}

// ProjectionFor returns the projection variant selected by option, or
// nil when obj does not offer it.
func ProjectionFor(obj capability.Querier, option ProjectionOption) Projection {
	id := CUIDProjection
	if option == ProjectionOptionClippingNone {
		id = CUIDProjectionClippingNone
	}
	p, _ := capability.Query[Projection](obj, id)
	return p
}
