package capabilities

import (
	"sort"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/syncpoint"
)

// Capability identifiers.
const (
	CUID3DScan                  entities.CUID = 'S' | 'C'<<8 | '3'<<16 | 'D'<<24
	CUIDEmotion                 entities.CUID = 'E' | 'M'<<8 | 'T'<<16 | 'N'<<24
	CUIDPhoto                   entities.CUID = 'G' | 'D'<<8 | 'V'<<16 | '2'<<24
	CUIDEnhancedPhoto           entities.CUID = 'E' | 'P'<<8 | 'I'<<16 | 'N'<<24
	CUIDDepthMask               entities.CUID = 'E' | 'P'<<8 | 'D'<<16 | 'M'<<24
	CUIDMotionEffect            entities.CUID = 'E' | 'P'<<8 | 'M'<<16 | 'E'<<24
	CUIDDepthRefocus            entities.CUID = 'E' | 'P'<<8 | 'D'<<16 | 'R'<<24
	CUIDPhotoUtils              entities.CUID = 'E' | 'P'<<8 | 'U'<<16 | 'T'<<24
	CUIDSegmentation            entities.CUID = 'E' | 'P'<<8 | 'S'<<16 | 'G'<<24
	CUIDPaster                  entities.CUID = 'E' | 'P'<<8 | 'P'<<16 | 'P'<<24
	CUIDMeasurement             entities.CUID = 'E' | 'P'<<8 | 'M'<<16 | 'D'<<24
	CUIDCalibration             entities.CUID = 0x494A8538
	CUIDCalibrationEx           entities.CUID = 0x708D3F6A
	CUIDProjection              entities.CUID = 0x494A8537
	CUIDProjectionClippingNone  entities.CUID = 0x11A4C912
	CUIDMetadata                entities.CUID = 0x62398423
	CUIDPersonTrackingConfig    entities.CUID = 'P' | 'O'<<8 | 'T'<<16 | 'C'<<24
	CUIDPowerState              entities.CUID = 'P' | 'W'<<8 | 'M'<<16 | 'G'<<24
	CUIDPowerStateServiceClient entities.CUID = 'P' | 'W'<<8 | 'M'<<16 | 'C'<<24
	CUIDAudioSourceService      entities.CUID = 0x2048D7A3
	CUIDSessionService          entities.CUID = 'S' | 'E'<<8 | 'S'<<16 | '2'<<24
	CUIDSession                 entities.CUID = 'S' | 'E'<<8 | 'S'<<16 | ' '<<24
	CUIDVideoModule             entities.CUID = 0x69D5B036
	CUIDImage                   entities.CUID = 'I' | 'M'<<8 | 'G'<<16 | ' '<<24
)

// Descriptor names a capability identifier.
type Descriptor struct {
	Name string
	ID   entities.CUID
}

// All lists every capability identifier known to this package, sorted by name.
func All() []Descriptor {
	out := []Descriptor{
		{"3DScan", CUID3DScan},
		{"AddRef", capability.AddRefCUID},
		{"AudioSourceService", CUIDAudioSourceService},
		{"Calibration", CUIDCalibration},
		{"CalibrationEx", CUIDCalibrationEx},
		{"DepthMask", CUIDDepthMask},
		{"DepthRefocus", CUIDDepthRefocus},
		{"Emotion", CUIDEmotion},
		{"EnhancedPhoto", CUIDEnhancedPhoto},
		{"Image", CUIDImage},
		{"Measurement", CUIDMeasurement},
		{"Metadata", CUIDMetadata},
		{"MotionEffect", CUIDMotionEffect},
		{"Paster", CUIDPaster},
		{"PersonTrackingConfiguration", CUIDPersonTrackingConfig},
		{"Photo", CUIDPhoto},
		{"PhotoUtils", CUIDPhotoUtils},
		{"PowerState", CUIDPowerState},
		{"PowerStateServiceClient", CUIDPowerStateServiceClient},
		{"Projection", CUIDProjection},
		{"ProjectionClippingNone", CUIDProjectionClippingNone},
		{"Segmentation", CUIDSegmentation},
		{"Session", CUIDSession},
		{"SessionService", CUIDSessionService},
		{"SyncPoint", syncpoint.CUID},
		{"VideoModule", CUIDVideoModule},
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a capability by name or identifier.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	id, err := entities.ParseCUID(name)
	if err != nil {
		return Descriptor{}, false
	}
	for _, d := range All() {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
