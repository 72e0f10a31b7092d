package capabilities

import (
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// TrackingStrategy orders tracked persons.
type TrackingStrategy int32

const (
	StrategyAppearanceTime TrackingStrategy = iota
	StrategyClosestToFarthest
	StrategyFarthestToClosest
	StrategyLeftToRight
	StrategyRightToLeft
)

// TrackingMode selects following or interactive tracking.
type TrackingMode int32

const (
	TrackingModeFollowing TrackingMode = iota
	TrackingModeInteractive
)

// SkeletonMode selects the tracked joints.
type SkeletonMode int32

const (
	SkeletonAreaUpperBody SkeletonMode = iota
	SkeletonAreaUpperBodyRough
	SkeletonAreaFullBodyRough
	SkeletonAreaFullBody
)

// TrackingAngles selects the tracked user orientations. Profile includes
// frontal.
type TrackingAngles int32

const (
	TrackingAnglesFrontal TrackingAngles = iota
	TrackingAnglesProfile
	TrackingAnglesAll
)

// GestureType identifies a person gesture.
type GestureType int32

// PersonExpression identifies a facial expression.
type PersonExpression int32

// PersonAlertType identifies a person tracking alert.
type PersonAlertType int32

// PersonAlert is delivered to a PersonAlertHandler.
type PersonAlert struct {
	Label     PersonAlertType
	PersonID  int32
	TimeStamp int64
}

// PersonAlertHandler receives person tracking alerts.
type PersonAlertHandler interface {
	OnFiredAlert(alert PersonAlert)
}

// Toggle is the enable switch shared by the tracking sub-configurations.
type Toggle interface {
	Enable()
	Disable()
	IsEnabled() bool
}

// TrackingConfiguration configures person tracking.
type TrackingConfiguration interface {
	Toggle
	EnableSegmentation()
	DisableSegmentation()
	IsSegmentationEnabled() bool
	EnableHeadPose()
	DisableHeadPose()
	IsHeadPoseEnabled() bool
	EnableBlob()
	DisableBlob()
	IsBlobEnabled() bool
	EnablePersonOrientation()
	DisablePersonOrientation()
	IsPersonOrientationEnabled() bool
	EnableHeadBoundingBox()
	DisableHeadBoundingBox()
	IsHeadBoundingBoxEnabled() bool
	SetMaxTrackedPersons(n int32)
	GetMaxTrackedPersons() int32
	SetTrackingMode(mode TrackingMode)
	GetTrackingMode() TrackingMode
}

// SkeletonJointsConfiguration configures skeleton tracking.
type SkeletonJointsConfiguration interface {
	Toggle
	SetMaxTrackedPersons(n int32)
	SetTrackingArea(area SkeletonMode)
}

// PoseConfiguration configures pose estimation.
type PoseConfiguration interface {
	Toggle
	SetMaxTrackedPersons(n int32)
}

// RecognitionConfiguration configures person recognition.
type RecognitionConfiguration interface {
	Toggle
	SetDatabaseBuffer(buf []byte)
}

// GesturesConfiguration configures gesture detection.
type GesturesConfiguration interface {
	Toggle
	SetMaxTrackedPersons(n int32)
	EnableGesture(g GestureType)
	EnableAllGestures()
	DisableGesture(g GestureType)
	DisableAllGestures()
}

// ExpressionsConfiguration configures expression detection.
type ExpressionsConfiguration interface {
	Toggle
	SetMaxTrackedPeople(n int32)
	EnableAllExpressions()
	DisableAllExpressions()
	EnableExpression(e PersonExpression) entities.Status
	DisableExpression(e PersonExpression)
	IsExpressionEnabled(e PersonExpression) bool
}

// PersonTrackingConfiguration configures the person tracking module.
type PersonTrackingConfiguration interface {
	capability.Base
	QueryTracking() TrackingConfiguration
	QuerySkeletonJoints() SkeletonJointsConfiguration
	QueryPose() PoseConfiguration
	QueryRecognition() RecognitionConfiguration
	QueryGestures() GesturesConfiguration
	QueryExpressions() ExpressionsConfiguration
	SetTrackedAngles(angles TrackingAngles)
	ResetTracking() entities.Status
	EnableAlert(alert PersonAlertType) entities.Status
	EnableAllAlerts() entities.Status
	IsAlertEnabled(alert PersonAlertType) bool
	DisableAlert(alert PersonAlertType) entities.Status
	DisableAllAlerts() entities.Status
	SubscribeAlert(handler PersonAlertHandler) entities.Status
	UnsubscribeAlert(handler PersonAlertHandler) entities.Status
}
