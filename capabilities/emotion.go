package capabilities

import (
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// EmotionKind is a primary emotion or overall sentiment bit.
type EmotionKind int32

const (
	EmotionPrimaryAnger    EmotionKind = 0x00000001
	EmotionPrimaryContempt EmotionKind = 0x00000002
	EmotionPrimaryDisgust  EmotionKind = 0x00000004
	EmotionPrimaryFear     EmotionKind = 0x00000008
	EmotionPrimaryJoy      EmotionKind = 0x00000010
	EmotionPrimarySadness  EmotionKind = 0x00000020
	EmotionPrimarySurprise EmotionKind = 0x00000040

	EmotionSentimentPositive EmotionKind = 0x00010000
	EmotionSentimentNegative EmotionKind = 0x00020000
	EmotionSentimentNeutral  EmotionKind = 0x00040000
)

// EmotionKinds lists primaries followed by sentiments, the order
// QueryAllEmotionData fills.
var EmotionKinds = []EmotionKind{
	EmotionPrimaryAnger, EmotionPrimaryContempt, EmotionPrimaryDisgust, EmotionPrimaryFear,
	EmotionPrimaryJoy, EmotionPrimarySadness, EmotionPrimarySurprise,
	EmotionSentimentPositive, EmotionSentimentNegative, EmotionSentimentNeutral,
}

// IsSentiment reports whether k is an overall sentiment.
func (k EmotionKind) IsSentiment() bool {
	return k >= EmotionSentimentPositive
}

// EmotionData is one emotion detected on one face.
type EmotionData struct {
	TimeStamp int64
	Emotion   EmotionKind
	FaceID    int32
	EmotionID EmotionKind
	// Intensity in [0,1].
	Intensity float32
	// Evidence in [-5,5], log10 odds of presence.
	Evidence  int32
	Rectangle RectI32
}

// IntensityLevel buckets Intensity: 0 absent, 1 low, 2 medium, 3 high,
// 4 very high.
func (d EmotionData) IntensityLevel() int {
	switch {
	case d.Intensity < 0.2:
		return 0
	case d.Intensity < 0.4:
		return 1
	case d.Intensity < 0.6:
		return 2
	case d.Intensity < 0.8:
		return 3
	}
	return 4
}

// Emotion analyses facial emotions of the current frame.
type Emotion interface {
	capability.Base
	QueryNumFaces() int32
	QueryEmotionSize() int32
	QueryEmotionData(faceID int32, eid EmotionKind) (EmotionData, entities.Status)
	// QueryAllEmotionData returns one entry per EmotionKinds element.
	QueryAllEmotionData(faceID int32) ([]EmotionData, entities.Status)
}
