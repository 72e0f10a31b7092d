package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

func TestAll_UniqueNonZero(t *testing.T) {
	seen := map[entities.CUID]string{}
	for _, d := range All() {
		assert.NotZero(t, d.ID, d.Name)
		if prev, dup := seen[d.ID]; dup {
			t.Errorf("%s and %s share %s", prev, d.Name, d.ID)
		}
		seen[d.ID] = d.Name
	}
	assert.Len(t, seen, 26)
}

func TestCUIDs_MatchCodes(t *testing.T) {
	assert.Equal(t, entities.Code("EMTN"), CUIDEmotion)
	assert.Equal(t, entities.Code("GDV2"), CUIDPhoto)
	assert.Equal(t, entities.Code("EPMD"), CUIDMeasurement)
	assert.Equal(t, entities.Code("POTC"), CUIDPersonTrackingConfig)
	assert.Equal(t, entities.Code("PWMC"), CUIDPowerStateServiceClient)
	assert.Equal(t, entities.Code("SES2"), CUIDSessionService)
	assert.Equal(t, entities.Code("SC3D"), CUID3DScan)
	assert.Equal(t, entities.Code("BASS"), capability.AddRefCUID)
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("Emotion")
	require.True(t, ok)
	assert.Equal(t, CUIDEmotion, d.ID)

	d, ok = Lookup("0x494A8537")
	require.True(t, ok)
	assert.Equal(t, "Projection", d.Name)

	d, ok = Lookup("'SHSP'")
	require.True(t, ok)
	assert.Equal(t, "SyncPoint", d.Name)

	_, ok = Lookup("Nope!")
	assert.False(t, ok)
}

func TestImageInfo_Size(t *testing.T) {
	tests := []struct {
		name string
		info ImageInfo
		want int
	}{
		{"rgb24", ImageInfo{Width: 3, Height: 2, Format: PixelFormatRGB24}, 18},
		{"negative width", ImageInfo{Width: -4, Height: 2, Format: PixelFormatRGB32}, 0},
		{"negative both", ImageInfo{Width: -4, Height: -2, Format: PixelFormatRGB32}, 0},
		{"zero height", ImageInfo{Width: 4, Format: PixelFormatY8}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Size())
			img := NewImage(tt.info, 0)
			assert.Len(t, img.Data(), tt.want)
			img.Release()
		})
	}
}

func TestSharedImage_Lifetime(t *testing.T) {
	img := NewImage(ImageInfo{Width: 4, Height: 2, Format: PixelFormatRGB32}, 77)
	assert.Len(t, img.Data(), 32)
	assert.Equal(t, int64(77), img.TimeStamp())

	facet, ok := capability.Query[Image](img, CUIDImage)
	require.True(t, ok)
	assert.Same(t, img, facet)

	assert.Equal(t, int32(2), facet.AddRef())
	img.Release()
	assert.NotNil(t, img.Data())

	facet.Release()
	assert.Nil(t, img.Data())
	assert.True(t, img.Destroyed())
}

func TestSample_Release(t *testing.T) {
	color := NewImage(ImageInfo{Width: 1, Height: 1, Format: PixelFormatRGB24}, 0)
	depth := NewImage(ImageInfo{Width: 1, Height: 1, Format: PixelFormatDepth}, 0)
	s := &Sample{Color: color, Depth: depth}

	assert.Same(t, depth, s.Get(StreamTypeDepth))
	assert.Nil(t, s.Get(StreamTypeIR))

	s.Release()
	assert.True(t, color.Destroyed())
	assert.True(t, depth.Destroyed())
	assert.Nil(t, s.Color)
}

type fakeProjection struct {
	Projection
	name string
}

func TestProjectionFor(t *testing.T) {
	def := &fakeProjection{name: "default"}
	none := &fakeProjection{name: "none"}
	obj := capability.MustComposite([]capability.Constituent{
		capability.Facet(CUIDProjection, def),
		capability.Facet(CUIDProjectionClippingNone, none),
	})

	assert.Same(t, def, ProjectionFor(obj, ProjectionOptionDefault))
	assert.Same(t, none, ProjectionFor(obj, ProjectionOptionClippingNone))

	only := capability.NewObject(CUIDProjection, def)
	assert.Nil(t, ProjectionFor(only, ProjectionOptionClippingNone))
}

func TestMetadataStore(t *testing.T) {
	m := NewMetadataStore(entities.Code("META"))
	id := entities.Code("BUF1")

	assert.Equal(t, entities.StatusHandleInvalid, m.AttachBuffer(0, []byte("x")))
	require.Equal(t, entities.StatusNoError, m.AttachBuffer(id, []byte("hello")))
	assert.Equal(t, int32(5), m.QueryBufferSize(id))
	assert.Equal(t, id, m.QueryMetadata(0))
	assert.Equal(t, entities.CUID(0), m.QueryMetadata(1))

	small := make([]byte, 2)
	assert.Equal(t, entities.StatusParamUnsupported, m.QueryBuffer(id, small))
	buf := make([]byte, 5)
	require.Equal(t, entities.StatusNoError, m.QueryBuffer(id, buf))
	assert.Equal(t, "hello", string(buf))

	assert.Equal(t, entities.StatusNoError, m.DetachMetadata(id))
	assert.Equal(t, entities.StatusItemUnavailable, m.DetachMetadata(id))
	assert.Equal(t, entities.StatusItemUnavailable, m.QueryBuffer(id, buf))
}

func TestMetadataStore_Serializable(t *testing.T) {
	m := NewMetadataStore(entities.Code("META"))
	img := NewImage(ImageInfo{Width: 1, Height: 1, Format: PixelFormatY8}, 0)
	id := entities.Code("IMG1")

	require.Equal(t, entities.StatusNoError, m.AttachSerializable(id, img))

	v, sts := m.CreateSerializable(id, CUIDImage)
	require.Equal(t, entities.StatusNoError, sts)
	assert.Same(t, img, v)
	assert.Equal(t, int32(2), img.Count())

	_, sts = m.CreateSerializable(id, CUIDEmotion)
	assert.Equal(t, entities.StatusFeatureUnsupported, sts)
	_, sts = m.CreateSerializable(entities.Code("NONE"), CUIDImage)
	assert.Equal(t, entities.StatusItemUnavailable, sts)

	meta, ok := capability.Query[Metadata](m, CUIDMetadata)
	require.True(t, ok)
	meta.Release()
	assert.Equal(t, int32(1), img.Count(), "store released its reference")

	img.Release()
	assert.True(t, img.Destroyed())
}

func TestPowerRegistry(t *testing.T) {
	p := NewPowerRegistry()
	uid := p.QueryUniqueID(1, 2, 3)
	other := p.QueryUniqueID(1, 4, 3)
	assert.NotEqual(t, uid, other)

	_, sts := p.DeviceState(1)
	assert.Equal(t, entities.StatusPowerProviderNotExists, sts)

	require.Equal(t, entities.StatusNoError, p.RegisterModule(uid, entities.ImplGroupSensor, entities.ImplSubgroupFaceAnalysis))
	assert.Equal(t, entities.StatusPowerUIDAlreadyRegistered, p.RegisterModule(uid, entities.ImplGroupSensor, 0))
	require.Equal(t, entities.StatusNoError, p.RegisterModule(other, entities.ImplGroupSensor, 0))

	assert.Equal(t, entities.StatusPowerIllegalState, p.SetState(uid, PowerStateKind(9)))
	assert.Equal(t, entities.StatusNoError, p.SetState(uid, PowerStateBattery))

	state, sts := p.QueryState(uid)
	assert.Equal(t, entities.StatusNoError, sts)
	assert.Equal(t, PowerStateBattery, state)

	state, _ = p.DeviceState(1)
	assert.Equal(t, PowerStatePerformance, state, "other module still wants performance")

	require.Equal(t, entities.StatusNoError, p.SetState(other, PowerStateBattery))
	state, _ = p.DeviceState(1)
	assert.Equal(t, PowerStateBattery, state)

	assert.Equal(t, entities.StatusNoError, p.UnregisterModule(uid))
	assert.Equal(t, entities.StatusPowerUIDNotRegistered, p.UnregisterModule(uid))
	assert.Equal(t, entities.StatusPowerUIDNotRegistered, p.SetState(uid, PowerStateBattery))
}

func TestStreamDescSet_Get(t *testing.T) {
	var set StreamDescSet
	assert.Same(t, &set.Depth, set.Get(StreamTypeDepth))
	assert.Same(t, &set.Reserved[2], set.Get(StreamType(0x80)))
	assert.Same(t, &set.Reserved[0], set.Get(StreamType(0x20)))
	assert.Same(t, &set.Reserved[2], set.Get(StreamTypeAny))
}

func TestDataDesc_Validate(t *testing.T) {
	d := &DataDesc{DeviceCaps: make([]DeviceCap, DevCapLimit)}
	assert.Equal(t, entities.StatusNoError, d.Validate())
	d.DeviceCaps = append(d.DeviceCaps, DeviceCap{})
	assert.Equal(t, entities.StatusParamUnsupported, d.Validate())
}

func TestSmallHelpers(t *testing.T) {
	assert.Equal(t, "ply", FileFormatPLY.Extension())
	assert.Equal(t, "Unknown", FileFormat(9).Extension())
	assert.True(t, (ReconstructionTexture | ReconstructionLandmarks).Has(ReconstructionLandmarks))
	assert.False(t, ReconstructionTexture.Has(ReconstructionSolidification))

	assert.Equal(t, 0, EmotionData{Intensity: 0.1}.IntensityLevel())
	assert.Equal(t, 2, EmotionData{Intensity: 0.5}.IntensityLevel())
	assert.Equal(t, 4, EmotionData{Intensity: 1}.IntensityLevel())
	assert.True(t, EmotionSentimentNeutral.IsSentiment())
	assert.False(t, EmotionPrimarySurprise.IsSentiment())
	assert.Len(t, EmotionKinds, 10)

	assert.Equal(t, float32(-1), DefaultMaskParams().FarFallOffDepth)
	assert.True(t, DefaultPasteEffects().MatchIllumination)
	assert.Equal(t, float32(200), DefaultStickerData().Height)
	assert.True(t, RangeF32{Min: 1, Max: 2}.Contains(1.5))
}
