package entities

// ImplGroup classifies an implementation by functional area.
type ImplGroup uint32

const (
	ImplGroupAny               ImplGroup = 0
	ImplGroupObjectRecognition ImplGroup = 0x00000001
	ImplGroupSpeechRecognition ImplGroup = 0x00000002
	ImplGroupSensor            ImplGroup = 0x00000004
	ImplGroupPhotography       ImplGroup = 0x00000008
	ImplGroupUtilities         ImplGroup = 0x00000010
	ImplGroupCore              ImplGroup = 0x80000000
	ImplGroupUser              ImplGroup = 0x40000000
)

// ImplSubgroup refines ImplGroup. Values are only unique within a group.
type ImplSubgroup uint32

const (
	ImplSubgroupAny ImplSubgroup = 0

	ImplSubgroupFaceAnalysis       ImplSubgroup = 0x00000001
	ImplSubgroupGestureRecognition ImplSubgroup = 0x00000010
	ImplSubgroupSegmentation       ImplSubgroup = 0x00000020
	ImplSubgroupPulseEstimation    ImplSubgroup = 0x00000040
	ImplSubgroupEmotionRecognition ImplSubgroup = 0x00000080
	ImplSubgroupObjectTracking     ImplSubgroup = 0x00000100
	ImplSubgroup3DSegmentation     ImplSubgroup = 0x00000200
	ImplSubgroup3DScan             ImplSubgroup = 0x00000400
	ImplSubgroupScenePerception    ImplSubgroup = 0x00000800

	ImplSubgroupAudioCapture ImplSubgroup = 0x00000001
	ImplSubgroupVideoCapture ImplSubgroup = 0x00000002

	ImplSubgroupSpeechRecognition ImplSubgroup = 0x00000001
	ImplSubgroupSpeechSynthesis   ImplSubgroup = 0x00000002

	// Core service subgroups.
	ImplSubgroupAccelerator     ImplSubgroup = 0x80000000
	ImplSubgroupScheduler       ImplSubgroup = 0x40000000
	ImplSubgroupPowerManagement ImplSubgroup = 0x20000000
)

// ImplVersion is the version of one implementation.
type ImplVersion struct {
	Major int32 `json:"major" yaml:"major"`
	Minor int32 `json:"minor" yaml:"minor"`
}

// ImplDesc describes an implementation registered in an export table. A
// zero field in a query template matches anything.
type ImplDesc struct {
	Group        ImplGroup    `json:"group" yaml:"group"`
	Subgroup     ImplSubgroup `json:"subgroup" yaml:"subgroup"`
	Algorithm    CUID         `json:"algorithm" yaml:"algorithm"`
	IUID         CUID         `json:"iuid" yaml:"iuid"`
	Version      ImplVersion  `json:"version" yaml:"version"`
	Merit        int32        `json:"merit" yaml:"merit"`
	Vendor       int32        `json:"vendor" yaml:"vendor"`
	CUIDs        [4]CUID      `json:"cuids" yaml:"cuids"`
	FriendlyName string       `json:"friendly_name" yaml:"friendly_name"`
}

// Matches reports whether d satisfies tmpl. Group and subgroup are bit
// masks; algorithm, iuid and vendor must be equal when set; each non-zero
// template CUID must be offered by d.
func (d ImplDesc) Matches(tmpl ImplDesc) bool {
	if tmpl.Group != ImplGroupAny && d.Group&tmpl.Group == 0 {
		return false
	}
	if tmpl.Subgroup != ImplSubgroupAny && d.Subgroup&tmpl.Subgroup == 0 {
		return false
	}
	if tmpl.Algorithm != 0 && d.Algorithm != tmpl.Algorithm {
		return false
	}
	if tmpl.IUID != 0 && d.IUID != tmpl.IUID {
		return false
	}
	if tmpl.Vendor != 0 && d.Vendor != tmpl.Vendor {
		return false
	}
	for _, want := range tmpl.CUIDs {
		if want != 0 && !d.Offers(want) {
			return false
		}
	}
	return true
}

// Offers reports whether id is among the interfaces d lists.
func (d ImplDesc) Offers(id CUID) bool {
	for _, have := range d.CUIDs {
		if have != 0 && have == id {
			return true
		}
	}
	return false
}
