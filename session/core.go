package session

import (
	"context"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// PowerManagerIUID identifies the built-in power state manager.
const PowerManagerIUID entities.CUID = 'P' | 'W'<<8 | 'S'<<16 | 'M'<<24

// CoreTable returns a fresh export table with the implementations every
// session provides.
func CoreTable() *entities.ExportTable {
	return &entities.ExportTable{
		SUID: entities.SUIDExportTable,
		Desc: entities.ImplDesc{
			Group:        entities.ImplGroupCore,
			Subgroup:     entities.ImplSubgroupPowerManagement,
			IUID:         PowerManagerIUID,
			Version:      entities.ImplVersion{Major: 1},
			CUIDs:        [4]entities.CUID{capabilities.CUIDPowerStateServiceClient},
			FriendlyName: "Power State Manager",
		},
		Create: createPowerManager,
	}
}

func createPowerManager(_ context.Context, _ entities.Capability, _ *entities.ExportTable, id entities.CUID) (entities.Capability, entities.Status) {
	if id != entities.BaseCUID && id != capabilities.CUIDPowerStateServiceClient {
		return nil, entities.StatusFeatureUnsupported
	}
	return capabilities.NewPowerRegistry(), entities.StatusNoError
}
