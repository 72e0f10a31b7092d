package capabilities

import (
	"sync"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// PowerStateKind is a device power state.
type PowerStateKind int32

const (
	// PowerStatePerformance selects the full feature set.
	PowerStatePerformance PowerStateKind = iota
	PowerStateBattery
)

// Valid reports whether s is a defined state.
func (s PowerStateKind) Valid() bool {
	return s == PowerStatePerformance || s == PowerStateBattery
}

func (s PowerStateKind) String() string {
	switch s {
	case PowerStatePerformance:
		return "performance"
	case PowerStateBattery:
		return "battery"
	}
	return "unknown"
}

// PowerState controls the power state of a module.
type PowerState interface {
	capability.Base
	QueryState() PowerStateKind
	SetState(state PowerStateKind) entities.Status
	SetInactivityInterval(seconds int32) entities.Status
	QueryInactivityInterval() int32
}

// PowerStateServiceClient is the module-side view of the power manager.
type PowerStateServiceClient interface {
	capability.Base
	QueryUniqueID(deviceID, streamID, moduleID int32) entities.CUID
	RegisterModule(uid entities.CUID, group entities.ImplGroup, subgroup entities.ImplSubgroup) entities.Status
	UnregisterModule(uid entities.CUID) entities.Status
	SetState(uid entities.CUID, state PowerStateKind) entities.Status
	QueryState(uid entities.CUID) (PowerStateKind, entities.Status)
}

type powerModule struct {
	group    entities.ImplGroup
	subgroup entities.ImplSubgroup
	state    PowerStateKind
}

// PowerRegistry is an in-process PowerStateServiceClient. A device runs in
// the most demanding state requested by its registered modules.
type PowerRegistry struct {
	*capability.Object
	modules map[entities.CUID]*powerModule
	mu      sync.Mutex
}

// NewPowerRegistry returns an empty registry.
func NewPowerRegistry() *PowerRegistry {
	p := &PowerRegistry{modules: make(map[entities.CUID]*powerModule)}
	p.Object = capability.NewObject(CUIDPowerStateServiceClient, p, capability.WithSelf(p))
	return p
}

// QueryUniqueID packs device, stream and module ids.
func (p *PowerRegistry) QueryUniqueID(deviceID, streamID, moduleID int32) entities.CUID {
	return entities.CUID(uint32(deviceID&0xff)<<24 | uint32(streamID&0xff)<<16 | uint32(moduleID&0xffff))
}

// RegisterModule implements PowerStateServiceClient. New modules start in
// the performance state.
func (p *PowerRegistry) RegisterModule(uid entities.CUID, group entities.ImplGroup, subgroup entities.ImplSubgroup) entities.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.modules[uid]; ok {
		return entities.StatusPowerUIDAlreadyRegistered
	}
	p.modules[uid] = &powerModule{group: group, subgroup: subgroup, state: PowerStatePerformance}
	return entities.StatusNoError
}

// UnregisterModule implements PowerStateServiceClient.
func (p *PowerRegistry) UnregisterModule(uid entities.CUID) entities.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.modules[uid]; !ok {
		return entities.StatusPowerUIDNotRegistered
	}
	delete(p.modules, uid)
	return entities.StatusNoError
}

// SetState implements PowerStateServiceClient.
func (p *PowerRegistry) SetState(uid entities.CUID, state PowerStateKind) entities.Status {
	if !state.Valid() {
		return entities.StatusPowerIllegalState
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.modules[uid]
	if !ok {
		return entities.StatusPowerUIDNotRegistered
	}
	m.state = state
	return entities.StatusNoError
}

// QueryState implements PowerStateServiceClient.
func (p *PowerRegistry) QueryState(uid entities.CUID) (PowerStateKind, entities.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.modules[uid]
	if !ok {
		return PowerStatePerformance, entities.StatusPowerUIDNotRegistered
	}
	return m.state, entities.StatusNoError
}

// DeviceState returns the effective state of deviceID: performance when
// any registered module on it asks for performance, battery otherwise.
func (p *PowerRegistry) DeviceState(deviceID int32) (PowerStateKind, entities.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	found := false
	for uid, m := range p.modules {
		if int32(uint32(uid)>>24) != deviceID&0xff {
			continue
		}
		found = true
		if m.state == PowerStatePerformance {
			return PowerStatePerformance, entities.StatusNoError
		}
	}
	if !found {
		return PowerStatePerformance, entities.StatusPowerProviderNotExists
	}
	return PowerStateBattery, entities.StatusNoError
}
