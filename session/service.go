package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// record is one loaded export table entry.
type record struct {
	table *entities.ExportTable
	seq   int
	live  atomic.Int32

	unloaded bool // guarded by Service.mu
}

type loadedTable struct {
	head    *entities.ExportTable
	records []*record
}

// Service is the root object of a module.
type Service struct {
	*capability.Composite

	cfg    serviceConfig
	id     uuid.UUID
	logger *slog.Logger
	traces *traceStack

	mu     sync.Mutex
	loaded []*loadedTable
	seq    int
}

var (
	_ capabilities.Session        = (*Service)(nil)
	_ capabilities.SessionService = (*Service)(nil)
)

// New creates a session. Unless WithoutBuiltins is given, the core export
// table is loaded.
func New(opts ...Option) *Service {
	cfg := defaultServiceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Service{cfg: cfg, id: uuid.New()}
	s.logger = cfg.logger.With("session", s.id.String())
	s.traces = newTraceStack(cfg.tracer, s.id.String())
	s.Composite = capability.MustComposite([]capability.Constituent{
		capability.Facet(capabilities.CUIDSession, s),
		capability.Facet(capabilities.CUIDSessionService, s),
	}, capability.WithSelf(s), capability.WithReleaseHook(s.shutdown))

	if cfg.builtins {
		if st := s.LoadImpl(CoreTable()); st.IsError() {
			s.logger.Warn("core export table rejected", "status", st)
		}
	}
	s.logger.Debug("session created", "version", cfg.version.String(), "options", cfg.options)
	return s
}

// InstanceID returns the unique id of this session.
func (s *Service) InstanceID() uuid.UUID {
	return s.id
}

// Version implements capabilities.Session.
func (s *Service) Version() entities.Version {
	return s.cfg.version
}

// Options returns the creation options recorded on the session.
func (s *Service) Options() uint32 {
	return s.cfg.options
}

// LoadImpl implements capabilities.SessionService. Every record of the
// chain must carry the export table SUID and a creation function.
func (s *Service) LoadImpl(table *entities.ExportTable) entities.Status {
	if table == nil {
		return entities.StatusHandleInvalid
	}
	valid := true
	table.Each(func(rec *entities.ExportTable) bool {
		valid = rec.SUID == entities.SUIDExportTable && rec.Create != nil
		return valid
	})
	if !valid {
		return entities.StatusParamUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(table) >= 0 {
		return entities.StatusDataNotChanged
	}
	lt := &loadedTable{head: table}
	table.Each(func(rec *entities.ExportTable) bool {
		s.seq++
		lt.records = append(lt.records, &record{table: rec, seq: s.seq})
		return true
	})
	s.loaded = append(s.loaded, lt)
	s.logger.Debug("export table loaded", "records", len(lt.records))
	return entities.StatusNoError
}

// UnloadImpl implements capabilities.SessionService.
func (s *Service) UnloadImpl(table *entities.ExportTable) entities.Status {
	if table == nil {
		return entities.StatusHandleInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(table)
	if i < 0 {
		return entities.StatusItemUnavailable
	}
	for _, rec := range s.loaded[i].records {
		if n := rec.live.Load(); n > 0 {
			s.logger.Debug("export table busy", "implementation", rec.table.Desc.FriendlyName, "live", n)
			return entities.StatusExecInProgress
		}
	}
	for _, rec := range s.loaded[i].records {
		rec.unloaded = true
	}
	s.loaded = append(s.loaded[:i], s.loaded[i+1:]...)
	return entities.StatusNoError
}

// QueryImplEx implements capabilities.SessionService.
func (s *Service) QueryImplEx(tmpl entities.ImplDesc, idx int) (*entities.ExportTable, entities.Status) {
	if idx < 0 {
		return nil, entities.StatusParamUnsupported
	}
	recs := s.matches(tmpl)
	if idx >= len(recs) {
		return nil, entities.StatusItemUnavailable
	}
	return recs[idx].table, entities.StatusNoError
}

// QueryImpl implements capabilities.Session.
func (s *Service) QueryImpl(tmpl entities.ImplDesc, idx int) (entities.ImplDesc, entities.Status) {
	table, st := s.QueryImplEx(tmpl, idx)
	if table == nil {
		return entities.ImplDesc{}, st
	}
	return table.Desc, st
}

// CreateImpl implements capabilities.Session. Candidates are tried in merit
// order; the first instance that answers id wins. The returned handle is
// reference counted and releases the instance when the count reaches zero.
// Callers release the handle, never the facets it lends.
func (s *Service) CreateImpl(ctx context.Context, tmpl entities.ImplDesc, id entities.CUID) (capability.Base, entities.Status) {
	recs := s.matches(tmpl)
	if len(recs) == 0 {
		return nil, entities.StatusItemUnavailable
	}
	last := entities.StatusFeatureUnsupported
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, entities.StatusExecAborted
		}
		if !s.reserve(rec) {
			continue
		}
		inst, st := rec.table.Create(ctx, s, rec.table, id)
		if st.IsError() {
			capability.Release(inst)
			rec.live.Add(-1)
			last = st
			continue
		}
		if inst == nil {
			rec.live.Add(-1)
			last = entities.StatusHandleInvalid
			continue
		}
		if id != entities.BaseCUID && inst.QueryCapability(id) == nil {
			inst.Release()
			rec.live.Add(-1)
			last = entities.StatusFeatureUnsupported
			continue
		}
		s.logger.Debug("instance created", "implementation", rec.table.Desc.FriendlyName, "cuid", id)
		return capability.NewRefCounted(&instance{inner: inst, rec: rec}), st
	}
	return nil, last
}

// Loaded returns the number of loaded export tables.
func (s *Service) Loaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loaded)
}

func (s *Service) findLocked(head *entities.ExportTable) int {
	for i, lt := range s.loaded {
		if lt.head == head {
			return i
		}
	}
	return -1
}

// matches returns the records matching tmpl by descending merit, then
// load order.
func (s *Service) matches(tmpl entities.ImplDesc) []*record {
	s.mu.Lock()
	var out []*record
	for _, lt := range s.loaded {
		for _, rec := range lt.records {
			if rec.table.Desc.Matches(tmpl) {
				out = append(out, rec)
			}
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].table.Desc.Merit != out[j].table.Desc.Merit {
			return out[i].table.Desc.Merit > out[j].table.Desc.Merit
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// reserve counts an instance against rec before it is created, so the
// table cannot be unloaded while Create runs. It fails once rec is unloaded.
func (s *Service) reserve(rec *record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.unloaded {
		return false
	}
	rec.live.Add(1)
	return true
}

func (s *Service) shutdown() {
	s.traces.closeAll()
	s.mu.Lock()
	s.loaded = nil
	s.mu.Unlock()
	s.logger.Debug("session released")
}

// instance tracks a created object so its export table cannot be unloaded
// while it is alive.
type instance struct {
	inner    capability.Base
	rec      *record
	released atomic.Bool
}

// QueryCapability lends facets of the instance. They stay valid until the
// handle is released.
func (i *instance) QueryCapability(id entities.CUID) any {
	return i.inner.QueryCapability(id)
}

func (i *instance) Release() {
	if !i.released.CompareAndSwap(false, true) {
		return
	}
	i.inner.Release()
	i.rec.live.Add(-1)
}
