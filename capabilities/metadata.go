package capabilities

import (
	"sync"

	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// Metadata attaches buffers and serializable objects to an instance.
type Metadata interface {
	capability.Base
	QueryUID() entities.CUID
	// QueryMetadata returns the id at idx, or zero past the end.
	QueryMetadata(idx int32) entities.CUID
	DetachMetadata(id entities.CUID) entities.Status
	AttachBuffer(id entities.CUID, buf []byte) entities.Status
	QueryBufferSize(id entities.CUID) int32
	QueryBuffer(id entities.CUID, buf []byte) entities.Status
	AttachSerializable(id entities.CUID, instance capability.Base) entities.Status
	CreateSerializable(id, cuid entities.CUID) (any, entities.Status)
}

type metadataEntry struct {
	buf      []byte
	instance capability.Base
}

// MetadataStore is an in-memory Metadata.
type MetadataStore struct {
	*capability.Object
	entries map[entities.CUID]metadataEntry
	order   []entities.CUID
	uid     entities.CUID
	mu      sync.RWMutex
}

// NewMetadataStore returns an empty store identified by uid.
func NewMetadataStore(uid entities.CUID) *MetadataStore {
	m := &MetadataStore{uid: uid, entries: make(map[entities.CUID]metadataEntry)}
	m.Object = capability.NewObject(CUIDMetadata, m, capability.WithSelf(m), capability.WithReleaseHook(m.clear))
	return m
}

// QueryUID implements Metadata.
func (m *MetadataStore) QueryUID() entities.CUID {
	return m.uid
}

// QueryMetadata implements Metadata.
func (m *MetadataStore) QueryMetadata(idx int32) entities.CUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx < 0 || int(idx) >= len(m.order) {
		return 0
	}
	return m.order[idx]
}

// DetachMetadata implements Metadata. Attached instances are released.
func (m *MetadataStore) DetachMetadata(id entities.CUID) entities.Status {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
		for i, o := range m.order {
			if o == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return entities.StatusItemUnavailable
	}
	capability.Release(e.instance)
	return entities.StatusNoError
}

// AttachBuffer implements Metadata. The buffer is copied.
func (m *MetadataStore) AttachBuffer(id entities.CUID, buf []byte) entities.Status {
	if id == 0 || buf == nil {
		return entities.StatusHandleInvalid
	}
	return m.attach(id, metadataEntry{buf: append([]byte(nil), buf...)})
}

// QueryBufferSize implements Metadata.
func (m *MetadataStore) QueryBufferSize(id entities.CUID) int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int32(len(m.entries[id].buf))
}

// QueryBuffer implements Metadata.
func (m *MetadataStore) QueryBuffer(id entities.CUID, buf []byte) entities.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok || e.buf == nil {
		return entities.StatusItemUnavailable
	}
	if len(buf) < len(e.buf) {
		return entities.StatusParamUnsupported
	}
	copy(buf, e.buf)
	return entities.StatusNoError
}

// AttachSerializable implements Metadata. The store takes ownership of
// instance.
func (m *MetadataStore) AttachSerializable(id entities.CUID, instance capability.Base) entities.Status {
	if id == 0 || instance == nil {
		return entities.StatusHandleInvalid
	}
	return m.attach(id, metadataEntry{instance: instance})
}

// CreateSerializable returns the cuid facet of the instance attached under
// id. Ref-counted instances gain a reference the caller must release.
func (m *MetadataStore) CreateSerializable(id, cuid entities.CUID) (any, entities.Status) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || e.instance == nil {
		return nil, entities.StatusItemUnavailable
	}
	v := e.instance.QueryCapability(cuid)
	if v == nil {
		return nil, entities.StatusFeatureUnsupported
	}
	if ar, ok := capability.Query[capability.AddRefer](e.instance, capability.AddRefCUID); ok {
		ar.AddRef()
	}
	return v, entities.StatusNoError
}

func (m *MetadataStore) attach(id entities.CUID, e metadataEntry) entities.Status {
	m.mu.Lock()
	old, exists := m.entries[id]
	m.entries[id] = e
	if !exists {
		m.order = append(m.order, id)
	}
	m.mu.Unlock()

	if exists {
		capability.Release(old.instance)
	}
	return entities.StatusNoError
}

func (m *MetadataStore) clear() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[entities.CUID]metadataEntry)
	m.order = nil
	m.mu.Unlock()

	for _, e := range entries {
		capability.Release(e.instance)
	}
}
