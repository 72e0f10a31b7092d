package entities

import "context"

// Capability is the minimal contract of every capability object.
type Capability interface {
	// QueryCapability returns the facet identified by id, or nil.
	QueryCapability(id CUID) any
	// Release drops the caller's hold on the object.
	Release()
}

// SUIDExportTable identifies export table records ('DLE' followed by 2).
var SUIDExportTable = PackCUID('D', 'L', 'E', 2)

// CreateInstanceFunc creates an instance of the implementation described by
// table. session is the root that loaded the table.
type CreateInstanceFunc func(ctx context.Context, session Capability, table *ExportTable, id CUID) (Capability, Status)

// ExportTable is one record of a module's singly linked list of
// implementations. A record must stay valid while any instance it created
// is alive.
type ExportTable struct {
	Next   *ExportTable
	Create CreateInstanceFunc
	SUID   CUID
	Desc   ImplDesc
}

// Each calls fn for t and every record linked after it until fn returns false.
func (t *ExportTable) Each(fn func(*ExportTable) bool) {
	for rec := t; rec != nil; rec = rec.Next {
		if !fn(rec) {
			return
		}
	}
}

// Len returns the number of records in the chain starting at t.
func (t *ExportTable) Len() int {
	n := 0
	t.Each(func(*ExportTable) bool { n++; return true })
	return n
}

// Chain links tables in order and returns the head.
func Chain(tables ...*ExportTable) *ExportTable {
	var head, tail *ExportTable
	for _, t := range tables {
		if t == nil {
			continue
		}
		if head == nil {
			head = t
		} else {
			tail.Next = t
		}
		tail = t
		for tail.Next != nil {
			tail = tail.Next
		}
	}
	return head
}

// SessionRequest carries the arguments of the module creation entry point.
type SessionRequest struct {
	Version Version
	Options uint32
}

// CreateSessionFunc is the fixed creation entry point of a module. A
// negative status or a nil root means the module is unusable.
type CreateSessionFunc func(ctx context.Context, req SessionRequest) (Capability, Status)

// EntryPointName is the exported name of the creation entry point.
const EntryPointName = "session_create"
