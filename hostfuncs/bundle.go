package hostfuncs

import (
	"context"
	"runtime"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/domain/entities"
)

// HostFuncBundle is a named group of handlers registered together.
type HostFuncBundle interface {
	Handlers() map[string]ByteHandler
}

type staticBundle map[string]ByteHandler

func (b staticBundle) Handlers() map[string]ByteHandler {
	return b
}

// HostInfoRequest is the (empty) request of host_info.
type HostInfoRequest struct{}

// HostInfoResponse describes the host.
type HostInfoResponse struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// CUIDLookupRequest asks for a capability by name or printed identifier.
type CUIDLookupRequest struct {
	Name string `json:"name"`
}

// CUIDLookupResponse is the answer of cuid_lookup.
type CUIDLookupResponse struct {
	Name  string `json:"name,omitempty"`
	ID    string `json:"id,omitempty"`
	Value uint32 `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// StatusNameRequest asks for the name of a status code.
type StatusNameRequest struct {
	Status int32 `json:"status"`
}

// StatusNameResponse classifies a status code.
type StatusNameResponse struct {
	Name    string `json:"name"`
	Known   bool   `json:"known"`
	Error   bool   `json:"error"`
	Warning bool   `json:"warning"`
}

// CoreBundle returns host_info, cuid_lookup and status_name.
func CoreBundle() HostFuncBundle {
	return staticBundle{
		"host_info":   NewJSONHandler(HostInfo),
		"cuid_lookup": NewJSONHandler(LookupCUID),
		"status_name": NewJSONHandler(DescribeStatus),
	}
}

// HostInfo reports the SDK version and platform of the host.
func HostInfo(_ context.Context, _ HostInfoRequest) HostInfoResponse {
	return HostInfoResponse{
		Version: entities.SDKVersion.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// LookupCUID resolves a capability name or identifier.
func LookupCUID(_ context.Context, req CUIDLookupRequest) CUIDLookupResponse {
	d, ok := capabilities.Lookup(req.Name)
	if !ok {
		return CUIDLookupResponse{}
	}
	return CUIDLookupResponse{Name: d.Name, ID: d.ID.String(), Value: uint32(d.ID), Found: true}
}

// DescribeStatus names a status code.
func DescribeStatus(_ context.Context, req StatusNameRequest) StatusNameResponse {
	s := entities.Status(req.Status)
	return StatusNameResponse{Name: s.String(), Known: s.Known(), Error: s.IsError(), Warning: s.IsWarning()}
}

// Tracer receives trace hooks forwarded from the guest.
type Tracer interface {
	TraceBegin(task string)
	TraceEnd()
	TraceEvent(name string)
	TraceParam(name, value string)
}

// TraceRequest is one trace hook call. Kind is begin, end, event or param.
type TraceRequest struct {
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// TraceResponse acknowledges a trace hook.
type TraceResponse struct {
	Error string `json:"error,omitempty"`
	OK    bool   `json:"ok"`
}

// TraceBundle returns trace_event, which forwards guest trace hooks to t.
func TraceBundle(t Tracer) HostFuncBundle {
	return staticBundle{
		"trace_event": NewJSONHandler(func(_ context.Context, req TraceRequest) TraceResponse {
			switch req.Kind {
			case "begin":
				t.TraceBegin(req.Name)
			case "end":
				t.TraceEnd()
			case "event":
				t.TraceEvent(req.Name)
			case "param":
				t.TraceParam(req.Name, req.Value)
			default:
				return TraceResponse{Error: "unknown trace kind: " + req.Kind}
			}
			return TraceResponse{OK: true}
		}),
	}
}

type compositeBundle []HostFuncBundle

func (b compositeBundle) Handlers() map[string]ByteHandler {
	out := make(map[string]ByteHandler)
	for _, bundle := range b {
		for name, h := range bundle.Handlers() {
			out[name] = h
		}
	}
	return out
}

// Bundles merges bundles. Later bundles win on name clashes.
func Bundles(bundles ...HostFuncBundle) HostFuncBundle {
	return compositeBundle(bundles)
}

// WithBundle registers every handler of bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle.Handlers() {
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
