package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/host/registry"
)

var cuidCounter = entities.Code("CNTR")

type counter struct {
	*capability.Object
	released *int
}

func newCounter(released *int) *counter {
	c := &counter{released: released}
	c.Object = capability.NewObject(cuidCounter, c, capability.WithSelf(c),
		capability.WithReleaseHook(func() { *released++ }))
	return c
}

func counterTable(name string, merit int32, released *int) *entities.ExportTable {
	return &entities.ExportTable{
		SUID: entities.SUIDExportTable,
		Desc: entities.ImplDesc{
			Group:        entities.ImplGroupUtilities,
			Merit:        merit,
			CUIDs:        [4]entities.CUID{cuidCounter},
			FriendlyName: name,
		},
		Create: func(context.Context, entities.Capability, *entities.ExportTable, entities.CUID) (entities.Capability, entities.Status) {
			return newCounter(released), entities.StatusNoError
		},
	}
}

func TestService_Facets(t *testing.T) {
	s := New()
	defer s.Release()

	sess, ok := capability.Query[capabilities.Session](s, capabilities.CUIDSession)
	require.True(t, ok)
	assert.Equal(t, entities.SDKVersion, sess.Version())

	svc, ok := capability.Query[capabilities.SessionService](s, capabilities.CUIDSessionService)
	require.True(t, ok)
	assert.Same(t, s, svc)

	assert.Same(t, s, s.QueryCapability(capabilities.CUIDSession^capabilities.CUIDSessionService))
	assert.Nil(t, s.QueryCapability(entities.Code("NONE")))
	assert.NotEqual(t, s.InstanceID(), New(WithoutBuiltins()).InstanceID())
}

func TestService_BuiltinPowerManager(t *testing.T) {
	s := New()
	defer s.Release()

	desc, st := s.QueryImpl(entities.ImplDesc{Group: entities.ImplGroupCore, Subgroup: entities.ImplSubgroupPowerManagement}, 0)
	require.Equal(t, entities.StatusNoError, st)
	assert.Equal(t, PowerManagerIUID, desc.IUID)

	h, st := s.CreateImpl(context.Background(), entities.ImplDesc{Group: entities.ImplGroupCore}, capabilities.CUIDPowerStateServiceClient)
	require.Equal(t, entities.StatusNoError, st)
	defer h.Release()

	pm, ok := capability.Query[capabilities.PowerStateServiceClient](h, capabilities.CUIDPowerStateServiceClient)
	require.True(t, ok)
	uid := pm.QueryUniqueID(1, 0, 7)
	assert.Equal(t, entities.StatusNoError, pm.RegisterModule(uid, entities.ImplGroupSensor, entities.ImplSubgroupVideoCapture))

	assert.Zero(t, New(WithoutBuiltins()).Loaded())
}

func TestService_LoadImplValidation(t *testing.T) {
	s := New(WithoutBuiltins())
	var released int

	assert.Equal(t, entities.StatusHandleInvalid, s.LoadImpl(nil))

	bad := counterTable("bad", 0, &released)
	bad.SUID = entities.Code("XXXX")
	assert.Equal(t, entities.StatusParamUnsupported, s.LoadImpl(bad))

	noCreate := counterTable("nocreate", 0, &released)
	noCreate.Create = nil
	assert.Equal(t, entities.StatusParamUnsupported, s.LoadImpl(entities.Chain(counterTable("ok", 0, &released), noCreate)))

	table := counterTable("ok", 0, &released)
	assert.Equal(t, entities.StatusNoError, s.LoadImpl(table))
	assert.Equal(t, entities.StatusDataNotChanged, s.LoadImpl(table))
	assert.Equal(t, 1, s.Loaded())
}

func TestService_QueryImplMeritOrder(t *testing.T) {
	s := New(WithoutBuiltins())
	var released int
	require.Equal(t, entities.StatusNoError, s.LoadImpl(entities.Chain(
		counterTable("low", 1, &released),
		counterTable("high", 10, &released),
	)))
	require.Equal(t, entities.StatusNoError, s.LoadImpl(counterTable("low-later", 1, &released)))

	var names []string
	for i := 0; ; i++ {
		d, st := s.QueryImpl(entities.ImplDesc{}, i)
		if st != entities.StatusNoError {
			assert.Equal(t, entities.StatusItemUnavailable, st)
			break
		}
		names = append(names, d.FriendlyName)
	}
	assert.Equal(t, []string{"high", "low", "low-later"}, names)

	_, st := s.QueryImplEx(entities.ImplDesc{}, -1)
	assert.Equal(t, entities.StatusParamUnsupported, st)

	_, st = s.QueryImpl(entities.ImplDesc{Group: entities.ImplGroupSensor}, 0)
	assert.Equal(t, entities.StatusItemUnavailable, st)
}

func TestService_CreateImplAndUnload(t *testing.T) {
	s := New(WithoutBuiltins())
	var released int
	table := counterTable("counter", 0, &released)
	require.Equal(t, entities.StatusNoError, s.LoadImpl(table))

	h, st := s.CreateImpl(context.Background(), entities.ImplDesc{}, cuidCounter)
	require.Equal(t, entities.StatusNoError, st)
	_, ok := capability.Query[*counter](h, cuidCounter)
	require.True(t, ok)

	assert.Equal(t, entities.StatusExecInProgress, s.UnloadImpl(table))

	adder, ok := capability.Query[capability.AddRefer](h, capability.AddRefCUID)
	require.True(t, ok)
	assert.Equal(t, int32(2), adder.AddRef())
	h.Release()
	assert.Equal(t, entities.StatusExecInProgress, s.UnloadImpl(table))
	assert.Zero(t, released)

	h.Release()
	assert.Equal(t, 1, released)
	assert.Equal(t, entities.StatusNoError, s.UnloadImpl(table))
	assert.Equal(t, entities.StatusItemUnavailable, s.UnloadImpl(table))
	assert.Equal(t, entities.StatusHandleInvalid, s.UnloadImpl(nil))
}

func TestService_CreateImplFailures(t *testing.T) {
	s := New(WithoutBuiltins())
	ctx := context.Background()

	_, st := s.CreateImpl(ctx, entities.ImplDesc{}, cuidCounter)
	assert.Equal(t, entities.StatusItemUnavailable, st)

	var released int
	require.Equal(t, entities.StatusNoError, s.LoadImpl(counterTable("counter", 0, &released)))

	_, st = s.CreateImpl(ctx, entities.ImplDesc{}, entities.Code("NONE"))
	assert.Equal(t, entities.StatusFeatureUnsupported, st)
	assert.Equal(t, 1, released)

	failing := counterTable("failing", 5, &released)
	failing.Create = func(context.Context, entities.Capability, *entities.ExportTable, entities.CUID) (entities.Capability, entities.Status) {
		return nil, entities.StatusDeviceFailed
	}
	require.Equal(t, entities.StatusNoError, s.LoadImpl(failing))

	h, st := s.CreateImpl(ctx, entities.ImplDesc{}, cuidCounter)
	require.Equal(t, entities.StatusNoError, st, "falls back to the lower merit implementation")
	h.Release()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, st = s.CreateImpl(cancelled, entities.ImplDesc{}, cuidCounter)
	assert.Equal(t, entities.StatusExecAborted, st)
}

func TestService_UnloadDuringCreate(t *testing.T) {
	s := New(WithoutBuiltins())
	var released int
	table := counterTable("counter", 0, &released)
	var unloadStatus entities.Status
	table.Create = func(context.Context, entities.Capability, *entities.ExportTable, entities.CUID) (entities.Capability, entities.Status) {
		unloadStatus = s.UnloadImpl(table)
		return newCounter(&released), entities.StatusNoError
	}
	require.Equal(t, entities.StatusNoError, s.LoadImpl(table))

	h, st := s.CreateImpl(context.Background(), entities.ImplDesc{}, cuidCounter)
	require.Equal(t, entities.StatusNoError, st)
	assert.Equal(t, entities.StatusExecInProgress, unloadStatus)
	assert.Equal(t, 1, s.Loaded())

	h.Release()
	table.Create = func(context.Context, entities.Capability, *entities.ExportTable, entities.CUID) (entities.Capability, entities.Status) {
		return nil, entities.StatusDeviceFailed
	}
	_, st = s.CreateImpl(context.Background(), entities.ImplDesc{}, cuidCounter)
	assert.Equal(t, entities.StatusDeviceFailed, st)
	assert.Equal(t, entities.StatusNoError, s.UnloadImpl(table), "failed creation leaves no live instance")
}

func TestService_TraceHooks(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	s := New(WithoutBuiltins(), WithTracer(tp.Tracer("test")))

	s.TraceBegin("outer")
	s.TraceParam("device", "camera0")
	s.TraceBegin("inner")
	s.TraceEvent("frame")
	s.TraceEnd()
	s.TraceEnd()
	s.TraceEnd()
	s.TraceEvent("standalone")
	s.TraceParam("dropped", "x")

	spans := sr.Ended()
	require.Len(t, spans, 3)

	inner, outer, standalone := spans[0], spans[1], spans[2]
	assert.Equal(t, "inner", inner.Name())
	assert.Equal(t, "outer", outer.Name())
	assert.Equal(t, "standalone", standalone.Name())
	assert.Equal(t, outer.SpanContext().SpanID(), inner.Parent().SpanID())

	require.Len(t, inner.Events(), 1)
	assert.Equal(t, "frame", inner.Events()[0].Name)
	assert.Contains(t, outer.Attributes(), attribute.String("device", "camera0"))
	assert.Contains(t, outer.Attributes(), attribute.String("sensecore.session", s.InstanceID().String()))
}

func TestService_ReleaseEndsOpenSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	s := New(WithTracer(tp.Tracer("test")))

	s.TraceBegin("a")
	s.TraceBegin("b")
	s.Release()
	s.Release()

	assert.Len(t, sr.Ended(), 2)
	assert.True(t, s.Released())
	assert.Zero(t, s.Loaded())
}

func TestCreateExt(t *testing.T) {
	ctx := context.Background()

	root, st := CreateExt(ctx, entities.SessionRequest{Version: entities.SDKVersion, Options: 1})
	require.Equal(t, entities.StatusNoError, st)
	svc := root.(*Service)
	assert.Equal(t, uint32(1), svc.Options())
	root.Release()

	root, st = CreateExt(ctx, entities.SessionRequest{Version: entities.Version{Major: entities.SDKVersion.Major + 1}})
	assert.Nil(t, root)
	assert.Equal(t, entities.StatusParamUnsupported, st)

	root, st = CreateExt(ctx,
		entities.SessionRequest{Version: entities.Version{Major: 2, Minor: 3}},
		WithVersion(entities.Version{Major: 2, Minor: 1}))
	assert.Nil(t, root)
	assert.Equal(t, entities.StatusParamUnsupported, st)
}

func TestRegister(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, Register(reg, "/opt/sensecore/core.so"))
	assert.Error(t, Register(reg, "/opt/sensecore/core.so"))

	fn, ok := reg.Lookup("/opt/sensecore/core.so")
	require.True(t, ok)
	root, st := fn(context.Background(), entities.SessionRequest{Version: entities.SDKVersion})
	require.Equal(t, entities.StatusNoError, st)
	defer root.Release()

	_, ok = capability.Query[capabilities.Session](root, capabilities.CUIDSession)
	assert.True(t, ok)
}
