package host_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/reglet-dev/sensecore/capabilities"
	"github.com/reglet-dev/sensecore/capability"
	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/errors"
	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/host"
	"github.com/reglet-dev/sensecore/host/registry"
	"github.com/reglet-dev/sensecore/infrastructure/dispatchstore"
	"github.com/reglet-dev/sensecore/internal/testutil"
	"github.com/reglet-dev/sensecore/session"
)

// memOpener serves "mem:" paths with a session entry point and counts
// opens and closes. entries overrides entry per path.
type memOpener struct {
	entry   entities.CreateSessionFunc
	entries map[string]entities.CreateSessionFunc
	opened  atomic.Int32
	closed  atomic.Int32
}

func (o *memOpener) Accepts(path string) bool {
	return strings.HasPrefix(path, "mem:")
}

func (o *memOpener) Open(_ context.Context, path string) (ports.Module, error) {
	o.opened.Add(1)
	return &memModule{opener: o, path: path}, nil
}

type memModule struct {
	opener *memOpener
	path   string
}

func (m *memModule) Path() string { return m.path }

func (m *memModule) EntryPoint(name string) (entities.CreateSessionFunc, bool) {
	if fn, ok := m.opener.entries[m.path]; ok {
		return fn, name == entities.EntryPointName
	}
	return m.opener.entry, name == entities.EntryPointName
}

func (m *memModule) Close(context.Context) error {
	m.opener.closed.Add(1)
	return nil
}

// LoaderSuite exercises discovery end to end with native, in-memory and
// wasm modules.
type LoaderSuite struct {
	suite.Suite
	ctx      context.Context
	dir      string
	env      map[string]string
	modules  *registry.Registry
	store    *dispatchstore.FileStore
	recorder *tracetest.SpanRecorder
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func (s *LoaderSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
	s.env = map[string]string{}
	s.modules = registry.NewRegistry()
	s.store = dispatchstore.NewFileStore(dispatchstore.WithPath(filepath.Join(s.dir, "dispatch.yaml")))
	s.recorder = tracetest.NewSpanRecorder()
}

func (s *LoaderSuite) loader(opts ...host.LoaderOption) *host.Loader {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.recorder))
	base := []host.LoaderOption{
		host.WithEnvironment(s.env),
		host.WithArch("amd64"),
		host.WithModuleRegistry(s.modules),
		host.WithDispatchStore(s.store),
		host.WithExecutable(func() (string, error) { return "/opt/app/bin/app", nil }),
		host.WithTracer(tp.Tracer("test")),
	}
	l, err := host.NewLoader(append(base, opts...)...)
	s.Require().NoError(err)
	return l
}

func (s *LoaderSuite) register(path string) {
	s.Require().NoError(session.Register(s.modules, path, session.WithoutBuiltins()))
}

func (s *LoaderSuite) sessionOf(root *host.Root) *session.Service {
	svc, ok := capability.Query[*session.Service](root, capabilities.CUIDSession)
	s.Require().True(ok)
	return svc
}

func (s *LoaderSuite) TestSystemFromEnvironment() {
	s.register("/usr/lib/sensecore/core")
	s.env["SENSECORE_CORE"] = "/usr/lib/sensecore/core"

	root, report, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()

	s.Equal(entities.StepSystem, root.Candidate().Step)
	s.Equal("env:SENSECORE_CORE", root.Candidate().Source)
	s.Equal(entities.OptionsSystem, s.sessionOf(root).Options())
	s.NotEmpty(root.ID())
	s.Equal(root.ID(), report.RootID)
	s.Require().NotNil(report.Selected)
	s.Equal("/usr/lib/sensecore/core", report.Selected.Path)
	s.Len(report.Attempts, 1)
	s.True(report.Attempts[0].Succeeded())

	sess, ok := root.Session()
	s.Require().True(ok)
	s.Equal(entities.SDKVersion, sess.Version())
	_, ok = root.SessionService()
	s.True(ok)
}

func (s *LoaderSuite) TestSystemFromDispatchFile() {
	s.register("/srv/core")
	s.Require().NoError(s.store.Save(&entities.DispatchRegistry{Core: "/srv/core"}))

	root := s.loader().CreateSession(s.ctx)
	s.Require().NotNil(root)
	defer root.Release()
	s.Equal("dispatch:"+s.store.ConfigPath(), root.Candidate().Source)
}

func (s *LoaderSuite) TestRelativeOverride() {
	s.register("/opt/app/bin/runtime/libsensecore.wasm")
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = "./runtime"

	root, _, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()

	s.Equal(entities.StepOverride, root.Candidate().Step)
	s.Equal(entities.OptionsLocalRuntime, s.sessionOf(root).Options())
}

func (s *LoaderSuite) TestOverrideSkipsSystem() {
	s.register("/opt/app/bin/runtime/libsensecore.wasm")
	var systemCalls atomic.Int32
	s.Require().NoError(s.modules.Register("/usr/lib/sensecore/core",
		func(ctx context.Context, req entities.SessionRequest) (entities.Capability, entities.Status) {
			systemCalls.Add(1)
			return session.CreateExt(ctx, req, session.WithoutBuiltins())
		}))
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = "./runtime"
	s.env["SENSECORE_CORE"] = "/usr/lib/sensecore/core"

	root, report, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()

	s.Equal(entities.StepOverride, root.Candidate().Step)
	s.Len(report.Attempts, 1)
	s.Zero(systemCalls.Load())
}

func (s *LoaderSuite) TestVersionMismatchAdvancesToSystem() {
	s.Require().NoError(session.Register(s.modules, "/opt/app/bin/runtime/libsensecore.wasm",
		session.WithoutBuiltins(), session.WithVersion(entities.Version{Major: entities.SDKVersion.Major + 1})))
	s.register("/usr/lib/sensecore/core")
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = "./runtime"
	s.env["SENSECORE_CORE"] = "/usr/lib/sensecore/core"

	root, report, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()

	s.Require().Len(report.Attempts, 2)
	s.Equal(entities.StepOverride, report.Attempts[0].Candidate.Step)
	testutil.AssertStatus(s.T(), entities.StatusParamUnsupported, report.Attempts[0].Status)
	s.Equal(entities.StepSystem, report.Selected.Step)
	s.Equal(entities.OptionsSystem, s.sessionOf(root).Options())
}

func (s *LoaderSuite) TestAbsoluteOverrideFromDispatchFile() {
	s.register("/srv/sc/bin/amd64/libsensecore.wasm")
	s.Require().NoError(s.store.Save(&entities.DispatchRegistry{
		LocalRuntime: map[string]string{"amd64": "/srv/sc", "arm64": "/srv/other"},
	}))

	root, _, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()
	s.Equal("/srv/sc/bin/amd64/libsensecore.wasm", root.Candidate().Path)
}

func (s *LoaderSuite) TestFallsBackToSystem() {
	s.register("/usr/lib/sensecore/core")
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = filepath.Join(s.dir, "missing")
	s.env["SENSECORE_CORE"] = "/usr/lib/sensecore/core"

	root, report, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()

	s.Require().Len(report.Attempts, 2)
	s.False(report.Attempts[0].Succeeded())
	s.Contains(report.Attempts[0].Error, "open")
	s.Equal(entities.StepSystem, report.Selected.Step)
}

func (s *LoaderSuite) TestExhaustedWithoutCandidates() {
	root, report, err := s.loader().Bootstrap(s.ctx)
	s.Nil(root)
	s.Empty(report.Attempts)

	var derr *errors.DiscoveryError
	s.Require().ErrorAs(err, &derr)
	s.Empty(derr.Attempts)
}

func (s *LoaderSuite) TestExhaustedListsEveryAttempt() {
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = "/nowhere"
	s.env["SENSECORE_CORE"] = "/usr/lib/sensecore/core.so"

	l := s.loader()
	s.Nil(l.CreateSession(s.ctx))

	_, report, err := l.Bootstrap(s.ctx)
	var derr *errors.DiscoveryError
	s.Require().ErrorAs(err, &derr)
	s.Len(derr.Attempts, 2)
	s.Len(report.Attempts, 2)
	s.Nil(report.Selected)
	s.ErrorIs(err, errors.ErrNoOpener)

	detail := errors.ToErrorDetail(err)
	s.Equal("discovery", detail.Type)
	s.True(detail.IsNotFound)
}

func (s *LoaderSuite) TestVersionMismatch() {
	s.register("/usr/lib/sensecore/core")
	s.env["SENSECORE_CORE"] = "/usr/lib/sensecore/core"

	_, report, err := s.loader(host.WithVersion(entities.Version{Major: entities.SDKVersion.Major + 1})).Bootstrap(s.ctx)

	var lerr *errors.LoadError
	s.Require().ErrorAs(err, &lerr)
	s.Equal(errors.StageCreate, lerr.Stage)
	testutil.AssertStatus(s.T(), entities.StatusParamUnsupported, lerr.Status)
	testutil.AssertStatus(s.T(), entities.StatusParamUnsupported, report.Attempts[0].Status)
}

func (s *LoaderSuite) TestNilRootIsFailure() {
	s.Require().NoError(s.modules.Register("/core", func(context.Context, entities.SessionRequest) (entities.Capability, entities.Status) {
		return nil, entities.StatusNoError
	}))
	s.env["SENSECORE_CORE"] = "/core"

	_, _, err := s.loader().Bootstrap(s.ctx)
	s.ErrorIs(err, errors.ErrNilRoot)
}

func (s *LoaderSuite) TestCancelledContext() {
	s.register("/core")
	s.env["SENSECORE_CORE"] = "/core"
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	root, _, err := s.loader().Bootstrap(ctx)
	s.Nil(root)
	s.ErrorIs(err, context.Canceled)
}

func (s *LoaderSuite) TestDeadlineExceeded() {
	s.register("/core")
	s.env["SENSECORE_CORE"] = "/core"
	ctx, cancel := context.WithDeadline(s.ctx, time.Now().Add(-time.Second))
	defer cancel()

	root, _, err := s.loader().Bootstrap(ctx)
	s.Nil(root)
	var terr *errors.TimeoutError
	s.Require().ErrorAs(err, &terr)
	s.Equal("bootstrap", terr.Operation)
	s.ErrorIs(err, context.DeadlineExceeded)
	testutil.AssertStatus(s.T(), entities.StatusExecTimeout, errors.StatusOf(err))
}

func (s *LoaderSuite) TestWasmModule() {
	path := testutil.WriteFile(s.T(), "core.wasm", testutil.CoreModule{
		Major:   entities.SDKVersion.Major,
		Status:  entities.StatusDataNotChanged,
		Handles: map[entities.CUID]uint32{capabilities.CUIDSession: 7},
	}.Bytes())
	s.env["SENSECORE_CORE"] = path

	root, report, err := s.loader().Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer root.Release()

	testutil.AssertStatus(s.T(), entities.StatusDataNotChanged, root.Status())
	s.True(report.Attempts[0].Succeeded())
	s.NotNil(root.QueryCapability(entities.BaseCUID))
	s.NotNil(root.QueryCapability(capabilities.CUIDSession))
	s.Nil(root.QueryCapability(capabilities.CUIDSessionService))
}

func (s *LoaderSuite) TestWasmMissingEntryPoint() {
	path := testutil.WriteFile(s.T(), "core.wasm", testutil.CoreModule{OmitEntryPoint: true}.Bytes())
	s.env["SENSECORE_CORE"] = path

	_, _, err := s.loader().Bootstrap(s.ctx)
	var lerr *errors.LoadError
	s.Require().ErrorAs(err, &lerr)
	s.Equal(errors.StageResolve, lerr.Stage)
	s.ErrorIs(err, errors.ErrEntryPointMissing)
}

func (s *LoaderSuite) TestReleaseClosesModule() {
	mem := &memOpener{entry: session.EntryPoint(session.WithoutBuiltins())}
	s.env["SENSECORE_CORE"] = "mem:core"
	l := s.loader(host.WithOpeners(mem))

	first := l.CreateSession(s.ctx)
	second := l.CreateSession(s.ctx)
	s.Require().NotNil(first)
	s.Require().NotNil(second)
	s.NotEqual(first.ID(), second.ID())
	s.EqualValues(2, mem.opened.Load())

	first.Release()
	first.Release()
	s.EqualValues(1, mem.closed.Load())
	second.Release()
	s.EqualValues(2, mem.closed.Load())
}

func (s *LoaderSuite) TestModuleCache() {
	mem := &memOpener{entry: session.EntryPoint(session.WithoutBuiltins())}
	s.env["SENSECORE_CORE"] = "mem:core"
	metrics := host.NewMetrics(prometheus.NewRegistry())
	l := s.loader(host.WithOpeners(mem), host.WithModuleCache(true), host.WithMetrics(metrics))

	first, report, err := l.Bootstrap(s.ctx)
	s.Require().NoError(err)
	s.False(report.Attempts[0].Cached)
	second, report, err := l.Bootstrap(s.ctx)
	s.Require().NoError(err)
	s.True(report.Attempts[0].Cached)

	s.EqualValues(1, mem.opened.Load())
	s.Equal(1, l.CachedModules())
	s.InDelta(1, promtest.ToFloat64(metrics.CachedModules), 0)

	first.Release()
	s.Equal(1, l.PurgeCache(s.ctx))
	s.EqualValues(0, mem.closed.Load(), "module with a live root stays open")
	second.Release()
	s.EqualValues(1, mem.closed.Load())
	s.Equal(0, l.CachedModules())
	s.InDelta(0, promtest.ToFloat64(metrics.CachedModules), 0)
}

func (s *LoaderSuite) TestModuleCacheDropsRejectedModule() {
	const overridePath = "mem:rt/bin/amd64/libsensecore.wasm"
	mem := &memOpener{
		entry: session.EntryPoint(session.WithoutBuiltins()),
		entries: map[string]entities.CreateSessionFunc{
			overridePath: session.EntryPoint(session.WithoutBuiltins(),
				session.WithVersion(entities.Version{Major: entities.SDKVersion.Major + 1})),
		},
	}
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = "mem:rt"
	s.env["SENSECORE_CORE"] = "mem:core"
	l := s.loader(host.WithOpeners(mem), host.WithModuleCache(true))

	first, report, err := l.Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer first.Release()
	s.Equal(overridePath, report.Attempts[0].Candidate.Path)
	s.Equal(entities.StepSystem, report.Selected.Step)
	s.Equal(1, l.CachedModules())
	s.EqualValues(2, mem.opened.Load())
	s.EqualValues(1, mem.closed.Load(), "rejected module is closed")

	second, report, err := l.Bootstrap(s.ctx)
	s.Require().NoError(err)
	defer second.Release()
	s.False(report.Attempts[0].Cached)
	s.True(report.Attempts[1].Cached)
	s.Equal(1, l.CachedModules())
	s.EqualValues(3, mem.opened.Load())
	s.EqualValues(2, mem.closed.Load())
}

func (s *LoaderSuite) TestWatchDispatchFileDropsCache() {
	mem := &memOpener{entry: session.EntryPoint(session.WithoutBuiltins())}
	s.Require().NoError(s.store.Save(&entities.DispatchRegistry{Core: "mem:core"}))
	l := s.loader(host.WithOpeners(mem), host.WithModuleCache(true))

	root := l.CreateSession(s.ctx)
	s.Require().NotNil(root)
	root.Release()
	s.Equal(1, l.CachedModules())

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.Require().NoError(l.WatchDispatchFile(ctx))

	s.Require().NoError(s.store.Save(&entities.DispatchRegistry{Core: "mem:other"}))
	s.Eventually(func() bool { return l.CachedModules() == 0 }, 5*time.Second, 10*time.Millisecond)
	s.Eventually(func() bool { return mem.closed.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func (s *LoaderSuite) TestMetrics() {
	s.register("/core")
	s.env["SENSECORE_AMD64_LOCAL_RUNTIME"] = "/nowhere"
	s.env["SENSECORE_CORE"] = "/core"
	metrics := host.NewMetrics(prometheus.NewRegistry())

	root := s.loader(host.WithMetrics(metrics)).CreateSession(s.ctx)
	s.Require().NotNil(root)
	root.Release()

	s.InDelta(1, promtest.ToFloat64(metrics.Attempts.WithLabelValues("override", "failure")), 0)
	s.InDelta(1, promtest.ToFloat64(metrics.Attempts.WithLabelValues("system", "success")), 0)
	s.InDelta(1, promtest.ToFloat64(metrics.Bootstraps.WithLabelValues("success")), 0)
}

func (s *LoaderSuite) TestBootstrapSpan() {
	s.register("/core")
	s.env["SENSECORE_CORE"] = "/core"

	root := s.loader().CreateSession(s.ctx)
	s.Require().NotNil(root)
	root.Release()

	spans := s.recorder.Ended()
	s.Require().Len(spans, 1)
	s.Equal("host.Bootstrap", spans[0].Name())
	s.Require().Len(spans[0].Events(), 1)
	s.Equal("attempt", spans[0].Events()[0].Name)
}

func (s *LoaderSuite) TestCustomResolvers() {
	s.register("/a")
	l := s.loader(host.WithResolvers(&host.SystemResolver{Environ: map[string]string{"SENSECORE_CORE": "/a"}}))
	s.Len(l.Resolvers(), 1)

	root := l.CreateSession(s.ctx)
	s.Require().NotNil(root)
	root.Release()
}

func TestLoader_DefaultResolvers(t *testing.T) {
	l, err := host.NewLoader(host.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	steps := func(l *host.Loader) []entities.DiscoveryStep {
		var out []entities.DiscoveryStep
		for _, r := range l.Resolvers() {
			out = append(out, r.Step())
		}
		return out
	}
	assert.Equal(t, []entities.DiscoveryStep{entities.StepOverride, entities.StepSystem}, steps(l))

	l, err = host.NewLoader(host.WithEnvironment(map[string]string{}), host.WithCompiledFallback(true))
	require.NoError(t, err)
	assert.Equal(t, []entities.DiscoveryStep{entities.StepOverride, entities.StepCompiledFallback, entities.StepSystem}, steps(l))
}

func TestNativeOpener(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, session.Register(reg, "/core"))
	o := host.NewNativeOpener(reg)

	assert.True(t, o.Accepts("/core"))
	assert.False(t, o.Accepts("/other"))

	mod, err := o.Open(context.Background(), "/core")
	require.NoError(t, err)
	assert.Equal(t, "/core", mod.Path())
	_, ok := mod.EntryPoint("other")
	assert.False(t, ok)
	fn, ok := mod.EntryPoint(entities.EntryPointName)
	require.True(t, ok)

	root, st := fn(context.Background(), entities.SessionRequest{Version: entities.SDKVersion})
	testutil.RequireSuccess(t, st)
	root.Release()
	assert.NoError(t, mod.Close(context.Background()))

	_, err = o.Open(context.Background(), "/other")
	assert.ErrorContains(t, err, "not registered")
}
