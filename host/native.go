package host

import (
	"context"
	"fmt"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
)

// NativeOpener opens modules published in a ports.ModuleRegistry.
type NativeOpener struct {
	modules ports.ModuleRegistry
}

var _ ports.ModuleOpener = (*NativeOpener)(nil)

// NewNativeOpener creates an opener over modules.
func NewNativeOpener(modules ports.ModuleRegistry) *NativeOpener {
	return &NativeOpener{modules: modules}
}

// Accepts reports whether path is registered.
func (o *NativeOpener) Accepts(path string) bool {
	_, ok := o.modules.Lookup(path)
	return ok
}

// Open returns the registered module.
func (o *NativeOpener) Open(_ context.Context, path string) (ports.Module, error) {
	fn, ok := o.modules.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("native module %q not registered", path)
	}
	return &nativeModule{path: path, entry: fn}, nil
}

type nativeModule struct {
	path  string
	entry entities.CreateSessionFunc
}

func (m *nativeModule) Path() string {
	return m.path
}

func (m *nativeModule) EntryPoint(name string) (entities.CreateSessionFunc, bool) {
	if name != entities.EntryPointName {
		return nil, false
	}
	return m.entry, true
}

func (m *nativeModule) Close(context.Context) error {
	return nil
}
