package capability

import (
	"reflect"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// Base is the contract of every capability object.
type Base = entities.Capability

// Querier answers capability queries.
type Querier interface {
	QueryCapability(id entities.CUID) any
}

// Releaser releases an object.
type Releaser interface {
	Release()
}

// AddRefer is implemented by objects with a shared lifetime.
type AddRefer interface {
	AddRef() int32
}

// AddRefCUID is the identity of the reference counting facet ('BASS').
const AddRefCUID entities.CUID = 'B' | 'A'<<8 | 'S'<<16 | 'S'<<24

// Query asks obj for the facet id and asserts it to T. It returns false
// when obj is nil, the facet is absent or it does not implement T.
func Query[T any](obj Querier, id entities.CUID) (T, bool) {
	var zero T
	if isNil(obj) {
		return zero, false
	}
	v := obj.QueryCapability(id)
	if v == nil {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Release releases obj when it is non-nil.
func Release(obj any) {
	if isNil(obj) {
		return
	}
	if r, ok := obj.(Releaser); ok {
		r.Release()
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Same reports whether a and b are the same object. Values that cannot be
// compared are never the same.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return a == b
}
