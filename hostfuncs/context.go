package hostfuncs

import (
	"context"
	"sync"
)

// HostContext is the context handlers receive. It carries the invoked
// function name and request-scoped values set by middleware.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string

	// SetValue stores a request-scoped value in place.
	SetValue(key, value any)

	// GetValue retrieves a value stored by SetValue.
	GetValue(key any) (value any, ok bool)
}

type hostValues struct {
	mu sync.Mutex
	m  map[any]any
}

type hostContext struct {
	context.Context
	values   *hostValues
	funcName string
}

// NewHostContext wraps ctx for the invocation of funcName.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	return &hostContext{
		Context:  ctx,
		funcName: funcName,
		values:   &hostValues{m: make(map[any]any)},
	}
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) SetValue(key, value any) {
	c.values.mu.Lock()
	c.values.m[key] = value
	c.values.mu.Unlock()
}

func (c *hostContext) GetValue(key any) (any, bool) {
	c.values.mu.Lock()
	defer c.values.mu.Unlock()
	v, ok := c.values.m[key]
	return v, ok
}

// HostContextFrom returns ctx itself when it already is a HostContext and
// wraps it otherwise.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok {
		return hc
	}
	return NewHostContext(ctx, funcName)
}

// rebase returns a HostContext over ctx sharing the values of parent.
func rebase(parent context.Context, ctx context.Context) HostContext {
	if hc, ok := parent.(*hostContext); ok {
		return &hostContext{Context: ctx, funcName: hc.funcName, values: hc.values}
	}
	if hc, ok := parent.(HostContext); ok {
		return NewHostContext(ctx, hc.FunctionName())
	}
	return NewHostContext(ctx, "")
}
