// Package ports defines interfaces for infrastructure operations.
// The loader depends on these abstractions; module openers, discovery
// resolvers and dispatch file stores implement them.
package ports
