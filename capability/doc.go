// Package capability implements the capability-query object model.
//
// Every object answers QueryCapability with the facet registered under a
// capability identifier, or nil when it does not offer it. Facets of one
// object are reachable from any other facet. A Composite groups up to six
// facets under the XOR of their identifiers, and RefCounted adds a shared,
// atomically counted lifetime to any object.
//
//	root, _ := capability.NewComposite([]capability.Constituent{
//		capability.Facet(sessionCUID, svc),
//		capability.Facet(serviceCUID, svc),
//	}, capability.WithSelf(svc))
//
//	if s, ok := capability.Query[Session](root, sessionCUID); ok {
//		...
//	}
package capability
