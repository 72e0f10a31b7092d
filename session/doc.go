// Package session is the reference root object of a core module.
//
// A Service answers both the application-facing Session facet and the
// module-facing SessionService facet. It keeps the export tables loaded
// into it, ranks implementations by merit, creates instances through the
// table's creation function and maps the trace hooks onto OpenTelemetry
// spans.
//
// Native modules publish CreateExt through Register so the host loader can
// open them by path:
//
//	if err := session.Register(registry.Default, "/opt/sensecore/core.so"); err != nil {
//		return err
//	}
package session
