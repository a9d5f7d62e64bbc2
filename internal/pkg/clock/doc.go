// Package clock provides a tiny time abstraction.
//
// Dispatch latency and template variables such as the current year read time
// through Clocker, so tests can pin it with Frozen.
package clock
