// Package btlog provides the component-prefixed log.Printf idiom used
// across the engine, matching the teacher's "[DEBUG]"/"[BT]" convention
// instead of introducing a structured logging dependency nothing in the
// pack's teacher actually uses.
package btlog

import "log"

// Component returns a logger func prefixed with "[name] ", e.g.
//
//	logf := btlog.Component("sweep")
//	logf("variant %d/%d complete", i, n)
func Component(name string) func(format string, args ...any) {
	prefix := "[" + name + "] "
	return func(format string, args ...any) {
		log.Printf(prefix+format, args...)
	}
}
