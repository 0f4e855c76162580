// Package wiring registers every Graft node the application needs. It is
// imported only for its side effects (the init() calls in each adapter and
// in internal/app).
package wiring

import (
	// Register adapter nodes.
	_ "ekam.build/ekam/internal/adapters/detector"
	_ "ekam.build/ekam/internal/adapters/logger"
	_ "ekam.build/ekam/internal/adapters/tracer"
	_ "ekam.build/ekam/internal/adapters/watcher"
	// Register app nodes.
	_ "ekam.build/ekam/internal/app"
)
