package httpserver

import "time"

// ShutdownTimeout controls how long in-flight uploads may run after a shutdown signal.
var ShutdownTimeout = 30 * time.Second
