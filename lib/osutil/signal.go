package osutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is cancelled on the first SIGINT or
// SIGTERM, a second signal kills the process as usual once stop is called.
func SignalContext(parent context.Context) (ctx context.Context, stop func()) {
	return signal.NotifyContext(parent, syscall.SIGINT, os.Interrupt, syscall.SIGTERM)
}
