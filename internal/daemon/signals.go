package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals are the signals that stop the daemon. SIGHUP is
// treated as shutdown too: the daemon has no config file to reload,
// and a lost terminal should not leave alarms firing into the void.
var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
}

// SignalHandler blocks the daemon's main goroutine until a shutdown
// signal, context cancellation, or an explicit Stop.
type SignalHandler struct {
	sigs    chan os.Signal
	stopped chan struct{}
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{
		sigs:    make(chan os.Signal, 1),
		stopped: make(chan struct{}),
	}
}

// Setup registers the shutdown signals.
func (h *SignalHandler) Setup() {
	signal.Notify(h.sigs, shutdownSignals...)
}

// Wait blocks until a shutdown signal arrives, the context is
// cancelled, or Stop is called. Returns the signal, or nil for the
// other two cases.
func (h *SignalHandler) Wait(ctx context.Context) os.Signal {
	select {
	case sig := <-h.sigs:
		return sig
	case <-ctx.Done():
		return nil
	case <-h.stopped:
		return nil
	}
}

// Stop unblocks Wait without a signal.
func (h *SignalHandler) Stop() {
	signal.Stop(h.sigs)
	close(h.stopped)
}

// Cleanup unregisters the signal handlers.
func (h *SignalHandler) Cleanup() {
	signal.Stop(h.sigs)
}
