package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels in-flight work on SIGINT/SIGTERM and runs cleanups.
type Handler struct {
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	cleanupFns  []func()
	once        sync.Once
	interrupted bool
	stop        chan struct{}
}

// New creates a new shutdown handler
func New() *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
	}
}

// Context returns the shutdown context. It is cancelled on the first signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a function to run on shutdown. Cleanups run in
// reverse order of registration.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen starts listening for shutdown signals until Shutdown is called.
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.mu.Lock()
			h.interrupted = true
			h.mu.Unlock()
			h.cancel()
		case <-h.stop:
		}
	}()
}

// Interrupted reports whether a signal was received.
func (h *Handler) Interrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// Shutdown cancels the context and runs the registered cleanups. Only the
// first call has any effect.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()
		close(h.stop)

		h.mu.Lock()
		fns := h.cleanupFns
		h.cleanupFns = nil
		h.mu.Unlock()

		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	})
}
