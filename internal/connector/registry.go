package connector

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry holds the connector instances for one gateway process. It is an
// explicit object passed into request handlers; connectors are registered
// during startup and torn down through Shutdown, never created lazily from
// package state.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
	logger     *zap.Logger
	closed     bool
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		connectors: make(map[string]Connector),
		logger:     logger.Named("connector-registry"),
	}
}

// Register adds a connector under its name. Duplicate names are a wiring
// bug and fail loudly.
func (r *Registry) Register(c Connector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry is shut down")
	}
	name := c.Name()
	if _, exists := r.connectors[name]; exists {
		return fmt.Errorf("connector %q is already registered", name)
	}
	r.connectors[name] = c
	r.logger.Info("Connector registered", zap.String("connector", name))
	return nil
}

// Get resolves a connector by name, once per request.
func (r *Registry) Get(name string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector %q", name)
	}
	return c, nil
}

// Names lists registered connectors.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	return names
}

// Shutdown tears down every connector that owns resources and empties the
// registry. Safe to call once; further Register calls fail.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, c := range r.connectors {
		if closer, ok := c.(interface{ Close(context.Context) error }); ok {
			if err := closer.Close(ctx); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing connector %q: %w", name, err)
			}
		}
		delete(r.connectors, name)
	}
	r.closed = true
	r.logger.Info("Connector registry shut down")
	return firstErr
}
