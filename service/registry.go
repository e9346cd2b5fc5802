// Package service provides a named registry of singleton-like
// collaborator objects.
//
// The registry is a constructed object owned by the top-level
// application and injected into collaborators that need it; there is
// no ambient global state. Lookup by name tolerates absence: most
// callers treat a missing service as "feature disabled", not as an
// error.
package service

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Service is a registrable collaborator. A service must complete its
// own initialization before registration; registering never triggers
// initialization.
type Service interface {
	// ServiceName returns the stable name the service is looked up by.
	ServiceName() string

	// Initialized reports whether the service has completed its init
	// sequence.
	Initialized() bool

	// Cleanup releases the service's resources. Called by Unregister
	// and CleanupAll.
	Cleanup() error
}

// Registry holds registered services by name.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string
	log      zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		services: make(map[string]Service),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a service under its own name. It returns
// ErrDuplicateService if the name is taken and ErrNotInitialized if
// the service reports itself not yet initialized; in both cases the
// registry is unchanged.
func (r *Registry) Register(svc Service) error {
	if svc == nil {
		return ErrNilService
	}

	name := svc.ServiceName()
	if name == "" {
		return ErrUnnamedService
	}
	if !svc.Initialized() {
		return fmt.Errorf("%w: %s", ErrNotInitialized, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateService, name)
	}

	r.services[name] = svc
	r.order = append(r.order, name)
	return nil
}

// Get looks up a service by name. Absence is a normal outcome, not an
// error.
func (r *Registry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	return svc, ok
}

// Has checks whether a service is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered service names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Unregister removes a service and runs its cleanup. Returns whether
// the service was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	svc, ok := r.services[name]
	if ok {
		delete(r.services, name)
		for i, n := range r.order {
			if n == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	if err := svc.Cleanup(); err != nil {
		r.log.Warn().Str("service", name).Err(err).Msg("service cleanup failed")
	}
	return true
}

// CleanupAll cleans up and clears every registered service, in
// reverse registration order. The single teardown hook run at
// application shutdown.
func (r *Registry) CleanupAll() {
	r.mu.Lock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	services := r.services
	r.services = make(map[string]Service)
	r.order = nil
	r.mu.Unlock()

	for i := len(names) - 1; i >= 0; i-- {
		svc := services[names[i]]
		if err := svc.Cleanup(); err != nil {
			r.log.Warn().Str("service", names[i]).Err(err).Msg("service cleanup failed")
		}
	}
}
