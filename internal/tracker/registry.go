package tracker

import (
	"fmt"
	"sort"
	"sync"
)

// TrackerFactory creates a new, uninitialized IssueTracker.
type TrackerFactory func() IssueTracker

// Registry maps tracker names to factories. Adapters register themselves from
// init functions.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]TrackerFactory
}

var globalRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]TrackerFactory)}
}

// Register adds a tracker factory to the global registry.
func Register(name string, factory TrackerFactory) {
	globalRegistry.Register(name, factory)
}

// List returns the names of all trackers in the global registry.
func List() []string {
	return globalRegistry.List()
}

// NewTracker creates a new instance of the named tracker from the global registry.
func NewTracker(name string) (IssueTracker, error) {
	return globalRegistry.NewTracker(name)
}

// Register adds a tracker factory to this registry.
func (r *Registry) Register(name string, factory TrackerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers[name] = factory
}

// List returns the registered tracker names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.trackers))
	for name := range r.trackers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewTracker creates a new instance of the named tracker.
func (r *Registry) NewTracker(name string) (IssueTracker, error) {
	r.mu.RLock()
	factory := r.trackers[name]
	r.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("unknown tracker %q (available: %v)", name, r.List())
	}
	return factory(), nil
}
