package runner

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Runner for a named transport with device credentials.
type Factory func(creds Credentials) (Runner, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a transport. Real device transports register themselves at
// import time; duplicate names panic, as transports load in a fixed order.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("duplicate runner transport: %s", name))
	}
	factories[name] = factory
}

// New builds the named transport.
func New(name string, creds Credentials) (Runner, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown runner transport %q (registered: %v)", name, Transports())
	}
	return factory(creds)
}

// Transports lists registered transport names.
func Transports() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
