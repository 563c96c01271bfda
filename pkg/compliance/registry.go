package compliance

import (
	"sort"
	"sync"
)

// CheckFunc evaluates one feature: desired subtree from the effective
// validation spec against the actual subtree from collected facts. Each
// returned check must be independently explainable; partial failure within a
// feature is reported per sub-check.
type CheckFunc func(feature string, desired, actual any) []Check

// Skeleton describes the structure the index resolver emits for a feature
// when generating validation files: sub-feature key to placeholder value.
type Skeleton map[string]any

type registration struct {
	fn       CheckFunc
	skeleton Skeleton
}

var (
	registry = make(map[string]registration)
	mu       sync.RWMutex
)

// Register adds a feature evaluation function. Registering a feature twice
// replaces the earlier function; last writer wins, as plugins load in a
// fixed order.
func Register(feature string, fn CheckFunc, skeleton Skeleton) {
	mu.Lock()
	defer mu.Unlock()
	registry[feature] = registration{fn: fn, skeleton: skeleton}
}

func lookup(feature string) (CheckFunc, bool) {
	mu.RLock()
	defer mu.RUnlock()
	reg, ok := registry[feature]
	if !ok {
		return nil, false
	}
	return reg.fn, true
}

// SkeletonFor returns the registered skeleton for a feature.
func SkeletonFor(feature string) (Skeleton, bool) {
	mu.RLock()
	defer mu.RUnlock()
	reg, ok := registry[feature]
	if !ok || reg.skeleton == nil {
		return nil, false
	}
	out := make(Skeleton, len(reg.skeleton))
	for k, v := range reg.skeleton {
		out[k] = v
	}
	return out, true
}

// Features lists registered feature names in order.
func Features() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
