/*
Copyright 2026 The optiroute Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package registry holds the set of installed engines and answers
// compatibility queries: which engines can take a model of a given class,
// and which one should. Selection is deterministic: registration order is
// preference order, and the same class always yields the same engine as
// long as availability does not change underneath.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/pkg/mp"
)

// DefaultAvailabilityTTL bounds how long a probe result is trusted.
// Probing means exec.LookPath or a subprocess version check, so results
// are cached rather than re-probed on every solve.
const DefaultAvailabilityTTL = 30 * time.Second

type availability struct {
	ok      bool
	checked time.Time
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	order   []engine.Engine
	byName  map[string]engine.Engine
	probes  map[string]availability
	ttl     time.Duration
	nowFunc func() time.Time
}

// New returns an empty registry with the default availability TTL.
func New() *Registry {
	return &Registry{
		byName:  make(map[string]engine.Engine),
		probes:  make(map[string]availability),
		ttl:     DefaultAvailabilityTTL,
		nowFunc: time.Now,
	}
}

// Register appends an engine at the end of the preference order.
// Registering two engines under one name is a programming error.
func (r *Registry) Register(e engine.Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := e.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("engine %q already registered", name)
	}
	r.byName[name] = e
	r.order = append(r.order, e)
	return nil
}

// SetAvailabilityTTL overrides how long availability probes are cached.
// Zero disables caching; every query re-probes.
func (r *Registry) SetAvailabilityTTL(ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttl = ttl
}

// Names returns the registered engine names in preference order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.order))
	for i, e := range r.order {
		names[i] = e.Name()
	}
	return names
}

// Engine returns the engine registered under name.
func (r *Registry) Engine(name string) (engine.Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byName[name]
	return e, ok
}

// EnginesFor returns every registered engine whose declared capabilities
// cover the class, in preference order, ignoring availability.
func (r *Registry) EnginesFor(class mp.ProblemClass) []engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []engine.Engine
	for _, e := range r.order {
		if e.Capabilities().SupportsClass(class) {
			out = append(out, e)
		}
	}
	return out
}

// Select picks the engine for a model of the given class. A non-empty
// preferred name short-circuits the preference order but is still
// checked for class compatibility and availability. When nothing fits,
// the returned error wraps mp.ErrNoEngineAvailable and says why each
// candidate was passed over.
func (r *Registry) Select(class mp.ProblemClass, preferred string) (engine.Engine, error) {
	if preferred != "" {
		e, ok := r.Engine(preferred)
		if !ok {
			return nil, fmt.Errorf("%w: preferred engine %q is not registered",
				mp.ErrNoEngineAvailable, preferred)
		}
		if !e.Capabilities().SupportsClass(class) {
			return nil, fmt.Errorf("%w: preferred engine %q does not support %s models",
				mp.ErrNoEngineAvailable, preferred, class)
		}
		if !r.available(e) {
			return nil, fmt.Errorf("%w: preferred engine %q is not installed",
				mp.ErrNoEngineAvailable, preferred)
		}
		return e, nil
	}

	candidates := r.EnginesFor(class)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no registered engine supports %s models",
			mp.ErrNoEngineAvailable, class)
	}
	var unavailable []string
	for _, e := range candidates {
		if r.available(e) {
			return e, nil
		}
		unavailable = append(unavailable, e.Name())
	}
	return nil, fmt.Errorf("%w: engines %v support %s models but none is installed",
		mp.ErrNoEngineAvailable, unavailable, class)
}

// available consults the probe cache before asking the engine.
func (r *Registry) available(e engine.Engine) bool {
	name := e.Name()

	r.mu.Lock()
	cached, ok := r.probes[name]
	ttl, now := r.ttl, r.nowFunc()
	r.mu.Unlock()
	if ok && ttl > 0 && now.Sub(cached.checked) < ttl {
		return cached.ok
	}

	// probe outside the lock; Available may exec a subprocess
	alive := e.Available()

	r.mu.Lock()
	r.probes[name] = availability{ok: alive, checked: now}
	r.mu.Unlock()
	return alive
}
