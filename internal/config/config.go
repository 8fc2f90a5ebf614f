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

// Package config loads the optiroute configuration from file and
// environment. Everything has a working default: a zero-config run
// registers all bundled engines in the default preference order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/engine/cbc"
	"github.com/optiroute/optiroute/internal/engine/descent"
	"github.com/optiroute/optiroute/internal/engine/glpk"
	"github.com/optiroute/optiroute/internal/engine/scip"
	"github.com/optiroute/optiroute/internal/engine/simplex"
	"github.com/optiroute/optiroute/internal/registry"
	"github.com/optiroute/optiroute/pkg/mp"
)

// envPrefix scopes environment overrides, e.g. OPTIROUTE_DEFAULTS_TIMELIMIT.
const envPrefix = "OPTIROUTE"

// DefaultOrder is the engine preference order used when the config file
// does not specify one: external solvers first, in-process fallbacks last.
var DefaultOrder = []string{glpk.Name, cbc.Name, scip.Name, simplex.Name, descent.Name}

// EngineConfig configures one engine adapter.
type EngineConfig struct {
	// Enabled removes the engine from the registry entirely when false.
	// A pointer so that omitting the field means enabled.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`

	// Path overrides the executable looked up on PATH. Ignored by the
	// in-process engines.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// DefaultsConfig sets the solve options applied when a request leaves
// them zero.
type DefaultsConfig struct {
	TimeLimit       time.Duration `mapstructure:"timeLimit" yaml:"timeLimit,omitempty"`
	Tolerance       float64       `mapstructure:"tolerance" yaml:"tolerance,omitempty"`
	PreferredEngine string        `mapstructure:"preferredEngine" yaml:"preferredEngine,omitempty"`
}

// LoggingConfig configures the default logger.
type LoggingConfig struct {
	Verbosity   int  `mapstructure:"verbosity" yaml:"verbosity,omitempty"`
	Development bool `mapstructure:"development" yaml:"development,omitempty"`
}

// Config is the root configuration.
type Config struct {
	// Order is the engine preference order; engines absent from the list
	// are not registered.
	Order []string `mapstructure:"order" yaml:"order,omitempty"`

	// Engines holds per-engine settings keyed by engine name.
	Engines map[string]EngineConfig `mapstructure:"engines" yaml:"engines,omitempty"`

	// Defaults are solve options applied when a request leaves them zero.
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults,omitempty"`

	// MaxConcurrentSolves caps how many engine invocations run at once.
	// Zero means no cap.
	MaxConcurrentSolves int `mapstructure:"maxConcurrentSolves" yaml:"maxConcurrentSolves,omitempty"`

	// StatusTable is an optional YAML file of native-status overrides
	// merged over the built-in normalization tables.
	StatusTable string `mapstructure:"statusTable" yaml:"statusTable,omitempty"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
}

// Load reads configuration from the given file (optional) and the
// environment, over built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("order", DefaultOrder)
	v.SetDefault("defaults.timeLimit", 0)
	v.SetDefault("defaults.tolerance", 0.0)
	v.SetDefault("logging.verbosity", 0)
	v.SetDefault("logging.development", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// knownEngines is the set of bundled engine names.
func knownEngines() map[string]bool {
	out := make(map[string]bool, len(DefaultOrder))
	for _, name := range DefaultOrder {
		out[name] = true
	}
	return out
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	known := knownEngines()
	seen := make(map[string]bool, len(c.Order))
	for _, name := range c.Order {
		if !known[name] {
			return fmt.Errorf("order lists unknown engine %q", name)
		}
		if seen[name] {
			return fmt.Errorf("order lists engine %q twice", name)
		}
		seen[name] = true
	}
	for name := range c.Engines {
		if !known[name] {
			return fmt.Errorf("engines section configures unknown engine %q", name)
		}
	}
	if c.Defaults.TimeLimit < 0 {
		return fmt.Errorf("defaults.timeLimit must be >= 0, got %v", c.Defaults.TimeLimit)
	}
	if c.Defaults.Tolerance < 0 {
		return fmt.Errorf("defaults.tolerance must be >= 0, got %g", c.Defaults.Tolerance)
	}
	if c.Defaults.PreferredEngine != "" && !known[c.Defaults.PreferredEngine] {
		return fmt.Errorf("defaults.preferredEngine %q is not a bundled engine", c.Defaults.PreferredEngine)
	}
	if c.MaxConcurrentSolves < 0 {
		return fmt.Errorf("maxConcurrentSolves must be >= 0, got %d", c.MaxConcurrentSolves)
	}
	if c.Logging.Verbosity < 0 {
		return fmt.Errorf("logging.verbosity must be >= 0, got %d", c.Logging.Verbosity)
	}
	return nil
}

// enabled reports whether the named engine should be registered.
func (c *Config) enabled(name string) bool {
	ec, ok := c.Engines[name]
	if !ok || ec.Enabled == nil {
		return true
	}
	return *ec.Enabled
}

// path returns the configured executable path for the named engine.
func (c *Config) path(name string) string {
	return c.Engines[name].Path
}

// NewRegistry builds an engine registry following the configured order,
// skipping disabled engines.
func (c *Config) NewRegistry() (*registry.Registry, error) {
	order := c.Order
	if len(order) == 0 {
		order = DefaultOrder
	}
	r := registry.New()
	for _, name := range order {
		if !c.enabled(name) {
			continue
		}
		var e engine.Engine
		switch name {
		case glpk.Name:
			e = glpk.New(c.path(name))
		case cbc.Name:
			e = cbc.New(c.path(name))
		case scip.Name:
			e = scip.New(c.path(name))
		case simplex.Name:
			e = simplex.New()
		case descent.Name:
			e = descent.New()
		}
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Options returns the configured default solve options.
func (c *Config) Options() mp.Options {
	return mp.Options{
		TimeLimit:       c.Defaults.TimeLimit,
		Tolerance:       c.Defaults.Tolerance,
		PreferredEngine: c.Defaults.PreferredEngine,
	}
}
