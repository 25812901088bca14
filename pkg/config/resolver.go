// Package config implements multi-source configuration value resolution for
// build steps: instance state, the step's local config, the parent scope
// (precursor step or orchestrator), and the process environment, consulted
// in whatever order the caller asks for.
package config

import (
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/systemstart/forge/pkg/api"
)

// Source names one layer a Fetch may consult.
type Source string

const (
	SourceState  Source = "state"
	SourceConfig Source = "config"
	SourceParent Source = "parent"
	SourceEnv    Source = "env"
)

// DefaultOrder is the standard precedence: instance state beats local
// config, which beats the parent scope, which beats the environment.
var DefaultOrder = []Source{SourceState, SourceConfig, SourceParent, SourceEnv}

// StateSource exposes a step's instance-state values to the resolver.
type StateSource interface {
	StateValue(key string) (any, bool)
}

// Resolver looks up configuration values across ordered sources.
type Resolver struct {
	State  StateSource
	Local  api.Config
	Parent *Resolver

	// Env overrides process-environment lookup in tests. Nil means
	// os.LookupEnv.
	Env func(key string) (string, bool)
}

// Fetch returns the first value any source in order yields for key, with
// string values rendered as template expressions against the merged config
// scope. When no source yields a value the default is returned; that is
// not an error.
func (r *Resolver) Fetch(key string, def any, sources []Source, exclude ...Source) any {
	v, ok := r.lookup(key, sources, exclude)
	if !ok {
		slog.Debug("no source yielded value, using default", "key", key, "default", def)
		return def
	}
	return r.evaluate(key, v)
}

// FetchRaw is Fetch without expression evaluation. Structured values such
// as the successor list must be copied verbatim, never interpreted.
func (r *Resolver) FetchRaw(key string, def any, sources []Source, exclude ...Source) any {
	v, ok := r.lookup(key, sources, exclude)
	if !ok {
		return def
	}
	return v
}

// FetchString is Fetch coerced to a string.
func (r *Resolver) FetchString(key, def string, sources []Source, exclude ...Source) string {
	return cast.ToString(r.Fetch(key, def, sources, exclude...))
}

// FetchBool is Fetch coerced to a bool.
func (r *Resolver) FetchBool(key string, def bool, sources []Source, exclude ...Source) bool {
	return cast.ToBool(r.Fetch(key, def, sources, exclude...))
}

func (r *Resolver) lookup(key string, sources []Source, exclude []Source) (any, bool) {
	for _, src := range sources {
		if slices.Contains(exclude, src) {
			continue
		}

		switch src {
		case SourceState:
			if r.State != nil {
				if v, ok := r.State.StateValue(key); ok {
					slog.Debug("resolved from instance state", "key", key)
					return v, true
				}
			}
		case SourceConfig:
			if v, ok := r.Local[key]; ok {
				slog.Debug("resolved from local config", "key", key)
				return v, true
			}
		case SourceParent:
			if r.Parent != nil {
				// The parent applies the same precedence but never
				// re-consults the environment: that layer is
				// process-wide and belongs to the innermost step.
				if v, ok := r.Parent.lookup(key, sources, append(exclude, SourceEnv)); ok {
					slog.Debug("resolved from parent scope", "key", key)
					return v, true
				}
			}
		case SourceEnv:
			if v, ok := r.lookupEnv(key); ok {
				slog.Debug("resolved from environment", "key", key)
				return v, true
			}
		}
	}
	return nil, false
}

func (r *Resolver) lookupEnv(key string) (string, bool) {
	getenv := r.Env
	if getenv == nil {
		getenv = os.LookupEnv
	}

	if v, ok := getenv(envName(key)); ok {
		return v, true
	}
	return getenv(key)
}

// envName maps a config key to its conventional environment spelling:
// upper-cased, with every non-alphanumeric run collapsed to "_".
func envName(key string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
