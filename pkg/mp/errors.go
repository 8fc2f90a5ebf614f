package mp

import "errors"

// Error taxonomy of the solve pipeline. The first two are recoverable by
// the user (fix the model, install or select another engine); the last two
// indicate an internal defect and abort the current request.
var (
	// ErrMalformedModel marks invalid user input: empty models, duplicate
	// or undeclared variables, inverted bounds, unknown operators.
	ErrMalformedModel = errors.New("malformed model")

	// ErrNoEngineAvailable marks an environment problem: no registered
	// engine covers the problem class, or none reports itself installed.
	ErrNoEngineAvailable = errors.New("no engine available")

	// ErrUnsupportedConstruct marks a builder/engine mismatch: an
	// expression node was routed to an engine whose input contract cannot
	// express it. This should never happen when classifier and registry
	// are consistent.
	ErrUnsupportedConstruct = errors.New("unsupported construct")

	// ErrUnknownStatus marks an incomplete normalization table: an engine
	// reported a status token the per-engine lookup does not cover.
	ErrUnknownStatus = errors.New("unknown engine status")
)
