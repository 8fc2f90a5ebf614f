// Package glpk adapts the GNU Linear Programming Kit to the engine
// interface by driving the glpsol executable: the model goes out as a
// CPLEX LP-format file, the solution comes back from glpsol's plain-text
// report. GLPK covers the linear classes (LP, IP, MILP); it was the
// primary linear engine of the system this one replaces.
package glpk

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/lpwriter"
	"github.com/optiroute/optiroute/pkg/mp"
)

const (
	// Name is the engine name used in registry and normalization tables.
	Name = "glpk"

	// DefaultBinary is the executable looked up on PATH when no explicit
	// path is configured.
	DefaultBinary = "glpsol"
)

// Native status tokens this adapter emits. The normalizer's default table
// for glpk covers exactly this set.
const (
	StatusOptimal          = "OPTIMAL"
	StatusIntegerOptimal   = "INTEGER OPTIMAL"
	StatusIntegerSuboptim  = "INTEGER NON-OPTIMAL"
	StatusFeasible         = "FEASIBLE"
	StatusInfeasible       = "INFEASIBLE"
	StatusIntegerEmpty     = "INTEGER EMPTY"
	StatusUnbounded        = "UNBOUNDED"
	StatusUndefined        = "UNDEFINED"
	StatusIntegerUndefined = "INTEGER UNDEFINED"
	StatusTimeLimit        = "TIME LIMIT"
)

// Engine drives glpsol as a subprocess.
type Engine struct {
	path string
}

// New returns a GLPK engine using the given glpsol path, or the default
// when empty.
func New(path string) *Engine {
	if path == "" {
		path = DefaultBinary
	}
	return &Engine{path: path}
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		Classes: []mp.ProblemClass{mp.ClassLP, mp.ClassIP, mp.ClassMILP},
	}
}

func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.path)
	return err == nil
}

type compiled struct {
	text   []byte
	names  *lpwriter.NameMap
	offset float64
	mip    bool
}

func (c *compiled) Engine() string { return Name }

// Build renders the model as an LP-format file in memory. Nonlinear
// constructs are rejected here, before any process is spawned.
func (e *Engine) Build(m *mp.Model) (engine.Compiled, error) {
	doc, names, err := lpwriter.Assemble(m, false)
	if err != nil {
		return nil, fmt.Errorf("glpk: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.WriteLP(&buf); err != nil {
		return nil, fmt.Errorf("glpk: %w", err)
	}
	return &compiled{
		text:   buf.Bytes(),
		names:  names,
		offset: doc.Offset,
		mip:    len(doc.Generals)+len(doc.Binaries) > 0,
	}, nil
}

func (e *Engine) Solve(ctx context.Context, c engine.Compiled, opts engine.Options) (engine.RawResult, error) {
	cc, ok := c.(*compiled)
	if !ok {
		return engine.RawResult{}, fmt.Errorf("glpk: model compiled for engine %q", c.Engine())
	}

	dir, err := os.MkdirTemp("", "optiroute-glpk-")
	if err != nil {
		return engine.RawResult{}, fmt.Errorf("glpk: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "solution.txt")
	if err := os.WriteFile(modelPath, cc.text, 0o600); err != nil {
		return engine.RawResult{}, fmt.Errorf("glpk: write model: %w", err)
	}

	args := e.arguments(modelPath, solPath, cc.mip, opts)
	cmd := exec.CommandContext(ctx, e.path, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return engine.RawResult{}, ctx.Err()
	}
	if runErr != nil {
		return engine.RawResult{}, fmt.Errorf("glpk: glpsol failed: %v: %s", runErr, tail(stdout.String()))
	}

	solText, _ := os.ReadFile(solPath)
	raw := parseOutput(stdout.String(), string(solText), cc.names)
	raw.Runtime = elapsed
	if raw.Objective != nil {
		*raw.Objective += cc.offset
	}
	return raw, nil
}

func (e *Engine) arguments(modelPath, solPath string, mip bool, opts engine.Options) []string {
	args := []string{"--lp", modelPath, "-o", solPath}
	if opts.TimeLimit > 0 {
		secs := int(math.Ceil(opts.TimeLimit.Seconds()))
		if secs < 1 {
			secs = 1
		}
		args = append(args, "--tmlim", strconv.Itoa(secs))
	}
	if opts.Tolerance > 0 && mip {
		args = append(args, "--mipgap", strconv.FormatFloat(opts.Tolerance, 'g', -1, 64))
	}
	return args
}

func tail(s string) string {
	const max = 400
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
