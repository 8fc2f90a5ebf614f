// Package scip adapts the SCIP optimization suite to the engine interface
// via the scip executable in batch mode. Models are written in PIP format,
// the polynomial extension of LP format, which lets SCIP cover the
// nonlinear classes as long as every expression is polynomial; function
// nodes (sin, exp, ...) are outside its input contract and rejected at
// build time. The only registered engine for MINLP.
package scip

import (
	"bytes"
	"context"
	"fmt"
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
	Name = "scip"

	// DefaultBinary is the executable looked up on PATH when no explicit
	// path is configured.
	DefaultBinary = "scip"
)

// Native status tokens as written on the "solution status:" line of a
// SCIP solution file.
const (
	StatusOptimal    = "optimal solution found"
	StatusInfeasible = "infeasible"
	StatusUnbounded  = "unbounded"
	StatusTimeLimit  = "time limit reached"
	StatusGapLimit   = "gap limit reached"
	StatusUnknown    = "unknown"
)

// Engine drives scip as a subprocess.
type Engine struct {
	path string
}

// New returns a SCIP engine using the given executable path, or the
// default when empty.
func New(path string) *Engine {
	if path == "" {
		path = DefaultBinary
	}
	return &Engine{path: path}
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		Classes: []mp.ProblemClass{
			mp.ClassLP, mp.ClassIP, mp.ClassMILP, mp.ClassNLP, mp.ClassMINLP,
		},
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
}

func (c *compiled) Engine() string { return Name }

func (e *Engine) Build(m *mp.Model) (engine.Compiled, error) {
	doc, names, err := lpwriter.Assemble(m, true)
	if err != nil {
		return nil, fmt.Errorf("scip: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.WritePIP(&buf); err != nil {
		return nil, fmt.Errorf("scip: %w", err)
	}
	return &compiled{text: buf.Bytes(), names: names, offset: doc.Offset}, nil
}

func (e *Engine) Solve(ctx context.Context, c engine.Compiled, opts engine.Options) (engine.RawResult, error) {
	cc, ok := c.(*compiled)
	if !ok {
		return engine.RawResult{}, fmt.Errorf("scip: model compiled for engine %q", c.Engine())
	}

	dir, err := os.MkdirTemp("", "optiroute-scip-")
	if err != nil {
		return engine.RawResult{}, fmt.Errorf("scip: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.pip")
	solPath := filepath.Join(dir, "solution.sol")
	if err := os.WriteFile(modelPath, cc.text, 0o600); err != nil {
		return engine.RawResult{}, fmt.Errorf("scip: write model: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.path, e.arguments(modelPath, solPath, opts)...)
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
		return engine.RawResult{}, fmt.Errorf("scip: solver failed: %v: %s", runErr, tail(stdout.String()))
	}

	solText, err := os.ReadFile(solPath)
	if err != nil {
		return engine.RawResult{}, fmt.Errorf("scip: no solution file: %w", err)
	}

	raw := parseSolution(string(solText), cc.names)
	raw.Runtime = elapsed
	if raw.Objective != nil {
		*raw.Objective += cc.offset
	}
	return raw, nil
}

// arguments assembles the batch-mode command sequence: read, limits,
// optimize, write solution, quit.
func (e *Engine) arguments(modelPath, solPath string, opts engine.Options) []string {
	args := []string{"-q", "-c", "read " + modelPath}
	if opts.TimeLimit > 0 {
		args = append(args, "-c", "set limits time "+strconv.Itoa(ceilSeconds(opts.TimeLimit)))
	}
	if opts.Tolerance > 0 {
		args = append(args, "-c", "set limits gap "+strconv.FormatFloat(opts.Tolerance, 'g', -1, 64))
	}
	args = append(args,
		"-c", "optimize",
		"-c", "write solution "+solPath,
		"-c", "quit",
	)
	return args
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

func tail(s string) string {
	const max = 400
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
