// Package cbc adapts the COIN-OR branch-and-cut solver to the engine
// interface via the cbc executable. It shares the LP-format writer with
// the GLPK adapter and reads back cbc's solution file. Registered as the
// second-preference linear engine.
package cbc

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
	Name = "cbc"

	// DefaultBinary is the executable looked up on PATH when no explicit
	// path is configured.
	DefaultBinary = "cbc"
)

// Native status tokens, matching the leading words of the first line of a
// cbc solution file.
const (
	StatusOptimal     = "Optimal"
	StatusInfeasible  = "Infeasible"
	StatusUnbounded   = "Unbounded"
	StatusTimeLimit   = "Stopped on time limit"
	StatusStoppedIter = "Stopped on iterations"
	StatusUnknown     = "Unknown"
)

// Engine drives cbc as a subprocess.
type Engine struct {
	path string
}

// New returns a CBC engine using the given executable path, or the
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
}

func (c *compiled) Engine() string { return Name }

func (e *Engine) Build(m *mp.Model) (engine.Compiled, error) {
	doc, names, err := lpwriter.Assemble(m, false)
	if err != nil {
		return nil, fmt.Errorf("cbc: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.WriteLP(&buf); err != nil {
		return nil, fmt.Errorf("cbc: %w", err)
	}
	return &compiled{text: buf.Bytes(), names: names, offset: doc.Offset}, nil
}

func (e *Engine) Solve(ctx context.Context, c engine.Compiled, opts engine.Options) (engine.RawResult, error) {
	cc, ok := c.(*compiled)
	if !ok {
		return engine.RawResult{}, fmt.Errorf("cbc: model compiled for engine %q", c.Engine())
	}

	dir, err := os.MkdirTemp("", "optiroute-cbc-")
	if err != nil {
		return engine.RawResult{}, fmt.Errorf("cbc: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "solution.txt")
	if err := os.WriteFile(modelPath, cc.text, 0o600); err != nil {
		return engine.RawResult{}, fmt.Errorf("cbc: write model: %w", err)
	}

	args := e.arguments(modelPath, solPath, opts)
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
		return engine.RawResult{}, fmt.Errorf("cbc: solver failed: %v: %s", runErr, tail(stdout.String()))
	}

	solText, err := os.ReadFile(solPath)
	if err != nil {
		return engine.RawResult{}, fmt.Errorf("cbc: no solution file: %w", err)
	}

	raw := parseSolution(string(solText), cc.names)
	raw.Runtime = elapsed
	if raw.Objective != nil {
		*raw.Objective += cc.offset
	}
	return raw, nil
}

func (e *Engine) arguments(modelPath, solPath string, opts engine.Options) []string {
	args := []string{modelPath}
	if opts.TimeLimit > 0 {
		args = append(args, "-seconds", strconv.Itoa(ceilSeconds(opts.TimeLimit)))
	}
	if opts.Tolerance > 0 {
		args = append(args, "-ratioGap", strconv.FormatFloat(opts.Tolerance, 'g', -1, 64))
	}
	args = append(args, "-solve", "-solution", solPath)
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
