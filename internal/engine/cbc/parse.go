package cbc

import (
	"strconv"
	"strings"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/lpwriter"
)

// first-line prefixes of a cbc solution file, most specific first
var statusPrefixes = []struct {
	prefix string
	status string
}{
	{"Stopped on time limit", StatusTimeLimit},
	{"Stopped on iterations", StatusStoppedIter},
	{"Optimal", StatusOptimal},
	{"Infeasible", StatusInfeasible},
	{"Integer infeasible", StatusInfeasible},
	{"Unbounded", StatusUnbounded},
}

// parseSolution reads a cbc solution file. First line carries the status
// and objective ("Optimal - objective value 10.00000000"); the remaining
// lines are "index name value reducedCost" rows. cbc omits variables at
// zero, so missing names default to zero.
func parseSolution(text string, names *lpwriter.NameMap) engine.RawResult {
	raw := engine.RawResult{NativeStatus: StatusUnknown}
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return raw
	}

	first := strings.TrimSpace(lines[0])
	for _, sp := range statusPrefixes {
		if strings.HasPrefix(first, sp.prefix) {
			raw.NativeStatus = sp.status
			break
		}
	}
	if raw.NativeStatus == StatusUnknown && first != "" {
		// keep whatever cbc said so the normalizer can fail loudly on it
		raw.NativeStatus = first
	}

	const objMarker = "objective value"
	if i := strings.Index(first, objMarker); i >= 0 {
		fields := strings.Fields(first[i+len(objMarker):])
		if len(fields) > 0 {
			if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
				raw.Objective = engine.Float64(v)
			}
		}
	}

	values := make(map[string]float64)
	for _, name := range names.ModelNames() {
		values[name] = 0
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		modelName, known := names.Model(fields[1])
		if !known {
			continue
		}
		if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
			values[modelName] = v
		}
	}
	raw.Values = values
	return raw
}
