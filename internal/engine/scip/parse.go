package scip

import (
	"strconv"
	"strings"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/lpwriter"
)

// parseSolution reads a SCIP solution file:
//
//	solution status: optimal solution found
//	objective value:                    10
//	x                                    4 	(obj:1)
//	y                                    6 	(obj:1)
//
// SCIP writes only nonzero variables; missing names default to zero. An
// infeasible or unbounded file carries the status line and no values.
func parseSolution(text string, names *lpwriter.NameMap) engine.RawResult {
	raw := engine.RawResult{NativeStatus: StatusUnknown}

	values := make(map[string]float64)
	for _, name := range names.ModelNames() {
		values[name] = 0
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "solution status:"); ok {
			raw.NativeStatus = strings.TrimSpace(rest)
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "objective value:"); ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil {
				raw.Objective = engine.Float64(v)
			}
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		modelName, known := names.Model(fields[0])
		if !known {
			continue
		}
		if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
			values[modelName] = v
		}
	}

	raw.Values = values
	return raw
}
