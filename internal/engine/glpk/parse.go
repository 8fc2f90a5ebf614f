package glpk

import (
	"strconv"
	"strings"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/lpwriter"
)

// stdout markers glpsol prints for outcomes that the solution report does
// not spell out on its own. Checked before the report's Status line.
var stdoutMarkers = []struct {
	needle string
	status string
}{
	{"TIME LIMIT EXCEEDED", StatusTimeLimit},
	{"NO PRIMAL FEASIBLE SOLUTION", StatusInfeasible},
	{"NO INTEGER FEASIBLE SOLUTION", StatusIntegerEmpty},
	{"HAS NO FEASIBLE SOLUTION", StatusInfeasible},
	{"UNBOUNDED SOLUTION", StatusUnbounded},
}

// parseOutput combines glpsol's stdout with the written solution report
// into a raw result in GLPK's own status vocabulary.
func parseOutput(stdout, report string, names *lpwriter.NameMap) engine.RawResult {
	raw := engine.RawResult{NativeStatus: StatusUndefined}

	for _, m := range stdoutMarkers {
		if strings.Contains(stdout, m.needle) {
			raw.NativeStatus = m.status
			raw.Diagnostic = m.needle
			return raw
		}
	}

	if status := reportField(report, "Status:"); status != "" {
		// the report spells MIP optima as "INTEGER OPTIMAL"
		raw.NativeStatus = status
	}

	if objField := reportField(report, "Objective:"); objField != "" {
		if v, ok := parseObjective(objField); ok {
			raw.Objective = engine.Float64(v)
		}
	}

	raw.Values = parseColumns(report, names)
	return raw
}

// reportField returns the trimmed remainder of the first report line that
// starts with the given label.
func reportField(report, label string) string {
	for _, line := range strings.Split(report, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, label); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// parseObjective extracts the value from a field shaped like
// "obj = 10 (MAXimum)".
func parseObjective(field string) (float64, bool) {
	if i := strings.Index(field, "="); i >= 0 {
		field = field[i+1:]
	}
	if i := strings.Index(field, "("); i >= 0 {
		field = field[:i]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	return v, err == nil
}

// basis status tokens glpsol prints between a column's name and activity
var basisTokens = map[string]struct{}{
	"B": {}, "NL": {}, "NU": {}, "NF": {}, "NS": {}, "*": {},
}

// parseColumns reads the "Column name ... Activity" table of the report
// and maps file-side names back to model variable names. Variables the
// report omits default to zero.
func parseColumns(report string, names *lpwriter.NameMap) map[string]float64 {
	values := make(map[string]float64)
	for _, name := range names.ModelNames() {
		values[name] = 0
	}

	lines := strings.Split(report, "\n")
	inTable := false
	for _, line := range lines {
		if !inTable {
			if strings.Contains(line, "Column name") {
				inTable = true
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if strings.HasPrefix(trimmed, "---") {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			// wrapped long-name continuation lines are not indexed rows
			continue
		}
		modelName, known := names.Model(fields[1])
		if !known {
			continue
		}
		for _, f := range fields[2:] {
			if _, isBasis := basisTokens[f]; isBasis {
				continue
			}
			if v, err := strconv.ParseFloat(f, 64); err == nil {
				values[modelName] = v
				break
			}
		}
	}
	return values
}
