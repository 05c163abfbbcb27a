package validation

import (
	"fmt"
	"math"
	"strconv"
)

// Level indicates which validation stage produced the result.
type Level string

const (
	LevelSchema    Level = "schema"
	LevelGuardrail Level = "guardrail"
	LevelBudget    Level = "budget"
	LevelSpatial   Level = "spatial"
	LevelSurface   Level = "surface"
	LevelWriter    Level = "writer"
)

// Severity indicates how critical a validation result is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single validation finding.
type Result struct {
	Level       Level    `json:"level"`
	Severity    Severity `json:"severity"`
	Rule        string   `json:"rule,omitempty"`
	Message     string   `json:"message"`
	Path        string   `json:"path,omitempty"`
	ActualValue any      `json:"actual_value,omitempty"`
	Expected    string   `json:"expected,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Number wraps a float for use as a Result's ActualValue. NaN and the
// infinities, which JSON cannot carry, come back as strings.
func Number(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}

// Stats are aggregate figures computed while validating a scene.
type Stats struct {
	EstimatedTriangles int     `json:"estimated_triangles"`
	TriangleBudget     int     `json:"triangle_budget"`
	LightCount         int     `json:"light_count"`
	DerivedLightCount  int     `json:"derived_light_count"`
	InstanceCount      int     `json:"instance_count"`
	Density            float64 `json:"density"`
	TargetDensity      float64 `json:"target_density"`
}

// Report is the complete validation output.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Stats    Stats    `json:"stats"`
	Summary  string   `json:"summary"`
}

// NewReport creates an empty valid report.
func NewReport() *Report {
	r := &Report{
		Valid:    true,
		Errors:   []Result{},
		Warnings: []Result{},
		Info:     []Result{},
	}
	r.updateSummary()
	return r
}

// AddError adds an error result and marks the report invalid.
func (r *Report) AddError(result Result) {
	result.Severity = SeverityError
	r.Errors = append(r.Errors, result)
	r.Valid = false
	r.updateSummary()
}

// AddWarning adds a warning result.
func (r *Report) AddWarning(result Result) {
	result.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, result)
	r.updateSummary()
}

// AddInfo adds an informational result.
func (r *Report) AddInfo(result Result) {
	result.Severity = SeverityInfo
	r.Info = append(r.Info, result)
	r.updateSummary()
}

// Merge combines another report into this one. Stats are taken from other
// when this report has none.
func (r *Report) Merge(other *Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	if !other.Valid {
		r.Valid = false
	}
	if r.Stats == (Stats{}) {
		r.Stats = other.Stats
	}
	r.updateSummary()
}

// HasRule reports whether any error or warning carries the given rule.
func (r *Report) HasRule(rule string) bool {
	for _, e := range r.Errors {
		if e.Rule == rule {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Rule == rule {
			return true
		}
	}
	return false
}

// Strict returns a copy of the report in which every warning is promoted
// to an error. Used by callers that treat heuristics as blocking.
func (r *Report) Strict() *Report {
	out := NewReport()
	out.Stats = r.Stats
	out.Info = append(out.Info, r.Info...)
	for _, e := range r.Errors {
		out.AddError(e)
	}
	for _, w := range r.Warnings {
		out.AddError(w)
	}
	out.updateSummary()
	return out
}

func (r *Report) updateSummary() {
	r.Summary = fmt.Sprintf("%d errors, %d warnings, %d info",
		len(r.Errors), len(r.Warnings), len(r.Info))
}
