package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Urbanninja1/2DHD-sub001/internal/pipeline"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResults(w io.Writer, title string, results []validation.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(results))
	for _, r := range results {
		if r.Rule != "" {
			fmt.Fprintf(w, "  [%s/%s] %s\n", r.Level, r.Rule, r.Message)
		} else {
			fmt.Fprintf(w, "  [%s] %s\n", r.Level, r.Message)
		}
		if r.Path != "" {
			fmt.Fprintf(w, "    -> %s = %v\n", r.Path, r.ActualValue)
		}
		if r.Expected != "" {
			fmt.Fprintf(w, "    expected: %s\n", r.Expected)
		}
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "    * %s\n", s)
		}
	}
	fmt.Fprintln(w)
}

func printValidationReport(w io.Writer, r *validation.Report) {
	printResults(w, "ERRORS", r.Errors)
	printResults(w, "WARNINGS", r.Warnings)

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	printStats(w, r.Stats)

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printStats(w io.Writer, s validation.Stats) {
	if s == (validation.Stats{}) {
		return
	}
	fmt.Fprintln(w, "Budget")
	fmt.Fprintln(w, "------")
	fmt.Fprintf(w, "  Instances:   %d\n", s.InstanceCount)
	fmt.Fprintf(w, "  Triangles:   %d / %d\n", s.EstimatedTriangles, s.TriangleBudget)
	fmt.Fprintf(w, "  Lights:      %d (+%d derived)\n", s.LightCount, s.DerivedLightCount)
	fmt.Fprintf(w, "  Density:     %.2f / %.2f per m²\n", s.Density, s.TargetDensity)
	fmt.Fprintln(w)
}

type generateEntry struct {
	Project    string             `json:"project"`
	Room       string             `json:"room,omitempty"`
	OutputPath string             `json:"output_path,omitempty"`
	Error      string             `json:"error,omitempty"`
	Validation *validation.Report `json:"validation,omitempty"`
}

func generateSummary(outcomes []roomOutcome) []generateEntry {
	entries := make([]generateEntry, len(outcomes))
	for i, o := range outcomes {
		e := generateEntry{Project: o.dir}
		if o.result != nil {
			e.Room = o.result.RoomID
			e.OutputPath = o.result.OutputPath
			e.Validation = o.result.Report
		}
		if o.err != nil {
			e.Error = o.err.Error()
		}
		entries[i] = e
	}
	return entries
}

func printGenerateSummary(w io.Writer, outcomes []roomOutcome) {
	for _, o := range outcomes {
		var blocked *pipeline.BlockedError
		switch {
		case errors.As(o.err, &blocked):
			fmt.Fprintf(w, "%s: BLOCKED\n", o.dir)
			printValidationReport(w, blocked.Report)
		case o.err != nil:
			fmt.Fprintf(w, "%s: FAILED: %v\n", o.dir, o.err)
		default:
			fmt.Fprintf(w, "%s: wrote %s (%s)\n", o.dir, o.result.OutputPath, o.result.Report.Summary)
			printResults(w, "WARNINGS", o.result.Report.Warnings)
		}
	}
}

func printBounds(w io.Writer, entries []boundsEntry) {
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", e.File, e.Error)
			continue
		}
		fmt.Fprintf(w, "%s\n", e.File)
		fmt.Fprintf(w, "  min:  (%.3f, %.3f, %.3f)\n", e.Min.X, e.Min.Y, e.Min.Z)
		fmt.Fprintf(w, "  max:  (%.3f, %.3f, %.3f)\n", e.Max.X, e.Max.Y, e.Max.Z)
		fmt.Fprintf(w, "  size: %.3f x %.3f x %.3f\n", e.Size.X, e.Size.Y, e.Size.Z)
	}
}
