// Package pipeline runs the furnishing stages for one room project in
// order: resolve, validate, write. The writer never runs when validation
// fails.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Urbanninja1/2DHD-sub001/internal/config"
	"github.com/Urbanninja1/2DHD-sub001/internal/logging"
	"github.com/Urbanninja1/2DHD-sub001/pkg/guardrails"
	"github.com/Urbanninja1/2DHD-sub001/pkg/placement"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/scene"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

// Options configure a pipeline run.
type Options struct {
	AssetDir  string
	OutputDir string
	// Density overrides the room's density tier when set.
	Density string
	Margin  float64
	Seed    int64
	// Strict promotes guardrail warnings to blocking errors.
	Strict bool
	Format scene.Format
	// Bounds reads model bounding boxes. Nil means a fresh cache per run.
	Bounds guardrails.BoundsReader
	Logger *slog.Logger
}

// FromSettings builds Options from loaded settings.
func FromSettings(s *config.Settings, logger *slog.Logger) (Options, error) {
	format, err := scene.ParseFormat(s.Format)
	if err != nil {
		return Options{}, err
	}
	return Options{
		AssetDir:  s.AssetDir,
		OutputDir: s.OutputDir,
		Density:   s.Density,
		Margin:    s.Margin,
		Seed:      s.Seed,
		Strict:    s.Strict,
		Format:    format,
		Logger:    logger,
	}, nil
}

// Result is the outcome of a run.
type Result struct {
	RoomID   string
	Tier     policy.DensityTier
	Resolved *spec.ResolvedManifest
	// Report holds the validation findings, plus the writer's corrections
	// when the scene was written.
	Report *validation.Report
	// OutputPath is set once the scene module has been written.
	OutputPath string
}

// BlockedError is returned when validation fails and the writer was
// skipped.
type BlockedError struct {
	RoomID string
	Report *validation.Report
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("room %s blocked by validation: %s", e.RoomID, e.Report.Summary)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// Resolve runs the placement stage only.
func Resolve(p *spec.Project, opts Options) *spec.ResolvedManifest {
	return placement.Resolve(p.Manifest, *p.Room, placement.Options{
		Margin: opts.Margin,
		Seed:   opts.Seed,
		Logger: opts.logger(),
	})
}

// Check resolves and validates p without writing anything. The returned
// report already has the strict policy applied.
func Check(ctx context.Context, p *spec.Project, opts Options) (*Result, error) {
	log := opts.logger().With("room", p.Room.ID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rm := Resolve(p, opts)
	log.Info("placements resolved",
		"items", len(rm.Items()),
		"instances", rm.InstanceCount(),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tier, report := densityTier(p.Room, opts.Density)
	report.Merge(guardrails.Validate(rm, *p.Room, tier, guardrails.Options{
		AssetDir: opts.AssetDir,
		Margin:   opts.Margin,
		Bounds:   opts.Bounds,
		Logger:   log,
	}))
	if opts.Strict {
		report = report.Strict()
	}
	for _, w := range report.Warnings {
		log.Warn(w.Message, "rule", w.Rule, "path", w.Path)
	}
	for _, e := range report.Errors {
		log.Error(e.Message, "rule", e.Rule, "path", e.Path)
	}
	log.Info("validation complete",
		"valid", report.Valid,
		"strict", opts.Strict,
		"summary", report.Summary,
	)

	return &Result{RoomID: p.Room.ID, Tier: tier, Resolved: rm, Report: report}, nil
}

// Run resolves, validates and writes the scene for p. A hard validation
// failure returns *BlockedError and leaves the output directory untouched.
func Run(ctx context.Context, p *spec.Project, opts Options) (*Result, error) {
	res, err := Check(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	if !res.Report.Valid {
		return res, &BlockedError{RoomID: res.RoomID, Report: res.Report}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	path := OutputPath(opts.OutputDir, p.Room.ID)
	wr, err := scene.Write(res.Resolved, *p.Room, path, scene.WriteOptions{
		Format: opts.Format,
		Logger: opts.logger().With("room", p.Room.ID),
	})
	if wr != nil {
		res.Report.Merge(wr)
	}
	if err != nil {
		return res, err
	}
	res.OutputPath = path
	return res, nil
}

// OutputPath returns where the scene module for roomID is written.
func OutputPath(dir, roomID string) string {
	return filepath.Join(dir, roomID+scene.FileSuffix)
}

func densityTier(room *spec.RoomInput, override string) (policy.DensityTier, *validation.Report) {
	r := validation.NewReport()
	name := room.Density
	if override != "" {
		name = override
	}
	tier, ok := policy.Tier(name)
	if !ok && name != "" {
		r.AddInfo(validation.Result{
			Level:       validation.LevelBudget,
			Message:     fmt.Sprintf("unknown density tier %q, using %s", name, tier.Name),
			Path:        "room.density",
			ActualValue: name,
		})
	}
	return tier, r
}
