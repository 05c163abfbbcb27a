// Package guardrails checks a resolved manifest against the lighting,
// budget and spatial limits in package policy. Hard violations make the
// report invalid; everything else is reported as a warning.
package guardrails

import (
	"io"
	"log/slog"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/glb"
	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

// BoundsReader returns the bounding box of the model at path.
type BoundsReader interface {
	ReadBounds(path string) (geo.Bounds, error)
}

// Options configure a validation run.
type Options struct {
	// AssetDir is the directory feature model paths are relative to.
	AssetDir string
	// Margin is the wall clearance used for the bounds re-check. Zero means
	// policy.DefaultMargin.
	Margin float64
	// Bounds reads model bounding boxes. Nil means a fresh glb.Cache for
	// this call.
	Bounds BoundsReader
	Logger *slog.Logger
}

type checker struct {
	rm     *spec.ResolvedManifest
	room   spec.RoomInput
	tier   policy.DensityTier
	opts   Options
	report *validation.Report
	log    *slog.Logger
}

// Validate runs every guardrail check against rm and returns the
// accumulated report. It does not modify rm and gives the same result when
// called twice on the same input.
func Validate(rm *spec.ResolvedManifest, room spec.RoomInput, tier policy.DensityTier, opts Options) *validation.Report {
	if opts.Margin == 0 {
		opts.Margin = policy.DefaultMargin
	}
	if opts.Bounds == nil {
		opts.Bounds = glb.NewCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &checker{
		rm:     rm,
		room:   room,
		tier:   tier,
		opts:   opts,
		report: validation.NewReport(),
		log:    logger.With("room", room.ID),
	}

	c.checkAmbient()
	c.checkLightCount()
	c.checkLightFloors()
	c.checkPostProcess()
	c.checkVolumetric()
	c.checkRenderable()
	c.checkTriangles()
	c.checkBounds()
	c.checkPlaceholders()
	c.checkSurfaces()
	c.checkLifeLayer()
	c.checkDensity()
	c.checkUnderDelivery()
	c.checkMaterialClasses()

	c.log.Debug("guardrails checked",
		"valid", c.report.Valid,
		"errors", len(c.report.Errors),
		"warnings", len(c.report.Warnings),
		"triangles", c.report.Stats.EstimatedTriangles,
	)
	return c.report
}

// derivedLights counts the lights that compound expansion will create.
func derivedLights(rm *spec.ResolvedManifest) int {
	n := 0
	for _, it := range rm.Items() {
		if it.Compound != nil && it.Compound.Light != nil {
			n += len(it.ResolvedPositions)
		}
	}
	return n
}
