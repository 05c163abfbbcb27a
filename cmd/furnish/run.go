package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Urbanninja1/2DHD-sub001/internal/config"
	"github.com/Urbanninja1/2DHD-sub001/internal/logging"
	"github.com/Urbanninja1/2DHD-sub001/internal/pipeline"
	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
	"github.com/Urbanninja1/2DHD-sub001/pkg/glb"
	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
)

// apply overlays the flags the user set onto s.
func (f *flags) apply(cmd *cobra.Command, s *config.Settings) {
	changed := cmd.Flags().Changed
	if changed("assets") {
		s.AssetDir = f.assets
	}
	if changed("output") {
		s.OutputDir = f.output
	}
	if changed("format") {
		s.Format = f.format
	}
	if changed("density") {
		s.Density = f.density
	}
	if changed("seed") {
		s.Seed = f.seed
	}
	if changed("strict") {
		s.Strict = f.strict
	}
	if changed("log-level") {
		s.Log.Level = f.logLevel
	}
	if changed("log-format") {
		s.Log.Format = f.logFormat
	}
}

// lockedWriter serializes writes from loggers running on different goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// loadProject loads the project and its settings and builds the pipeline
// options for it. Logs go to logOut.
func loadProject(cmd *cobra.Command, f *flags, dir string, logOut io.Writer) (*spec.Project, pipeline.Options, error) {
	project, err := spec.LoadProject(dir)
	if err != nil {
		return nil, pipeline.Options{}, fmt.Errorf("loading project: %w", err)
	}
	settings, err := config.Load(dir)
	if err != nil {
		return nil, pipeline.Options{}, fmt.Errorf("loading settings: %w", err)
	}
	f.apply(cmd, settings)
	if err := settings.Validate(); err != nil {
		return nil, pipeline.Options{}, err
	}
	logger, err := logging.New(logOut, settings.Log.Level, settings.Log.Format)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	opts, err := pipeline.FromSettings(settings, logger)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	return project, opts, nil
}

func runResolve(cmd *cobra.Command, f *flags, dir string) error {
	project, opts, err := loadProject(cmd, f, dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rm := pipeline.Resolve(project, opts)

	out := cmd.OutOrStdout()
	if f.json {
		return printJSON(out, rm)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(rm); err != nil {
		return fmt.Errorf("encoding resolved manifest: %w", err)
	}
	return enc.Close()
}

func runValidate(cmd *cobra.Command, f *flags, dir string) error {
	project, opts, err := loadProject(cmd, f, dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	res, err := pipeline.Check(cmd.Context(), project, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		if err := printJSON(out, map[string]any{
			"room":       res.RoomID,
			"tier":       res.Tier,
			"validation": res.Report,
		}); err != nil {
			return err
		}
	} else {
		printValidationReport(out, res.Report)
	}

	if !res.Report.Valid {
		return fmt.Errorf("room %s has validation errors", res.RoomID)
	}
	return nil
}

type roomOutcome struct {
	dir    string
	result *pipeline.Result
	err    error
}

func runGenerate(cmd *cobra.Command, f *flags, dirs []string) error {
	outcomes := make([]roomOutcome, len(dirs))
	logOut := &lockedWriter{w: cmd.ErrOrStderr()}

	var wg sync.WaitGroup
	for i, dir := range dirs {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()
			outcomes[i].dir = dir
			project, opts, err := loadProject(cmd, f, dir, logOut)
			if err != nil {
				outcomes[i].err = err
				return
			}
			outcomes[i].result, outcomes[i].err = pipeline.Run(cmd.Context(), project, opts)
		}(i, dir)
	}
	wg.Wait()

	out := cmd.OutOrStdout()
	if f.json {
		if err := printJSON(out, generateSummary(outcomes)); err != nil {
			return err
		}
	} else {
		printGenerateSummary(out, outcomes)
	}

	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.dir, o.err))
		}
	}
	return errors.Join(errs...)
}

type boundsEntry struct {
	File  string    `json:"file"`
	Min   *geo.Vec3 `json:"min,omitempty"`
	Max   *geo.Vec3 `json:"max,omitempty"`
	Size  *geo.Vec3 `json:"size,omitempty"`
	Error string    `json:"error,omitempty"`
}

func runBounds(cmd *cobra.Command, f *flags, paths []string) error {
	cache := glb.NewCache()
	entries := make([]boundsEntry, 0, len(paths))
	var errs []error
	for _, p := range paths {
		b, err := cache.ReadBounds(p)
		if err != nil {
			errs = append(errs, err)
			entries = append(entries, boundsEntry{File: p, Error: err.Error()})
			continue
		}
		size := b.Size()
		entries = append(entries, boundsEntry{File: p, Min: &b.Min, Max: &b.Max, Size: &size})
	}

	out := cmd.OutOrStdout()
	if f.json {
		if err := printJSON(out, entries); err != nil {
			return err
		}
	} else {
		printBounds(out, entries)
	}
	return errors.Join(errs...)
}
