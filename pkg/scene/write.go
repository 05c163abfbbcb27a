package scene

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Urbanninja1/2DHD-sub001/pkg/spec"
	"github.com/Urbanninja1/2DHD-sub001/pkg/validation"
)

// FileSuffix is appended to the room id to name the generated module.
const FileSuffix = ".scene.ts"

// WriteOptions configure Write.
type WriteOptions struct {
	Format Format
	Logger *slog.Logger
}

// InvalidSceneError is returned when the assembled scene fails its own
// structural checks. Nothing is written in that case.
type InvalidSceneError struct {
	RoomID string
	Report *validation.Report
}

func (e *InvalidSceneError) Error() string {
	return fmt.Sprintf("scene %s failed validation: %s", e.RoomID, e.Report.Summary)
}

// Write assembles, validates and renders the scene for rm to path. The
// module is written to a temporary file in the target directory and renamed
// into place, so a failed run never leaves partial output. The returned
// report holds the write-time corrections and scene checks.
func Write(rm *spec.ResolvedManifest, room spec.RoomInput, path string, opts WriteOptions) (*validation.Report, error) {
	s, report := Assemble(rm, room, opts.Logger)
	report.Merge(ValidateScene(s))
	if !report.Valid {
		return report, &InvalidSceneError{RoomID: room.ID, Report: report}
	}

	var buf bytes.Buffer
	if err := Render(&buf, s, opts.Format); err != nil {
		return report, err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return report, fmt.Errorf("writing scene %s: %w", room.ID, err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("scene written",
			"room", room.ID,
			"path", path,
			"groups", len(s.Groups),
			"instances", s.InstanceCount(),
			"lights", len(s.Lights),
			"bytes", buf.Len(),
		)
	}
	return report, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
