package provider

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"canvass-hq/canvass/pkg/schema"
)

// maxSurveyFileSize caps how large a single definition file may be.
const maxSurveyFileSize = 4 << 20 // 4 MiB

// LoadError reports a failure to load one survey file. Files that fail to
// load never reach the registry; other files in the same directory still
// publish.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %q: %s", e.Path, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Loader reads survey definition files from the filesystem and publishes
// them to a registry.
type Loader struct {
	registry *Registry
	logger   *slog.Logger
}

// NewLoader creates a loader publishing into the given registry.
func NewLoader(registry *Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		registry: registry,
		logger:   logger.With("component", "provider.loader"),
	}
}

// LoadFile parses one survey file and publishes it.
func (l *Loader) LoadFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &LoadError{Path: path, Message: "cannot access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return &LoadError{Path: path, Message: "not a regular file"}
	}
	if info.Size() > maxSurveyFileSize {
		return &LoadError{Path: path,
			Message: fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), maxSurveyFileSize)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return &LoadError{Path: path, Message: "file is not valid UTF-8"}
	}

	survey, err := schema.ParseBytes(data)
	if err != nil {
		return &LoadError{Path: path, Message: "failed to parse survey", Cause: err}
	}

	if err := l.registry.Publish(survey); err != nil {
		return &LoadError{Path: path, Message: "failed to publish survey", Cause: err}
	}

	l.logger.Info("survey published",
		"path", path,
		"survey_id", survey.ID,
		"survey_version", survey.Version,
	)
	return nil
}

// LoadDirectory walks a directory tree and publishes every .yaml/.yml
// survey file. Files that fail keep their versions unpublished but do not
// stop the rest; all failures are returned together.
func (l *Loader) LoadDirectory(dir string) (int, []error) {
	var loaded int
	var failures []error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !isSurveyFile(path) {
			return nil
		}

		if err := l.LoadFile(path); err != nil {
			l.logger.Warn("survey file skipped", "path", path, "error", err)
			failures = append(failures, err)
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		failures = append(failures, &LoadError{Path: dir, Message: "directory walk failed", Cause: err})
	}

	return loaded, failures
}

// isSurveyFile reports whether a path looks like a survey definition.
func isSurveyFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
