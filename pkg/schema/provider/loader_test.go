package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const loaderSurveyYAML = `
id: feedback
version: %s
title: Feedback
sections:
  - id: main
    fields:
      - id: rating
        type: number
        label: Rating
        required: true
      - id: comment
        type: long_text
        label: Comment
        visible_when:
          conditions:
            - field: rating
              operator: less_than
              value: 3
`

func writeSurveyFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func versionYAML(version string) string {
	return fmt.Sprintf(loaderSurveyYAML, version)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSurveyFile(t, dir, "feedback.yaml", versionYAML("v1"))

	registry := NewRegistry()
	loader := NewLoader(registry, nil)

	if err := loader.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !registry.Has("v1") {
		t.Error("Expected v1 to be published")
	}
}

func TestLoader_LoadFile_Missing(t *testing.T) {
	loader := NewLoader(NewRegistry(), nil)

	err := loader.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected a load error")
	}
	if _, ok := err.(*LoadError); !ok {
		t.Errorf("Expected *LoadError, got %T", err)
	}
}

func TestLoader_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSurveyFile(t, dir, "a.yaml", versionYAML("v1"))
	writeSurveyFile(t, dir, "b.yml", versionYAML("v2"))
	writeSurveyFile(t, dir, "notes.txt", "not a survey")
	writeSurveyFile(t, dir, ".hidden.yaml", versionYAML("v9"))

	registry := NewRegistry()
	loader := NewLoader(registry, nil)

	loaded, failures := loader.LoadDirectory(dir)
	if len(failures) != 0 {
		t.Fatalf("Unexpected failures: %v", failures)
	}
	if loaded != 2 {
		t.Errorf("Loaded %d surveys, want 2", loaded)
	}
	if !registry.Has("v1") || !registry.Has("v2") {
		t.Errorf("Published versions = %v, want v1 and v2", registry.Versions())
	}
	if registry.Has("v9") {
		t.Error("Hidden files must be skipped")
	}
}

func TestLoader_LoadDirectory_BadFileDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	writeSurveyFile(t, dir, "good.yaml", versionYAML("v1"))
	writeSurveyFile(t, dir, "bad.yaml", "id: broken\nsections: [")

	registry := NewRegistry()
	loader := NewLoader(registry, nil)

	loaded, failures := loader.LoadDirectory(dir)
	if loaded != 1 {
		t.Errorf("Loaded %d surveys, want 1", loaded)
	}
	if len(failures) != 1 {
		t.Errorf("Expected 1 failure, got %v", failures)
	}
	if !registry.Has("v1") {
		t.Error("Expected the good survey to publish despite the bad one")
	}
}

func TestLoader_LoadDirectory_CompileErrorStaysUnpublished(t *testing.T) {
	dir := t.TempDir()
	bad := `
id: feedback
version: v1
sections:
  - id: main
    fields:
      - id: rating
        type: number
        visible_when:
          conditions:
            - field: nonexistent
              operator: equals
              value: 1
`
	writeSurveyFile(t, dir, "bad.yaml", bad)

	registry := NewRegistry()
	loader := NewLoader(registry, nil)

	loaded, failures := loader.LoadDirectory(dir)
	if loaded != 0 || len(failures) != 1 {
		t.Errorf("loaded=%d failures=%v, want 0 and 1", loaded, failures)
	}
	if registry.Has("v1") {
		t.Error("A version with compile errors must stay unpublished")
	}
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	defer d.stop()

	fired := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.trigger(func() { fired <- struct{}{} })
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Debounced callback never fired")
	}

	select {
	case <-fired:
		t.Error("Expected a burst to collapse to one callback")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.trigger(func() { fired <- struct{}{} })
	d.stop()

	select {
	case <-fired:
		t.Error("Expected stop to cancel the pending callback")
	case <-time.After(150 * time.Millisecond):
	}
}
