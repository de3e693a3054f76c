package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"canvass-hq/canvass/pkg/logic/compiler"
	"canvass-hq/canvass/pkg/logic/graph"
	"canvass-hq/canvass/pkg/schema"
)

// Registry is a thread-safe in-memory store of published survey versions.
// It implements the engine's DefinitionProvider contract.
type Registry struct {
	mu       sync.RWMutex
	surveys  map[string]*schema.Survey
	loadTime time.Time

	// onPublish, when set, is called after each successful publication
	// with the new version identifier. The engine uses it to drop any
	// stale cache entry for that identifier.
	onPublish func(version string)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		surveys:  make(map[string]*schema.Survey),
		loadTime: time.Now(),
	}
}

// OnPublish registers a hook called with each newly published version.
func (r *Registry) OnPublish(hook func(version string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPublish = hook
}

// Publish validates and stores one survey version. The version's rules
// are compiled first; any compile error keeps the version unpublished.
// A version identifier can be published exactly once.
func (r *Registry) Publish(survey *schema.Survey) error {
	if survey == nil {
		return fmt.Errorf("survey cannot be nil")
	}
	if survey.Version == "" {
		return fmt.Errorf("survey %q: version cannot be empty", survey.ID)
	}

	ruleset, err := compiler.CompileSurvey(survey)
	if err != nil {
		return fmt.Errorf("survey version %q: %w", survey.Version, err)
	}
	if _, err := graph.Build(survey, ruleset); err != nil {
		return fmt.Errorf("survey version %q: %w", survey.Version, err)
	}

	r.mu.Lock()
	if _, exists := r.surveys[survey.Version]; exists {
		r.mu.Unlock()
		return fmt.Errorf("survey version %q is already published", survey.Version)
	}
	r.surveys[survey.Version] = survey
	r.loadTime = time.Now()
	hook := r.onPublish
	r.mu.Unlock()

	if hook != nil {
		hook(survey.Version)
	}
	return nil
}

// Survey returns the published survey for a version identifier.
func (r *Registry) Survey(ctx context.Context, version string) (*schema.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	survey, ok := r.surveys[version]
	if !ok {
		return nil, fmt.Errorf("survey version %q is not published", version)
	}
	return survey, nil
}

// Versions returns the published version identifiers in sorted order.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]string, 0, len(r.surveys))
	for version := range r.surveys {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}

// Has reports whether a version is published.
func (r *Registry) Has(version string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.surveys[version]
	return ok
}

// Count returns the number of published versions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surveys)
}

// LoadTime returns when the registry last accepted a publication.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}
