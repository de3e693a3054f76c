package engine

import (
	"context"
	"fmt"
	"sync"

	"canvass-hq/canvass/pkg/logic/compiler"
	"canvass-hq/canvass/pkg/logic/graph"
	"canvass-hq/canvass/pkg/schema"
)

// DefinitionProvider supplies published survey definitions keyed by
// version identifier. Implementations are read-only from the engine's
// point of view.
type DefinitionProvider interface {
	// Survey returns the published survey for a version identifier, or an
	// error if the version is unknown.
	Survey(ctx context.Context, version string) (*schema.Survey, error)
}

// graphCache is a read-through cache of compiled dependency graphs keyed
// by survey-version identifier. Published versions are immutable, so an
// entry stays valid until a new version is published and the provider
// invalidates it.
type graphCache struct {
	mu     sync.RWMutex
	graphs map[string]*graph.DependencyGraph
}

func newGraphCache() *graphCache {
	return &graphCache{
		graphs: make(map[string]*graph.DependencyGraph),
	}
}

// get returns the cached graph for a version, compiling through the
// provider on a miss. Concurrent misses for the same version may compile
// twice; the results are identical and the second simply replaces the
// first.
func (c *graphCache) get(ctx context.Context, provider DefinitionProvider, version string) (*graph.DependencyGraph, error) {
	c.mu.RLock()
	g, ok := c.graphs[version]
	c.mu.RUnlock()
	if ok {
		return g, nil
	}

	survey, err := provider.Survey(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("survey version %q: %w", version, err)
	}

	ruleset, err := compiler.CompileSurvey(survey)
	if err != nil {
		return nil, fmt.Errorf("survey version %q: %w", version, err)
	}

	g, err = graph.Build(survey, ruleset)
	if err != nil {
		return nil, fmt.Errorf("survey version %q: %w", version, err)
	}

	c.mu.Lock()
	c.graphs[version] = g
	c.mu.Unlock()

	return g, nil
}

// invalidate drops the cached graph for one version.
func (c *graphCache) invalidate(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.graphs, version)
}

// invalidateAll drops every cached graph.
func (c *graphCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graphs = make(map[string]*graph.DependencyGraph)
}

// size returns the number of cached graphs.
func (c *graphCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.graphs)
}
