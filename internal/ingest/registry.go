package ingest

import (
	"context"
	"fmt"
	"sort"
)

// Registry holds the configured discovery sources keyed by name.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates a registry from the given sources.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

// Get returns the source for a key. "angellist" is accepted as a legacy
// alias for "wellfound".
func (r *Registry) Get(name string) (Source, error) {
	if name == "angellist" {
		name = "wellfound"
	}
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown discovery source: %s", name)
	}
	return s, nil
}

// Names returns the registered source keys in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchAll fetches from every named source sequentially and returns the
// results keyed by source name. Per-source failures are collected rather
// than aborting the whole run.
func (r *Registry) FetchAll(ctx context.Context, names []string, opts FetchOptions) (map[string][]Company, []error) {
	results := make(map[string][]Company, len(names))
	var errs []error

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		source, err := r.Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		companies, err := source.Fetch(ctx, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", name, err))
			continue
		}
		results[name] = companies
	}

	return results, errs
}
