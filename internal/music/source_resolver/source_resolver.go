package source_resolver

import (
	"context"
	"fmt"

	"music-board/internal/music/sources"
)

// SourceResolver picks the provider for a query. Sources are consulted in
// the order given; the fallback handles anything no source claims.
type SourceResolver struct {
	sources  []sources.Source
	fallback sources.Source
}

func New(fallback sources.Source, srcs ...sources.Source) *SourceResolver {
	return &SourceResolver{sources: srcs, fallback: fallback}
}

// Sources returns the registered providers in priority order.
func (r *SourceResolver) Sources() []sources.Source {
	return r.sources
}

// Lookup returns the registered provider with the given name.
func (r *SourceResolver) Lookup(name sources.Name) (sources.Source, bool) {
	for _, s := range r.sources {
		if s.SourceName() == name {
			return s, true
		}
	}
	if r.fallback != nil && r.fallback.SourceName() == name {
		return r.fallback, true
	}
	return nil, false
}

// Resolve turns input into a song. A non-empty selected forces that
// provider; an unknown one yields sources.ErrNoMatch. Otherwise the first
// provider recognising input as its own URL wins, and plain input goes to
// the fallback as a search term.
func (r *SourceResolver) Resolve(ctx context.Context, input string, selected sources.Name, req sources.Request) (*sources.LinkableSong, error) {
	if selected != "" {
		src, ok := r.Lookup(selected)
		if !ok {
			return nil, sources.ErrNoMatch
		}
		return src.Resolve(ctx, input, src.Match(input), req)
	}

	for _, src := range r.sources {
		if src.Match(input) {
			return src.Resolve(ctx, input, true, req)
		}
	}

	if r.fallback == nil {
		return nil, fmt.Errorf("no fallback source for %q: %w", input, sources.ErrNoMatch)
	}
	return r.fallback.Resolve(ctx, input, false, req)
}
