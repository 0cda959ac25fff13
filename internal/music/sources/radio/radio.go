package radio

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"music-board/internal/music/sources"
)

// Source plays internet radio streams. It only accepts direct links and
// has no search.
type Source struct {
	resolver *Resolver
	stream   *http.Client
	timeout  time.Duration
}

func New() *Source {
	return &Source{
		resolver: NewResolver(),
		// no overall timeout, a radio stream never ends
		stream:  &http.Client{},
		timeout: 5 * time.Second,
	}
}

func (r *Source) SourceName() sources.Name {
	return sources.SourceRadio
}

// Match probes the URL, so it only runs after the cheaper providers passed.
func (r *Source) Match(input string) bool {
	input = strings.TrimSpace(input)
	if !sources.IsURL(input) {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, ok, err := r.resolver.Probe(ctx, input)
	return err == nil && ok
}

func (r *Source) Resolve(ctx context.Context, input string, isSourceURL bool, _ sources.Request) (*sources.LinkableSong, error) {
	input = strings.TrimSpace(input)
	if !sources.IsURL(input) {
		return nil, sources.ErrNoMatch
	}

	info, ok, err := r.resolver.Probe(ctx, input)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sources.ErrNoMatch
	}

	title := info.Name
	if title == "" {
		title = hostOf(info.URL)
	}

	streamURL := info.URL
	return sources.NewLinkableSong(input, title, streamURL, sources.SourceRadio,
		func(ctx context.Context) (io.ReadCloser, error) {
			return open(ctx, r.stream, streamURL)
		}), nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host + u.Path
}

var _ sources.Source = (*Source)(nil)
