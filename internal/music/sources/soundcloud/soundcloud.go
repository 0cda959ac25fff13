// /internal/music/sources/soundcloud/soundcloud.go
package soundcloud

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"music-board/internal/music/parsers/ytdlp"
	"music-board/internal/music/sources"
)

const searchPrefix = "scsearch1:"

var trackURLRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:soundcloud\.com|on\.soundcloud\.com|snd\.sc)/\S+`)

// Backend is the part of the yt-dlp client the source needs.
type Backend interface {
	Search(ctx context.Context, prefix, query string) (*ytdlp.Metadata, error)
	Metadata(ctx context.Context, u string) (*ytdlp.Metadata, error)
	Pipe(ctx context.Context, u string) (io.ReadCloser, error)
}

type Source struct {
	backend Backend
}

func New(backend Backend) *Source {
	return &Source{backend: backend}
}

func (s *Source) SourceName() sources.Name {
	return sources.SourceSoundCloud
}

func (s *Source) Match(input string) bool {
	return trackURLRegex.MatchString(strings.TrimSpace(input))
}

func (s *Source) Resolve(ctx context.Context, input string, isSourceURL bool, _ sources.Request) (*sources.LinkableSong, error) {
	input = strings.TrimSpace(input)

	var (
		meta *ytdlp.Metadata
		err  error
	)
	switch {
	case isSourceURL:
		meta, err = s.backend.Metadata(ctx, input)
	case sources.IsURL(input):
		return nil, sources.ErrNoMatch
	default:
		meta, err = s.backend.Search(ctx, searchPrefix, input)
	}
	if errors.Is(err, ytdlp.ErrNoResult) {
		return nil, sources.ErrNoMatch
	}
	if err != nil {
		return nil, err
	}

	trackURL := meta.URL
	if trackURL == "" {
		trackURL = input
	}
	title := meta.Title
	if title == "" {
		title = input
	}

	return sources.NewLinkableSong(input, title, trackURL, sources.SourceSoundCloud,
		func(ctx context.Context) (io.ReadCloser, error) {
			return s.backend.Pipe(ctx, trackURL)
		}), nil
}

var _ sources.Source = (*Source)(nil)
