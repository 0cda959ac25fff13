package youtube

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"music-board/internal/music/parsers/kkdai"
	"music-board/internal/music/sources"
	"music-board/pkg/retrylimit"
)

// Source resolves YouTube links and free text searches.
type Source struct {
	client    *kkdai.Client
	searchers []Searcher
	limiter   *retrylimit.AdaptiveLimiter
	log       *log.Logger
}

// New creates the YouTube source. Searchers are tried in order; by default
// the innertube client and then the results page scraper.
func New(client *kkdai.Client, logger *log.Logger, searchers ...Searcher) *Source {
	if logger == nil {
		logger = log.Default().WithPrefix("youtube")
	}
	if len(searchers) == 0 {
		searchers = []Searcher{NewAPISearcher(), NewPageSearcher()}
	}
	return &Source{
		client:    client,
		searchers: searchers,
		limiter:   retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		log:       logger,
	}
}

func (y *Source) SourceName() sources.Name {
	return sources.SourceYouTube
}

func (y *Source) Match(input string) bool {
	return isYouTubeURL(strings.TrimSpace(input))
}

func (y *Source) Resolve(ctx context.Context, input string, isSourceURL bool, req sources.Request) (*sources.LinkableSong, error) {
	input = strings.TrimSpace(input)

	if isSourceURL {
		return y.resolveURL(ctx, input)
	}
	if sources.IsURL(input) {
		return nil, sources.ErrNoMatch
	}

	result, err := y.search(ctx, input)
	if err != nil {
		return nil, err
	}

	y.log.Debug("Search hit", "query", input, "video", result.VideoID, "guild", req.GuildID)

	title := result.Title
	if title == "" {
		title = input
	}
	return y.song(input, title, result.VideoID), nil
}

func (y *Source) resolveURL(ctx context.Context, input string) (*sources.LinkableSong, error) {
	id, err := kkdai.ExtractVideoID(input)
	if err != nil {
		return nil, sources.ErrNoMatch
	}

	video, err := y.client.Video(ctx, id)
	if err != nil {
		return nil, err
	}
	return y.song(input, video.Title, id), nil
}

// search asks each searcher in turn. A searcher that fails is skipped; the
// last failure is returned only when none produced an answer.
func (y *Source) search(ctx context.Context, query string) (Result, error) {
	var lastErr error
	for _, s := range y.searchers {
		var results []Result
		err := retrylimit.WithRetryMax(ctx, func() error {
			var err error
			results, err = s.Search(ctx, query)
			return err
		}, y.limiter, 3)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			y.log.Warn("Searcher failed", "searcher", fmt.Sprintf("%T", s), "err", err)
			lastErr = err
			continue
		}
		if len(results) > 0 {
			return results[0], nil
		}
		lastErr = nil
	}

	if lastErr != nil {
		return Result{}, fmt.Errorf("youtube search failed: %w", lastErr)
	}
	return Result{}, sources.ErrNoMatch
}

func (y *Source) song(query, title, videoID string) *sources.LinkableSong {
	return sources.NewLinkableSong(query, title, kkdai.WatchURL(videoID), sources.SourceYouTube,
		func(ctx context.Context) (io.ReadCloser, error) {
			return y.client.OpenAudio(ctx, videoID)
		})
}

var _ sources.Source = (*Source)(nil)
