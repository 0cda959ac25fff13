package youtube

import (
	"context"

	"github.com/ppalone/ytsearch"
)

// Result is one search hit.
type Result struct {
	VideoID string
	Title   string
}

// Searcher finds videos for a free text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// APISearcher uses the innertube search of github.com/ppalone/ytsearch.
type APISearcher struct {
	client *ytsearch.Client
}

func NewAPISearcher() *APISearcher {
	return &APISearcher{client: ytsearch.NewClient(nil)}
}

func (s *APISearcher) Search(ctx context.Context, query string) ([]Result, error) {
	res, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(res.Results))
	for _, v := range res.Results {
		if v.VideoID == "" {
			continue
		}
		out = append(out, Result{VideoID: v.VideoID, Title: v.Title})
	}
	return out, nil
}
