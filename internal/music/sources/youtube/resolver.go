// /internal/music/sources/youtube/resolver.go
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"music-board/pkg/retrylimit"
)

var (
	videoPattern = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)
	titlePattern = regexp.MustCompile(`"title":\{"runs":\[\{"text":"((?:[^"\\]|\\.)*)"`)
)

// PageSearcher scrapes the YouTube results page. It needs no API key and
// backs up the ytsearch client.
type PageSearcher struct {
	BaseURL string
	Client  *http.Client
}

func NewPageSearcher() *PageSearcher {
	return &PageSearcher{
		BaseURL: "https://www.youtube.com",
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *PageSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retrylimit.StatusError{Code: resp.StatusCode, Op: "youtube search"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parseResultsPage(string(body)), nil
}

// parseResultsPage pulls video ids out of the page, pairing each with the
// first title that follows it.
func parseResultsPage(body string) []Result {
	var results []Result
	seen := make(map[string]struct{})

	locs := videoPattern.FindAllStringSubmatchIndex(body, -1)
	for _, loc := range locs {
		id := body[loc[2]:loc[3]]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		title := ""
		if m := titlePattern.FindStringSubmatch(body[loc[1]:]); m != nil {
			title = unescapeJSON(m[1])
		}
		results = append(results, Result{VideoID: id, Title: title})
	}
	return results
}

func unescapeJSON(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
