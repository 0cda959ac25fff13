package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"music-board/internal/logger"
	"music-board/internal/music/parsers/kkdai"
	"music-board/internal/music/sources"
	"music-board/pkg/retrylimit"
)

type fakeSearcher struct {
	results []Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(context.Context, string) ([]Result, error) {
	f.calls++
	return f.results, f.err
}

func newTestSource(searchers ...Searcher) *Source {
	return New(kkdai.NewClient("", logger.Discard()), logger.Discard(), searchers...)
}

func TestMatch(t *testing.T) {
	y := newTestSource(&fakeSearcher{})

	for _, in := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"music.youtube.com/watch?v=dQw4w9WgXcQ",
	} {
		if !y.Match(in) {
			t.Errorf("Match(%q) = false", in)
		}
	}
	for _, in := range []string{
		"rick astley",
		"https://soundcloud.com/a/b",
		"https://example.com/youtube.com/watch",
	} {
		if y.Match(in) {
			t.Errorf("Match(%q) = true", in)
		}
	}
}

func TestResolveSearchUsesFirstHit(t *testing.T) {
	s := &fakeSearcher{results: []Result{{VideoID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up"}, {VideoID: "aaaaaaaaaaa"}}}
	y := newTestSource(s)

	song, err := y.Resolve(context.Background(), "rick astley", false, sources.Request{GuildID: "g"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if song.Title != "Never Gonna Give You Up" || song.Query != "rick astley" {
		t.Errorf("song = %+v", song)
	}
	if song.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" || song.Provider != sources.SourceYouTube {
		t.Errorf("song url/provider = %s/%s", song.URL, song.Provider)
	}
}

func TestResolveSearchFallsBackToNextSearcher(t *testing.T) {
	broken := &fakeSearcher{err: retrylimit.Fatal(errors.New("innertube down"))}
	backup := &fakeSearcher{results: []Result{{VideoID: "dQw4w9WgXcQ"}}}
	y := newTestSource(broken, backup)

	song, err := y.Resolve(context.Background(), "rick astley", false, sources.Request{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if broken.calls != 1 || backup.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", broken.calls, backup.calls)
	}
	if song.Title != "rick astley" {
		t.Errorf("empty title should fall back to the query, got %q", song.Title)
	}
}

func TestResolveNoMatchAndError(t *testing.T) {
	y := newTestSource(&fakeSearcher{})
	if _, err := y.Resolve(context.Background(), "zzzz", false, sources.Request{}); !errors.Is(err, sources.ErrNoMatch) {
		t.Errorf("empty results err = %v, want ErrNoMatch", err)
	}

	lookup := errors.New("network unreachable")
	y = newTestSource(&fakeSearcher{err: retrylimit.Fatal(lookup)})
	_, err := y.Resolve(context.Background(), "zzzz", false, sources.Request{})
	if err == nil || errors.Is(err, sources.ErrNoMatch) || !errors.Is(err, lookup) {
		t.Errorf("failed lookup err = %v, want wrapped lookup error", err)
	}
}

func TestResolveRejectsForeignURLAndBadID(t *testing.T) {
	s := &fakeSearcher{}
	y := newTestSource(s)

	if _, err := y.Resolve(context.Background(), "https://example.com/song", false, sources.Request{}); !errors.Is(err, sources.ErrNoMatch) {
		t.Errorf("foreign URL err = %v, want ErrNoMatch", err)
	}
	if _, err := y.Resolve(context.Background(), "https://www.youtube.com/channel/UC1", true, sources.Request{}); !errors.Is(err, sources.ErrNoMatch) {
		t.Errorf("channel URL err = %v, want ErrNoMatch", err)
	}
	if s.calls != 0 {
		t.Errorf("URLs must not be searched, calls = %d", s.calls)
	}
}

func TestPageSearcher(t *testing.T) {
	page := `var ytInitialData = {"contents":[` +
		`{"videoRenderer":{"videoId":"dQw4w9WgXcQ","thumbnail":{},"title":{"runs":[{"text":"Rick Astley - Never Gonna Give You Up & more"}]}}},` +
		`{"videoRenderer":{"videoId":"dQw4w9WgXcQ"}},` +
		`{"videoRenderer":{"videoId":"yPYZpwSpKmA","title":{"runs":[{"text":"Together Forever"}]}}}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results" || r.URL.Query().Get("search_query") != "rick astley" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	ps := NewPageSearcher()
	ps.BaseURL = srv.URL

	got, err := ps.Search(context.Background(), "rick astley")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() = %+v, want 2 unique results", got)
	}
	if got[0].VideoID != "dQw4w9WgXcQ" || got[0].Title != "Rick Astley - Never Gonna Give You Up & more" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].VideoID != "yPYZpwSpKmA" || got[1].Title != "Together Forever" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestPageSearcherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ps := NewPageSearcher()
	ps.BaseURL = srv.URL

	_, err := ps.Search(context.Background(), "x")
	var se *retrylimit.StatusError
	if !errors.As(err, &se) || se.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want StatusError 429", err)
	}
}
