package sources

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestFormatForURL(t *testing.T) {
	tests := map[string]Format{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": FormatWebmOpus,
		"https://youtu.be/dQw4w9WgXcQ":                FormatWebmOpus,
		"https://soundcloud.com/artist/track":         FormatArbitrary,
		"http://radio.example.com/stream.mp3":         FormatArbitrary,
	}
	for u, want := range tests {
		if got := FormatForURL(u); got != want {
			t.Errorf("FormatForURL(%q) = %q, want %q", u, got, want)
		}
	}
}

func TestLinkableSongStreamOpensEachTime(t *testing.T) {
	opened := 0
	song := NewLinkableSong("q", "Title", "https://example.com/a", SourceRadio, func(context.Context) (io.ReadCloser, error) {
		opened++
		return io.NopCloser(strings.NewReader("data")), nil
	})

	for range 2 {
		rc, err := song.Stream(context.Background())
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		rc.Close()
	}
	if opened != 2 {
		t.Errorf("opened = %d, want 2", opened)
	}
}

func TestLinkableSongWithoutStream(t *testing.T) {
	song := &LinkableSong{Title: "x"}
	if _, err := song.Stream(context.Background()); err == nil {
		t.Fatal("expected error for song without stream")
	}
}

func TestStreamFormatPrefersReportedContainer(t *testing.T) {
	const yt = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	plain := io.NopCloser(strings.NewReader(""))
	if got := StreamFormat(plain, yt); got != FormatWebmOpus {
		t.Errorf("untagged stream = %q, want %q", got, FormatWebmOpus)
	}

	m4a := WithFormat(io.NopCloser(strings.NewReader("")), FormatArbitrary)
	if got := StreamFormat(m4a, yt); got != FormatArbitrary {
		t.Errorf("tagged stream = %q, want %q", got, FormatArbitrary)
	}
}
