package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Name identifies the provider that resolved a song.
type Name string

const (
	SourceYouTube    Name = "youtube"
	SourceSoundCloud Name = "soundcloud"
	SourceRadio      Name = "radio"
)

// ErrNoMatch is returned when a provider understood the query but found
// nothing to play. Lookup failures are reported as other errors.
var ErrNoMatch = errors.New("no match found")

// Format is the container hint handed to the decoder.
type Format string

const (
	// FormatWebmOpus is YouTube's native audio stream.
	FormatWebmOpus Format = "webm/opus"
	// FormatArbitrary lets the decoder probe the input.
	FormatArbitrary Format = "arbitrary"
)

// FormatForURL picks the decode profile from the song URL.
func FormatForURL(u string) Format {
	if strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be") {
		return FormatWebmOpus
	}
	return FormatArbitrary
}

// FormattedStream is a stream that knows its own container.
type FormattedStream interface {
	io.ReadCloser
	Format() Format
}

type formattedStream struct {
	io.ReadCloser
	format Format
}

func (s *formattedStream) Format() Format { return s.format }

// WithFormat tags rc with the container it carries.
func WithFormat(rc io.ReadCloser, format Format) FormattedStream {
	return &formattedStream{ReadCloser: rc, format: format}
}

// StreamFormat returns the container reported by stream, falling back to
// the guess from the song URL.
func StreamFormat(stream io.Reader, url string) Format {
	if fs, ok := stream.(FormattedStream); ok && fs.Format() != "" {
		return fs.Format()
	}
	return FormatForURL(url)
}

// Request carries the context of the message that asked for a song.
type Request struct {
	GuildID   string
	ChannelID string
	UserID    string
}

// Source turns user input into a playable song.
type Source interface {
	// Match reports whether input is one of the provider's own URLs.
	Match(input string) bool

	// Resolve looks input up. isSourceURL tells whether Match accepted it;
	// otherwise input is a search term. Returns ErrNoMatch on an empty result.
	Resolve(ctx context.Context, input string, isSourceURL bool, req Request) (*LinkableSong, error)

	SourceName() Name
}

// StreamFunc opens a fresh audio stream.
type StreamFunc func(ctx context.Context) (io.ReadCloser, error)

type Options struct {
	// Seek is the start offset in seconds.
	Seek int
}

// LinkableSong is a resolved song. Every call to Stream opens a new
// stream, so loops and seeks never replay a consumed one.
type LinkableSong struct {
	Query    string
	Title    string
	URL      string
	Provider Name
	Options  Options

	open StreamFunc
}

func NewLinkableSong(query, title, url string, provider Name, open StreamFunc) *LinkableSong {
	return &LinkableSong{
		Query:    query,
		Title:    title,
		URL:      url,
		Provider: provider,
		open:     open,
	}
}

func (s *LinkableSong) Stream(ctx context.Context) (io.ReadCloser, error) {
	if s.open == nil {
		return nil, fmt.Errorf("song %q has no stream", s.Title)
	}
	return s.open(ctx)
}

func (s *LinkableSong) String() string {
	return fmt.Sprintf("%s (%s)", s.Title, s.Provider)
}

// IsURL reports whether s looks like an http(s) link.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
