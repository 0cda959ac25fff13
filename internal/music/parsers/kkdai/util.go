package kkdai

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrInvalidURL = errors.New("invalid YouTube URL format")
	videoIDRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID returns the 11 character id of a watch, short, shorts or
// music URL.
func ExtractVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidURL
	}

	var id string
	switch strings.TrimPrefix(u.Hostname(), "www.") {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"), strings.HasPrefix(u.Path, "/embed/"), strings.HasPrefix(u.Path, "/live/"):
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) == 2 {
				id = parts[1]
			}
		}
	}

	if !videoIDRegex.MatchString(id) {
		return "", ErrInvalidURL
	}
	return id, nil
}

// WatchURL is the canonical URL of a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
