package youtube

import (
	"regexp"
)

var youtubeRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.|music\.)?(?:youtube\.com|youtu\.be)/\S+`)

func isYouTubeURL(input string) bool {
	return youtubeRegex.MatchString(input)
}
