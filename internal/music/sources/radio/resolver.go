// /internal/music/sources/radio/resolver.go
package radio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var validContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream", // risky but often used for streams
}

// StreamInfo describes a validated stream.
type StreamInfo struct {
	URL         string
	ContentType string
	Name        string // icy-name, when the server sends one
}

// Resolver validates streaming radio links by checking headers and
// extension heuristics.
type Resolver struct {
	Client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		Client: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Probe fetches the headers of rawURL and reports whether it looks like an
// audio stream.
func (r *Resolver) Probe(ctx context.Context, rawURL string) (StreamInfo, bool, error) {
	resp, err := r.fetchHeaders(ctx, rawURL)
	if err != nil {
		return StreamInfo{}, false, fmt.Errorf("failed to fetch content type: %w", err)
	}

	info := StreamInfo{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Name:        strings.TrimSpace(resp.Header.Get("icy-name")),
	}

	return info, isAllowedType(info.ContentType) || isLikelyPlaylist(info.URL), nil
}

func (r *Resolver) fetchHeaders(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Icy-MetaData", "1")

	resp, err := r.Client.Do(req)
	if err == nil && resp.StatusCode < 400 {
		resp.Body.Close()
		return resp, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	// many stream servers refuse HEAD
	req.Method = http.MethodGet
	req.Header.Set("Range", "bytes=0-0")
	resp, err = r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET fallback failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stream responded with status %d", resp.StatusCode)
	}
	return resp, nil
}

func isAllowedType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range validContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func isLikelyPlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}

// open starts the long-lived GET that feeds the decoder.
func open(ctx context.Context, client *http.Client, streamURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("stream responded with status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
