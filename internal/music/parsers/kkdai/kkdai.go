// Package kkdai fetches YouTube metadata and audio streams with
// github.com/kkdai/youtube, optionally through an HTTP or SOCKS proxy.
package kkdai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "github.com/bdandy/go-socks4"
	"github.com/charmbracelet/log"
	youtube "github.com/kkdai/youtube/v2"
	"golang.org/x/net/proxy"

	"music-board/internal/music/sources"
)

var ErrNoAudioFormat = errors.New("no audio formats found for video")

type Client struct {
	yt    *youtube.Client
	proxy string
	log   *log.Logger
}

// NewClient builds a client. proxyStr may be empty or an http(s), socks5 or
// socks4 URL; an unusable proxy is logged and ignored.
func NewClient(proxyStr string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default().WithPrefix("kkdai")
	}

	c := &Client{log: logger}

	transport, err := proxyTransport(proxyStr)
	switch {
	case err != nil:
		logger.Warn("Proxy ignored", "proxy", proxyStr, "err", err)
	case transport != nil:
		logger.Info("Using proxy", "proxy", proxyStr)
		c.proxy = proxyStr
	}

	httpClient := &http.Client{}
	if transport != nil {
		httpClient.Transport = transport
	}
	c.yt = &youtube.Client{HTTPClient: httpClient}
	return c
}

// Proxy returns the proxy in use, or "".
func (c *Client) Proxy() string {
	return c.proxy
}

// Video fetches the metadata of a video.
func (c *Client) Video(ctx context.Context, videoID string) (*youtube.Video, error) {
	video, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("youtube client error: %w", err)
	}
	return video, nil
}

// OpenAudio opens the audio stream of a video, preferring webm/opus. The
// stream reports its container so non-webm fallbacks get probed.
func (c *Client) OpenAudio(ctx context.Context, videoID string) (sources.FormattedStream, error) {
	video, err := c.Video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	format, err := pickAudioFormat(video.Formats)
	if err != nil {
		return nil, err
	}

	stream, _, err := c.yt.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("get stream error: %w", err)
	}

	c.log.Debug("Opened audio stream", "video", videoID, "mime", format.MimeType, "bitrate", format.Bitrate)
	return sources.WithFormat(stream, containerOf(format)), nil
}

func containerOf(f *youtube.Format) sources.Format {
	if strings.HasPrefix(f.MimeType, "audio/webm") {
		return sources.FormatWebmOpus
	}
	return sources.FormatArbitrary
}

func pickAudioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	audio := formats.WithAudioChannels()
	if len(audio) == 0 {
		return nil, ErrNoAudioFormat
	}
	if webm := audio.Type("audio/webm"); len(webm) > 0 {
		return &webm[0], nil
	}
	return &audio[0], nil
}

func proxyTransport(proxyStr string) (*http.Transport, error) {
	if proxyStr == "" {
		return nil, nil
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy format: %w", err)
	}

	baseDialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 10 * time.Second,
	}

	switch proxyURL.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil
	case "socks5", "socks4":
		// socks4 is registered with x/net/proxy by go-socks4
		dialer, err := proxy.FromURL(proxyURL, baseDialer)
		if err != nil {
			return nil, fmt.Errorf("%s dialer error: %w", proxyURL.Scheme, err)
		}
		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", proxyURL.Scheme)
	}
}
