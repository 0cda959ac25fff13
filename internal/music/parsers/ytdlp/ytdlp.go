// Package ytdlp drives the yt-dlp binary through github.com/lrstanley/go-ytdlp
// for searches, metadata lookups and piped audio downloads.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lrstanley/go-ytdlp"
)

const (
	printTemplate = "%(webpage_url)s\t%(title)s\t%(uploader)s\t%(duration)s"
	audioFormat   = "bestaudio[ext=webm]/bestaudio"
)

var ErrNoResult = errors.New("yt-dlp returned no result")

type Metadata struct {
	URL      string
	Title    string
	Uploader string
	Duration time.Duration
}

type Client struct {
	proxy string
	log   *log.Logger
}

func New(proxy string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default().WithPrefix("ytdlp")
	}
	return &Client{proxy: proxy, log: logger}
}

func (c *Client) command() *ytdlp.Command {
	cmd := ytdlp.New().
		NoWarnings().
		IgnoreConfig()

	if c.proxy != "" {
		cmd.Proxy(c.proxy)
	}
	return cmd
}

// Search runs a yt-dlp search such as "scsearch1:<query>" and returns the
// first entry.
func (c *Client) Search(ctx context.Context, prefix, query string) (*Metadata, error) {
	res, err := c.command().
		FlatPlaylist().
		Print(printTemplate).
		PlaylistItems("1").
		Run(ctx, prefix+query)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search error: %w", err)
	}

	entries := parseMetadata(res.Stdout)
	if len(entries) == 0 {
		return nil, ErrNoResult
	}
	return &entries[0], nil
}

// Metadata resolves a single URL without downloading it.
func (c *Client) Metadata(ctx context.Context, u string) (*Metadata, error) {
	res, err := c.command().
		Print(printTemplate).
		NoPlaylist().
		Run(ctx, "--skip-download", u)
	if err != nil {
		if res != nil && strings.Contains(strings.ToLower(res.Stderr), "drm") {
			return nil, fmt.Errorf("DRM protected: %w", err)
		}
		return nil, fmt.Errorf("yt-dlp metadata error: %w", err)
	}

	entries := parseMetadata(res.Stdout)
	if len(entries) == 0 {
		return nil, ErrNoResult
	}
	return &entries[0], nil
}

// Pipe streams the best audio of u through yt-dlp's stdout. Closing the
// reader stops the process.
func (c *Client) Pipe(ctx context.Context, u string) (io.ReadCloser, error) {
	cmd := c.command().
		Format(audioFormat).
		Output("-").
		NoSimulate().
		NoPart().
		NoPlaylist().
		NoCheckFormats().
		BuildCommand(ctx, u)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("yt-dlp start error: %w", err)
	}

	c.log.Debug("yt-dlp pipe started", "url", u, "pid", cmd.Process.Pid)
	return &process{ReadCloser: stdout, cmd: cmd, stderr: &stderr, log: c.log}, nil
}

// process ties a pipe to the command producing it.
type process struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	log    *log.Logger
}

func (p *process) Close() error {
	p.ReadCloser.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	if err := p.cmd.Wait(); err != nil && p.stderr.Len() > 0 {
		p.log.Debug("yt-dlp exited", "err", err, "stderr", strings.TrimSpace(p.stderr.String()))
	}
	return nil
}

func parseMetadata(stdout string) []Metadata {
	var out []Metadata
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 4 || parts[0] == "" || parts[0] == "NA" {
			continue
		}
		d, _ := time.ParseDuration(parts[3] + "s")
		out = append(out, Metadata{
			URL:      parts[0],
			Title:    parts[1],
			Uploader: parts[2],
			Duration: d,
		})
	}
	return out
}
