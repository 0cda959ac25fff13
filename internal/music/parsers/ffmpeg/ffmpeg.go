// Package ffmpeg decodes any audio input into the raw PCM Discord expects:
// signed 16-bit little endian, 48 kHz, stereo.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"music-board/internal/music/sources"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// Binary is the ffmpeg executable looked up in PATH.
var Binary = "ffmpeg"

// inputArgs returns the decode profile for a container hint.
func inputArgs(format sources.Format) []string {
	switch format {
	case sources.FormatWebmOpus:
		// known container, start without a long probe
		return []string{"-f", "webm", "-analyzeduration", "0", "-probesize", "32768"}
	default:
		return nil
	}
}

func args(format sources.Format, seek int) []string {
	a := []string{"-hide_banner", "-loglevel", "warning"}
	if seek > 0 {
		a = append(a, "-ss", strconv.Itoa(seek))
	}
	a = append(a, inputArgs(format)...)
	a = append(a,
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"pipe:1",
	)
	return a
}

// Decoder is a running ffmpeg process. Reads return PCM frames.
type Decoder struct {
	io.ReadCloser
	in     io.Closer
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	log    *log.Logger
}

// Decode starts ffmpeg reading from in. The decoder owns in and closes it.
func Decode(ctx context.Context, in io.ReadCloser, format sources.Format, seek int, logger *log.Logger) (*Decoder, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("ffmpeg")
	}

	cmd := exec.CommandContext(ctx, Binary, args(format, seek)...)
	cmd.Stdin = in

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.StdoutPipe()
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		in.Close()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &Decoder{ReadCloser: out, in: in, cmd: cmd, stderr: &stderr, log: logger}, nil
}

// Close stops ffmpeg and the input feeding it.
func (d *Decoder) Close() error {
	d.in.Close()
	d.ReadCloser.Close()
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	if err := d.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(d.stderr.String()); msg != "" {
			d.log.Debug("ffmpeg exited", "err", err, "stderr", msg)
		}
	}
	return nil
}
