// /internal/music/stream/discord.go
package stream

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"layeh.com/gopus"

	"music-board/internal/music/parsers/ffmpeg"
	"music-board/internal/music/player"
	"music-board/pkg/retrylimit"
)

const (
	bitrate     = 128000
	joinRetries = 3
)

// Joiner connects the bot to guild voice channels.
type Joiner struct {
	session *discordgo.Session
	log     *log.Logger
}

func NewJoiner(s *discordgo.Session, logger *log.Logger) *Joiner {
	return &Joiner{session: s, log: logger}
}

func (j *Joiner) Join(ctx context.Context, guildID, channelID string) (player.Connection, error) {
	var vc *discordgo.VoiceConnection
	err := retrylimit.WithRetryConfig(ctx, func() error {
		var err error
		vc, err = j.session.ChannelVoiceJoin(guildID, channelID, false, true)
		if err != nil && vc != nil {
			vc.Disconnect()
		}
		return err
	}, nil, retrylimit.RetryConfig{
		MaxAttempts:  joinRetries,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
		Logger:       j.log,
	})
	if err != nil {
		return nil, err
	}

	j.log.Debug("Voice connection ready", "guild", guildID, "channel", channelID)
	return &Connection{vc: vc, log: j.log.With("guild", guildID)}, nil
}

// Connection is a joined voice channel.
type Connection struct {
	vc  *discordgo.VoiceConnection
	log *log.Logger
}

// Play decodes stream with ffmpeg and sends opus frames until the stream
// ends or the session is ended.
func (c *Connection) Play(stream io.ReadCloser, opts player.PlayOptions) (player.OutputSession, error) {
	ctx, cancel := context.WithCancel(context.Background())

	dec, err := ffmpeg.Decode(ctx, stream, opts.Format, opts.Seek, c.log)
	if err != nil {
		cancel()
		return nil, err
	}

	enc, err := gopus.NewEncoder(ffmpeg.SampleRate, ffmpeg.Channels, gopus.Audio)
	if err != nil {
		dec.Close()
		cancel()
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	enc.SetBitrate(bitrate)

	s := newSession(ctx, cancel, dec, func(frame []int16) error {
		opus, err := enc.Encode(frame, ffmpeg.FrameSize, len(frame)*2)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		select {
		case c.vc.OpusSend <- opus:
			return nil
		case <-ctx.Done():
			return nil
		}
	}, c.speaking, c.log)
	go s.run()
	return s, nil
}

func (c *Connection) speaking(on bool) {
	if err := c.vc.Speaking(on); err != nil {
		c.log.Debug("Speaking update failed", "on", on, "err", err)
	}
}

func (c *Connection) Close() error {
	return c.vc.Disconnect()
}
