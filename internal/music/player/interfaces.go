package player

import (
	"context"
	"io"
	"time"

	"music-board/internal/music/sources"
	"music-board/internal/storage"
)

// PlayOptions tells the voice connection how to decode a stream.
type PlayOptions struct {
	Format sources.Format
	Seek   int // seconds
}

// OutputSession is one song being sent to a voice channel.
type OutputSession interface {
	// Done delivers exactly one value: nil when the song finished or End was
	// called, an error when output failed.
	Done() <-chan error
	SetVolumeLogarithmic(gain float64)
	Pause()
	Resume()
	// End stops output. Safe to call more than once.
	End()
}

// Connection is a joined voice channel, owned by one board.
type Connection interface {
	Play(stream io.ReadCloser, opts PlayOptions) (OutputSession, error)
	Close() error
}

// Voice joins voice channels.
type Voice interface {
	Join(ctx context.Context, guildID, channelID string) (Connection, error)
}

// Resolver turns a query into a song.
type Resolver interface {
	Resolve(ctx context.Context, input string, selected sources.Name, req sources.Request) (*sources.LinkableSong, error)
}

// SettingsStore is the subset of storage.Store the engine writes to.
type SettingsStore interface {
	MusicSetting(ctx context.Context, key storage.Key) (storage.MusicSetting, error)
	UpdateMany(ctx context.Context, key storage.Key, upd storage.MusicUpdate) error
}

// Notifier posts messages to a text channel.
type Notifier interface {
	Send(channelID, text string) error
}

// Scheduler runs f after d. Tests replace it with a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}
