// /internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

var ErrNotFound = errors.New("music setting not found")

// Key identifies the settings row of a guild text channel.
type Key struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
}

func (k Key) String() string {
	return k.GuildID + ":" + k.ChannelID
}

// MusicSetting is the persisted music state of a guild channel.
type MusicSetting struct {
	GuildID        string    `json:"guild_id"`
	ChannelID      string    `json:"channel_id"`
	Volume         *int      `json:"volume,omitempty"`
	LastSongPlayed string    `json:"last_song_played"`
	SongsPlayed    int       `json:"songs_played"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s MusicSetting) Key() Key {
	return Key{GuildID: s.GuildID, ChannelID: s.ChannelID}
}

// MusicUpdate is a partial update. Nil fields are left untouched.
type MusicUpdate struct {
	LastSongPlayed       *string
	IncrementSongsPlayed bool
	Volume               *int
}

func (u MusicUpdate) IsZero() bool {
	return u.LastSongPlayed == nil && !u.IncrementSongsPlayed && u.Volume == nil
}

// apply merges the update into s.
func (u MusicUpdate) apply(s *MusicSetting, now time.Time) {
	if u.LastSongPlayed != nil {
		s.LastSongPlayed = *u.LastSongPlayed
	}
	if u.IncrementSongsPlayed {
		s.SongsPlayed++
	}
	if u.Volume != nil {
		v := *u.Volume
		s.Volume = &v
	}
	s.UpdatedAt = now
}

// Store persists music settings per guild channel.
type Store interface {
	MusicSetting(ctx context.Context, key Key) (MusicSetting, error)
	UpdateMany(ctx context.Context, key Key, upd MusicUpdate) error
	DeleteMusicSetting(ctx context.Context, key Key) error
	MusicSettings(ctx context.Context) ([]MusicSetting, error)
	Close() error
}

// Open returns the backend selected by driver.
func Open(driver, path string, logger *log.Logger) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSON(path, logger)
	case DriverSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
