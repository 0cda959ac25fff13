package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS music_settings (
	guild_id         TEXT NOT NULL,
	channel_id       TEXT NOT NULL,
	volume           INTEGER,
	last_song_played TEXT NOT NULL DEFAULT '',
	songs_played     INTEGER NOT NULL DEFAULT 0,
	updated_at       DATETIME NOT NULL,
	PRIMARY KEY (guild_id, channel_id)
)`

const upsertMusicSetting = `
INSERT INTO music_settings (guild_id, channel_id, volume, last_song_played, songs_played, updated_at)
VALUES (?, ?, ?, COALESCE(?, ''), ?, ?)
ON CONFLICT (guild_id, channel_id) DO UPDATE SET
	volume           = COALESCE(excluded.volume, music_settings.volume),
	last_song_played = COALESCE(?, music_settings.last_song_played),
	songs_played     = music_settings.songs_played + excluded.songs_played,
	updated_at       = excluded.updated_at`

const selectMusicSetting = `
SELECT guild_id, channel_id, volume, last_song_played, songs_played, updated_at
FROM music_settings`

// SQLite keeps settings in a music_settings table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens the database at path and creates the schema. The path can
// be ":memory:" for an in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) MusicSetting(ctx context.Context, key Key) (MusicSetting, error) {
	row := s.db.QueryRowContext(ctx, selectMusicSetting+` WHERE guild_id = ? AND channel_id = ?`, key.GuildID, key.ChannelID)

	setting, err := scanMusicSetting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MusicSetting{}, ErrNotFound
	}
	return setting, err
}

func (s *SQLite) UpdateMany(ctx context.Context, key Key, upd MusicUpdate) error {
	var volume sql.NullInt64
	if upd.Volume != nil {
		volume = sql.NullInt64{Int64: int64(*upd.Volume), Valid: true}
	}
	var last sql.NullString
	if upd.LastSongPlayed != nil {
		last = sql.NullString{String: *upd.LastSongPlayed, Valid: true}
	}
	increment := 0
	if upd.IncrementSongsPlayed {
		increment = 1
	}

	_, err := s.db.ExecContext(ctx, upsertMusicSetting,
		key.GuildID, key.ChannelID, volume, last, increment, s.now().UTC(), last)
	if err != nil {
		return fmt.Errorf("failed to upsert music setting: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteMusicSetting(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM music_settings WHERE guild_id = ? AND channel_id = ?`, key.GuildID, key.ChannelID)
	return err
}

func (s *SQLite) MusicSettings(ctx context.Context) ([]MusicSetting, error) {
	rows, err := s.db.QueryContext(ctx, selectMusicSetting+` ORDER BY guild_id, channel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query music settings: %w", err)
	}
	defer rows.Close()

	var out []MusicSetting
	for rows.Next() {
		setting, err := scanMusicSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMusicSetting(row scanner) (MusicSetting, error) {
	var (
		setting MusicSetting
		volume  sql.NullInt64
	)
	err := row.Scan(&setting.GuildID, &setting.ChannelID, &volume, &setting.LastSongPlayed, &setting.SongsPlayed, &setting.UpdatedAt)
	if err != nil {
		return MusicSetting{}, err
	}
	if volume.Valid {
		v := int(volume.Int64)
		setting.Volume = &v
	}
	return setting, nil
}
