package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"music-board/datastore"
)

const musicKeyPrefix = "music:"

// JSON keeps settings in a datastore file, one entry per guild channel.
type JSON struct {
	ds  *datastore.DataStore
	now func() time.Time
}

func NewJSON(filePath string, logger *log.Logger) (*JSON, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = logger

	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &JSON{ds: ds, now: time.Now}, nil
}

func (s *JSON) Close() error {
	return s.ds.Close()
}

func (s *JSON) MusicSetting(_ context.Context, key Key) (MusicSetting, error) {
	var setting MusicSetting
	ok, err := s.ds.Get(musicKeyPrefix+key.String(), &setting)
	if err != nil {
		return MusicSetting{}, err
	}
	if !ok {
		return MusicSetting{}, ErrNotFound
	}
	return setting, nil
}

func (s *JSON) UpdateMany(_ context.Context, key Key, upd MusicUpdate) error {
	return s.ds.Update(musicKeyPrefix+key.String(), func(cur json.RawMessage) (json.RawMessage, error) {
		setting := MusicSetting{GuildID: key.GuildID, ChannelID: key.ChannelID}
		if cur != nil {
			if err := json.Unmarshal(cur, &setting); err != nil {
				return nil, fmt.Errorf("error unmarshalling music setting: %w", err)
			}
		}
		upd.apply(&setting, s.now())
		return json.Marshal(setting)
	})
}

func (s *JSON) DeleteMusicSetting(_ context.Context, key Key) error {
	return s.ds.Delete(musicKeyPrefix + key.String())
}

func (s *JSON) MusicSettings(_ context.Context) ([]MusicSetting, error) {
	var out []MusicSetting
	for _, k := range s.ds.Keys() {
		if !strings.HasPrefix(k, musicKeyPrefix) {
			continue
		}
		var setting MusicSetting
		if _, err := s.ds.Get(k, &setting); err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	slices.SortFunc(out, func(a, b MusicSetting) int {
		return strings.Compare(a.Key().String(), b.Key().String())
	})
	return out, nil
}
