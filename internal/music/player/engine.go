// Package player owns the per-guild music boards: the queue, the loop
// policy, volume and the timers that make the bot leave voice channels.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"music-board/internal/music/sources"
	"music-board/internal/storage"
)

// VolumeLog divides a volume level into the gain handed to the output.
const VolumeLog = 15

type Config struct {
	DisconnectTimeout      time.Duration
	AloneDisconnectTimeout time.Duration
	DefaultVolume          int
	ResolveTimeout         time.Duration
	WriteTimeout           time.Duration
	// Providers that cannot seek.
	SeekBlacklist []sources.Name
}

func DefaultConfig() Config {
	return Config{
		DisconnectTimeout:      5 * time.Minute,
		AloneDisconnectTimeout: time.Minute,
		DefaultVolume:          5,
		ResolveTimeout:         20 * time.Second,
		WriteTimeout:           5 * time.Second,
		SeekBlacklist:          []sources.Name{sources.SourceYouTube, sources.SourceRadio},
	}
}

// Request identifies who issued a command and from where.
type Request struct {
	GuildID        string
	ChannelID      string // text channel
	VoiceChannelID string // the caller's voice channel, empty when not connected
	UserID         string
}

type Option func(*Engine)

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

type Engine struct {
	cfg      Config
	resolver Resolver
	voice    Voice
	store    SettingsStore
	notifier Notifier
	sched    Scheduler
	log      *log.Logger

	boards   *registry
	locks    *guildLocks
	settings *settingsWriter
	watchers sync.WaitGroup
}

func New(cfg Config, resolver Resolver, voice Voice, store SettingsStore, notifier Notifier, logger *log.Logger, opts ...Option) *Engine {
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = DefaultConfig().ResolveTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if logger == nil {
		logger = log.Default()
	}

	e := &Engine{
		cfg:      cfg,
		resolver: resolver,
		voice:    voice,
		store:    store,
		notifier: notifier,
		sched:    realScheduler{},
		log:      logger,
		boards:   newRegistry(),
		locks:    newGuildLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.settings = newSettingsWriter(store, cfg.WriteTimeout, logger)
	return e
}

// Play resolves query and either starts it or appends it to the guild's
// queue. A caller outside any voice channel is ignored.
func (e *Engine) Play(ctx context.Context, req Request, query string, source sources.Name) error {
	if req.GuildID == "" || req.VoiceChannelID == "" {
		return nil
	}

	unlock := e.locks.lock(req.GuildID)
	defer unlock()

	song, err := e.resolve(ctx, req, query, source)
	if err != nil {
		return err
	}

	for {
		b := e.boards.get(req.GuildID)
		if b == nil {
			break
		}

		b.mu.Lock()
		if b.destroyed {
			b.mu.Unlock()
			continue
		}
		if b.disconnectImmediately {
			gone := b.gone
			b.mu.Unlock()
			b.log.Debug("Waiting for teardown before playing", "query", query)
			select {
			case <-gone:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if b.session == nil {
			sess, err := e.playSongLocked(b, song)
			text := b.textChannel
			b.mu.Unlock()
			if err != nil {
				return err
			}
			e.watch(b, sess)
			e.notify(text, fmt.Sprintf("Start playing: `%s`", song.Title))
			return nil
		}

		b.queue = append(b.queue, song)
		text := b.textChannel
		b.log.Info("Queued song", "title", song.Title, "position", len(b.queue))
		b.mu.Unlock()
		e.notify(text, fmt.Sprintf("Added to queue: **%s**", song.Title))
		return nil
	}

	return e.startBoard(ctx, req, song)
}

// PlayLast replays the last song recorded for the caller's text channel.
func (e *Engine) PlayLast(ctx context.Context, req Request) error {
	if req.GuildID == "" || req.VoiceChannelID == "" {
		return nil
	}
	if e.store == nil {
		return userErrorf("I don't remember any song for this channel.")
	}

	setting, err := e.store.MusicSetting(ctx, storage.Key{GuildID: req.GuildID, ChannelID: req.ChannelID})
	if errors.Is(err, storage.ErrNotFound) || (err == nil && setting.LastSongPlayed == "") {
		return userErrorf("I don't remember any song for this channel.")
	}
	if err != nil {
		return fmt.Errorf("load music setting: %w", err)
	}
	return e.Play(ctx, req, setting.LastSongPlayed, "")
}

func (e *Engine) resolve(ctx context.Context, req Request, query string, source sources.Name) (*sources.LinkableSong, error) {
	rctx, cancel := context.WithTimeout(ctx, e.cfg.ResolveTimeout)
	defer cancel()

	song, err := e.resolver.Resolve(rctx, query, source, sources.Request{
		GuildID:   req.GuildID,
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
	})
	switch {
	case errors.Is(err, sources.ErrNoMatch) || (err == nil && song == nil):
		return nil, userErrorf("Couldn't find a match for query `%s`...", query)
	case err != nil:
		e.log.Warn("Resolution failed", "query", query, "err", err)
		return nil, &ResolutionError{Query: query, Err: err}
	}
	return song, nil
}

func (e *Engine) startBoard(ctx context.Context, req Request, song *sources.LinkableSong) error {
	conn, err := e.voice.Join(ctx, req.GuildID, req.VoiceChannelID)
	if err != nil {
		e.log.Error("Failed to join voice channel", "guild", req.GuildID, "channel", req.VoiceChannelID, "err", err)
		return &ConnectionError{ChannelID: req.VoiceChannelID, Err: err}
	}

	bctx, cancel := context.WithCancel(context.Background())
	b := &Board{
		guildID:      req.GuildID,
		textChannel:  req.ChannelID,
		voiceChannel: req.VoiceChannelID,
		conn:         conn,
		volume:       e.loadVolume(ctx, storage.Key{GuildID: req.GuildID, ChannelID: req.ChannelID}),
		ctx:          bctx,
		cancel:       cancel,
		gone:         make(chan struct{}),
		log:          e.log.With("guild", req.GuildID, "run", uuid.NewString()[:8]),
	}
	// Held across add so no command sees the board before its first song.
	b.mu.Lock()
	e.boards.add(b)
	b.log.Info("Joined voice channel", "channel", req.VoiceChannelID, "volume", b.volume)

	sess, err := e.playSongLocked(b, song)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	e.watch(b, sess)
	e.notify(req.ChannelID, fmt.Sprintf("Start playing: `%s`", song.Title))
	return nil
}

func (e *Engine) loadVolume(ctx context.Context, key storage.Key) int {
	if e.store == nil {
		return e.cfg.DefaultVolume
	}
	setting, err := e.store.MusicSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.log.Warn("Failed to load volume, using default", "key", key.String(), "err", err)
		}
		return e.cfg.DefaultVolume
	}
	if setting.Volume == nil {
		return e.cfg.DefaultVolume
	}
	return *setting.Volume
}

// playSongLocked starts song on b. On failure the board is left not
// playing with its idle timer armed.
func (e *Engine) playSongLocked(b *Board, song *sources.LinkableSong) (OutputSession, error) {
	b.cancelTimerLocked()
	b.lastSongPlayed = song

	query := song.Query
	e.settings.enqueue(b.key(), storage.MusicUpdate{LastSongPlayed: &query, IncrementSongsPlayed: true})

	stream, err := song.Stream(b.ctx)
	if err != nil {
		return nil, e.failLocked(b, song, err)
	}
	sess, err := b.conn.Play(stream, PlayOptions{
		Format: sources.StreamFormat(stream, song.URL),
		Seek:   song.Options.Seek,
	})
	if err != nil {
		stream.Close()
		return nil, e.failLocked(b, song, err)
	}

	b.session = sess
	b.playing = true
	b.paused = false
	e.setVolumeLocked(b, b.volume)
	b.log.Info("Now playing", "title", song.Title, "provider", song.Provider, "seek", song.Options.Seek)
	return sess, nil
}

func (e *Engine) failLocked(b *Board, song *sources.LinkableSong, err error) error {
	b.log.Error("Playback failed", "title", song.Title, "err", err)

	b.session = nil
	b.playing = false
	b.paused = false
	if b.disconnectImmediately {
		e.destroyLocked(b)
	} else {
		e.scheduleLocked(b, timerIdle)
	}
	return &PlaybackError{Title: song.Title, Err: err}
}

// watch follows b's output sessions until the board stops playing.
func (e *Engine) watch(b *Board, sess OutputSession) {
	e.watchers.Add(1)
	go func() {
		defer e.watchers.Done()
		for sess != nil {
			err := <-sess.Done()
			sess = e.finish(b, sess, err)
		}
	}()
}

// finish handles the end of sess and returns the next session to follow.
func (e *Engine) finish(b *Board, sess OutputSession, outErr error) OutputSession {
	b.mu.Lock()
	if b.session != sess {
		b.mu.Unlock()
		return nil
	}
	b.session = nil
	text := b.textChannel

	if outErr != nil {
		song := b.lastSongPlayed
		perr := e.failLocked(b, song, outErr)
		b.mu.Unlock()
		e.notify(text, UserMessage(perr))
		return nil
	}

	next, err := e.advanceLocked(b)
	b.mu.Unlock()
	if err != nil {
		e.notify(text, UserMessage(err))
	}
	return next
}

// advanceLocked applies the loop policy and starts the next song, or arms
// the idle timer when the queue is empty.
func (e *Engine) advanceLocked(b *Board) (OutputSession, error) {
	b.playing = false
	b.paused = false
	latched := b.disconnectImmediately

	if !latched && b.lastSongPlayed != nil {
		switch {
		case b.looping.repeatsCurrent():
			b.prepend(b.lastSongPlayed)
			if b.looping.Mode == LoopCount {
				b.looping.Count--
			}
		case b.looping.Mode == LoopAll:
			b.queue = append(b.queue, b.lastSongPlayed)
		}
	}

	if len(b.queue) == 0 {
		if latched {
			e.destroyLocked(b)
		} else {
			e.scheduleLocked(b, timerIdle)
		}
		return nil, nil
	}

	next := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return e.playSongLocked(b, next)
}

// leaveAndClearLocked tears b down now, or after the current output ends
// when something is playing.
func (e *Engine) leaveAndClearLocked(b *Board) {
	if b.destroyed {
		return
	}
	if b.playing && b.session != nil {
		b.disconnectImmediately = true
		b.queue = nil
		b.session.End()
		return
	}
	e.destroyLocked(b)
}

func (e *Engine) destroyLocked(b *Board) {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.cancelTimerLocked()
	b.queue = nil
	b.playing = false
	b.paused = false
	if b.session != nil {
		b.session.End()
		b.session = nil
	}
	b.cancel()
	if err := b.conn.Close(); err != nil {
		b.log.Warn("Failed to leave voice channel", "err", err)
	}
	e.boards.remove(b)
	close(b.gone)
	b.log.Info("Left voice channel")
}

func (e *Engine) notify(channelID, text string) {
	if e.notifier == nil || channelID == "" {
		return
	}
	if err := e.notifier.Send(channelID, text); err != nil {
		e.log.Warn("Failed to send message", "channel", channelID, "err", err)
	}
}

// State returns a snapshot of the guild's board.
func (e *Engine) State(guildID string) (State, bool) {
	b := e.boards.get(guildID)
	if b == nil {
		return State{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return State{}, false
	}
	return b.snapshotLocked(), true
}

// VoiceChannel returns the voice channel the guild's board is connected to.
func (e *Engine) VoiceChannel(guildID string) (string, bool) {
	st, ok := e.State(guildID)
	return st.VoiceChannelID, ok
}

// Close tears every board down immediately and flushes pending settings.
func (e *Engine) Close() {
	for _, b := range e.boards.all() {
		b.mu.Lock()
		e.destroyLocked(b)
		b.mu.Unlock()
	}
	e.watchers.Wait()
	e.settings.close()
	e.log.Info("Music engine stopped")
}
