package player

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"music-board/internal/music/sources"
	"music-board/internal/storage"
)

type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopOne
	LoopCount
	LoopAll
)

func (m LoopMode) String() string {
	switch m {
	case LoopOne:
		return "one"
	case LoopCount:
		return "count"
	case LoopAll:
		return "all"
	default:
		return "none"
	}
}

// Looping is the repeat policy of a board. Count is only meaningful for
// LoopCount and holds the repeats still owed.
type Looping struct {
	Mode  LoopMode
	Count int
}

func (l Looping) repeatsCurrent() bool {
	return l.Mode == LoopOne || (l.Mode == LoopCount && l.Count > 0)
}

// Board is the playback state of one guild. Every field is guarded by mu.
type Board struct {
	mu sync.Mutex

	guildID      string
	textChannel  string
	voiceChannel string
	conn         Connection

	queue          []*sources.LinkableSong
	lastSongPlayed *sources.LinkableSong
	session        OutputSession
	playing        bool
	paused         bool
	looping        Looping
	volume         int

	// Set when the board must be torn down after the current output ends.
	// While set, looping is ignored and the board counts as not playing.
	disconnectImmediately bool

	timer     Timer
	timerKind timerKind
	timerGen  uint64

	destroyed bool
	ctx       context.Context
	cancel    context.CancelFunc
	gone      chan struct{}

	log *log.Logger
}

func (b *Board) key() storage.Key {
	return storage.Key{GuildID: b.guildID, ChannelID: b.textChannel}
}

// active reports whether commands that act on the current song may run.
func (b *Board) active() bool {
	return b.playing && b.session != nil && !b.disconnectImmediately && !b.destroyed
}

func (b *Board) cancelTimerLocked() {
	b.timerGen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Board) prepend(song *sources.LinkableSong) {
	b.queue = append([]*sources.LinkableSong{song}, b.queue...)
}

// State is a read-only snapshot of a board.
type State struct {
	GuildID        string
	TextChannelID  string
	VoiceChannelID string
	Current        *sources.LinkableSong
	Queue          []*sources.LinkableSong
	Playing        bool
	Paused         bool
	Looping        Looping
	Volume         int
	Leaving        bool
	TimerPending   bool
}

func (b *Board) snapshotLocked() State {
	st := State{
		GuildID:        b.guildID,
		TextChannelID:  b.textChannel,
		VoiceChannelID: b.voiceChannel,
		Queue:          append([]*sources.LinkableSong(nil), b.queue...),
		Playing:        b.playing,
		Paused:         b.paused,
		Looping:        b.looping,
		Volume:         b.volume,
		Leaving:        b.disconnectImmediately,
		TimerPending:   b.timer != nil,
	}
	if b.playing {
		st.Current = b.lastSongPlayed
	}
	return st
}

// registry maps guild ids to their board.
type registry struct {
	mu     sync.RWMutex
	boards map[string]*Board
}

func newRegistry() *registry {
	return &registry{boards: make(map[string]*Board)}
}

func (r *registry) get(guildID string) *Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.boards[guildID]
}

func (r *registry) add(b *Board) {
	r.mu.Lock()
	r.boards[b.guildID] = b
	r.mu.Unlock()
}

// remove deletes b only if it is still the registered board for its guild.
func (r *registry) remove(b *Board) {
	r.mu.Lock()
	if r.boards[b.guildID] == b {
		delete(r.boards, b.guildID)
	}
	r.mu.Unlock()
}

func (r *registry) all() []*Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Board, 0, len(r.boards))
	for _, b := range r.boards {
		out = append(out, b)
	}
	return out
}

// guildLocks serializes Play per guild so arrival order is queue order.
type guildLocks struct {
	mu    sync.Mutex
	locks map[string]*guildLock
}

type guildLock struct {
	mu   sync.Mutex
	refs int
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*guildLock)}
}

func (g *guildLocks) lock(guildID string) (unlock func()) {
	g.mu.Lock()
	l, ok := g.locks[guildID]
	if !ok {
		l = &guildLock{}
		g.locks[guildID] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, guildID)
		}
		g.mu.Unlock()
	}
}
