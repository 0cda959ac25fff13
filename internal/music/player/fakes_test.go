package player

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"music-board/internal/logger"
	"music-board/internal/music/sources"
	"music-board/internal/storage"
)

type fakeSession struct {
	title string
	opts  PlayOptions
	done  chan error

	mu     sync.Mutex
	ended  bool
	paused bool
	gains  []float64
}

func (s *fakeSession) Done() <-chan error { return s.done }

func (s *fakeSession) stop(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.done <- err
}

func (s *fakeSession) End()           { s.stop(nil) }
func (s *fakeSession) finish()        { s.stop(nil) }
func (s *fakeSession) fail(err error) { s.stop(err) }

func (s *fakeSession) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *fakeSession) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

func (s *fakeSession) SetVolumeLogarithmic(g float64) {
	s.mu.Lock()
	s.gains = append(s.gains, g)
	s.mu.Unlock()
}

func (s *fakeSession) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

type fakeConn struct {
	started chan *fakeSession
	playErr error

	mu          sync.Mutex
	closed      int
	afterClosed int
}

func (c *fakeConn) Play(stream io.ReadCloser, opts PlayOptions) (OutputSession, error) {
	defer stream.Close()
	c.mu.Lock()
	if c.closed > 0 {
		c.afterClosed++
	}
	c.mu.Unlock()
	if c.playErr != nil {
		return nil, c.playErr
	}
	title, _ := io.ReadAll(stream)
	s := &fakeSession{title: string(title), opts: opts, done: make(chan error, 1)}
	c.started <- s
	return s, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// playsAfterClose counts Play calls made on an already closed connection.
func (c *fakeConn) playsAfterClose() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.afterClosed
}

type fakeVoice struct {
	err error

	mu    sync.Mutex
	conns []*fakeConn
}

func (v *fakeVoice) Join(ctx context.Context, guildID, channelID string) (Connection, error) {
	if v.err != nil {
		return nil, v.err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	c := &fakeConn{started: make(chan *fakeSession, 64)}
	v.conns = append(v.conns, c)
	return c, nil
}

func (v *fakeVoice) joins() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.conns)
}

func (v *fakeVoice) conn(i int) *fakeConn {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conns[i]
}

var errLookup = errors.New("provider unreachable")

// fakeResolver resolves "<provider>:<title>" queries. "none" has no match
// and "broken" fails the lookup. YouTube songs get a youtube.com URL, and
// the title "m4a" opens a stream that reports a non-webm container.
type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, input string, selected sources.Name, req sources.Request) (*sources.LinkableSong, error) {
	switch input {
	case "none":
		return nil, sources.ErrNoMatch
	case "broken":
		return nil, errLookup
	}

	provider, title := sources.SourceSoundCloud, input
	if p, t, ok := strings.Cut(input, ":"); ok {
		provider, title = sources.Name(p), t
	}
	url := "https://example.com/" + title
	if provider == sources.SourceYouTube {
		url = "https://www.youtube.com/watch?v=" + title
	}

	switch title {
	case "unplayable":
		return sources.NewLinkableSong(input, title, url, provider,
			func(context.Context) (io.ReadCloser, error) { return nil, errors.New("stream gone") }), nil
	case "m4a":
		return sources.NewLinkableSong(input, title, url, provider,
			func(context.Context) (io.ReadCloser, error) {
				return sources.WithFormat(io.NopCloser(strings.NewReader(title)), sources.FormatArbitrary), nil
			}), nil
	}
	return sources.NewLinkableSong(input, title, url, provider,
		func(context.Context) (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(title)), nil }), nil
}

type fakeStore struct {
	mu       sync.Mutex
	settings map[storage.Key]storage.MusicSetting
	updates  []storage.MusicUpdate
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: make(map[storage.Key]storage.MusicSetting)}
}

func (s *fakeStore) MusicSetting(ctx context.Context, key storage.Key) (storage.MusicSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.settings[key]
	if !ok {
		return storage.MusicSetting{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *fakeStore) UpdateMany(ctx context.Context, key storage.Key, upd storage.MusicUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, upd)
	return nil
}

func (s *fakeStore) volumeUpdates() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, u := range s.updates {
		if u.Volume != nil {
			out = append(out, *u.Volume)
		}
	}
	return out
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Send(channelID, text string) error {
	n.mu.Lock()
	n.msgs = append(n.msgs, text)
	n.mu.Unlock()
	return nil
}

func (n *fakeNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func (n *fakeNotifier) has(text string) bool {
	for _, m := range n.messages() {
		if m == text {
			return true
		}
	}
	return false
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped atomic.Bool
}

func (t *fakeTimer) Stop() bool {
	return !t.stopped.Swap(true)
}

func (t *fakeTimer) fire() {
	if !t.stopped.Load() {
		t.f()
	}
}

// fakeScheduler only fires timers when the test asks it to.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// last returns the most recently armed timer.
func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type harness struct {
	t        *testing.T
	engine   *Engine
	voice    *fakeVoice
	store    *fakeStore
	notifier *fakeNotifier
	sched    *fakeScheduler
	req      Request
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		voice:    &fakeVoice{},
		store:    newFakeStore(),
		notifier: &fakeNotifier{},
		sched:    &fakeScheduler{},
		req:      Request{GuildID: "g1", ChannelID: "text", VoiceChannelID: "voice", UserID: "u1"},
	}
	cfg := DefaultConfig()
	h.engine = New(cfg, fakeResolver{}, h.voice, h.store, h.notifier, logger.Discard(), WithScheduler(h.sched))
	t.Cleanup(h.engine.Close)
	return h
}

func (h *harness) play(query string) {
	h.t.Helper()
	if err := h.engine.Play(context.Background(), h.req, query, ""); err != nil {
		h.t.Fatalf("Play(%q) error = %v", query, err)
	}
}

// started waits for the next output session on the i-th connection.
func (h *harness) started(i int) *fakeSession {
	h.t.Helper()
	select {
	case s := <-h.voice.conn(i).started:
		return s
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for a song to start")
		return nil
	}
}

func (h *harness) noStart(i int) {
	h.t.Helper()
	select {
	case s := <-h.voice.conn(i).started:
		h.t.Fatalf("unexpected song start: %q", s.title)
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) state() (State, bool) {
	return h.engine.State(h.req.GuildID)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
