package music

import (
	"context"
	"errors"
	"strings"
	"testing"

	"music-board/internal/command"
	"music-board/internal/music/player"
	"music-board/internal/music/sources"
	"music-board/pkg/cmd"
)

type fakePlayer struct {
	query  string
	source sources.Name
	seek   string
	count  int
	volume int
	state  player.State
}

func (f *fakePlayer) Play(ctx context.Context, req player.Request, query string, source sources.Name) error {
	f.query, f.source = query, source
	return nil
}
func (f *fakePlayer) PlayLast(ctx context.Context, req player.Request) error { return nil }
func (f *fakePlayer) Skip(req player.Request) (string, error)                { return "Skipped!", nil }
func (f *fakePlayer) Seek(req player.Request, ts string) (string, error) {
	f.seek = ts
	return "seeked", nil
}
func (f *fakePlayer) Loop(req player.Request, count int) (string, error) {
	f.count = count
	return "looping", nil
}
func (f *fakePlayer) LoopAll(req player.Request) (string, error)     { return "all", nil }
func (f *fakePlayer) Unloop(req player.Request) (string, error)      { return "unlooped", nil }
func (f *fakePlayer) TogglePause(req player.Request) (string, error) { return "Paused!", nil }
func (f *fakePlayer) Disconnect(req player.Request) (string, error) {
	return "", &player.UserError{Msg: "I'm not even playing a song :/"}
}
func (f *fakePlayer) SetVolume(req player.Request, level int) (string, error) {
	f.volume = level
	return "volume set", nil
}
func (f *fakePlayer) Volume(req player.Request) (int, bool)          { return 5, true }
func (f *fakePlayer) Queue(req player.Request) (player.State, error) { return f.state, nil }

func run(t *testing.T, reg *cmd.Registry, name string, args ...string) ([]string, error) {
	t.Helper()
	c := reg.Get(name)
	if c == nil {
		t.Fatalf("command %q not registered", name)
	}
	var replies []string
	mc := &command.MessageContext{
		Request: player.Request{GuildID: "g", ChannelID: "c", VoiceChannelID: "v"},
		Reply: func(text string) error {
			replies = append(replies, text)
			return nil
		},
	}
	err := c.Run(context.Background(), &cmd.Invocation{Args: args, Data: mc})
	return replies, err
}

func newRegistry(p Player) *cmd.Registry {
	reg := cmd.NewRegistry()
	Register(reg, p)
	return reg
}

func TestPlayParsesSourceAndQuery(t *testing.T) {
	p := &fakePlayer{}
	reg := newRegistry(p)

	if _, err := run(t, reg, "p", "--source=SoundCloud", "lofi", "beats"); err != nil {
		t.Fatal(err)
	}
	if p.query != "lofi beats" || p.source != sources.SourceSoundCloud {
		t.Errorf("Play(%q, %q)", p.query, p.source)
	}

	_, err := run(t, reg, "play", "--source=bandcamp", "x")
	var userErr *player.UserError
	if !errors.As(err, &userErr) {
		t.Errorf("unknown source error = %v", err)
	}
	if _, err := run(t, reg, "play"); err == nil {
		t.Error("empty play succeeded")
	}
}

func TestReplyCommands(t *testing.T) {
	p := &fakePlayer{}
	reg := newRegistry(p)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"skip", nil, "Skipped!"},
		{"next", nil, "Skipped!"},
		{"seek", []string{"1:30"}, "seeked"},
		{"loop", []string{"3"}, "looping"},
		{"loopall", nil, "all"},
		{"unloop", nil, "unlooped"},
		{"pause", nil, "Paused!"},
		{"vol", nil, "Current volume: **5**"},
		{"volume", []string{"9"}, "volume set"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			replies, err := run(t, reg, tc.name, tc.args...)
			if err != nil {
				t.Fatal(err)
			}
			if len(replies) != 1 || replies[0] != tc.want {
				t.Errorf("replies = %v, want [%s]", replies, tc.want)
			}
		})
	}

	if p.seek != "1:30" || p.count != 3 || p.volume != 9 {
		t.Errorf("seek=%q count=%d volume=%d", p.seek, p.count, p.volume)
	}
}

func TestArgumentErrors(t *testing.T) {
	reg := newRegistry(&fakePlayer{})

	for _, tc := range [][]string{{"seek"}, {"loop", "many"}, {"volume", "loud"}} {
		if _, err := run(t, reg, tc[0], tc[1:]...); err == nil {
			t.Errorf("%v succeeded", tc)
		}
	}
}

func TestDisconnectPassesUserError(t *testing.T) {
	reg := newRegistry(&fakePlayer{})

	replies, err := run(t, reg, "leave")
	if player.UserMessage(err) != "I'm not even playing a song :/" || len(replies) != 0 {
		t.Errorf("Disconnect = %v, %v", replies, err)
	}
}

func TestRenderQueue(t *testing.T) {
	song := func(title string) *sources.LinkableSong {
		return sources.NewLinkableSong(title, title, "", sources.SourceRadio, nil)
	}

	st := player.State{
		Current: song("A"),
		Looping: player.Looping{Mode: player.LoopCount, Count: 2},
	}
	for i := range 12 {
		st.Queue = append(st.Queue, song(string(rune('B'+i))))
	}

	out := renderQueue(st)
	for _, want := range []string{"Now playing: `A`", "2 more times", "1. B", "10. K", "...and 2 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderQueue() missing %q:\n%s", want, out)
		}
	}

	empty := renderQueue(player.State{})
	if !strings.Contains(empty, "The queue is empty.") {
		t.Errorf("renderQueue(empty) = %q", empty)
	}
}
