package middleware

import (
	"context"
	"errors"
	"testing"

	"music-board/internal/command"
	"music-board/internal/logger"
	"music-board/internal/music/player"
	"music-board/pkg/cmd"
)

type fakeCommand struct {
	err  error
	runs int
}

func (f *fakeCommand) Name() string        { return "fake" }
func (f *fakeCommand) Description() string { return "fake" }

func (f *fakeCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	f.runs++
	return f.err
}

func invocation(guildID string, replies *[]string) *cmd.Invocation {
	return &cmd.Invocation{Data: &command.MessageContext{
		Request: player.Request{GuildID: guildID, UserID: "u"},
		Reply: func(text string) error {
			*replies = append(*replies, text)
			return nil
		},
		Log: logger.Discard(),
	}}
}

func TestGuildOnlySkipsDirectMessages(t *testing.T) {
	f := &fakeCommand{}
	c := cmd.Apply(f, Defaults()...)

	var replies []string
	if err := c.Run(context.Background(), invocation("", &replies)); err != nil {
		t.Fatal(err)
	}
	if f.runs != 0 {
		t.Errorf("runs = %d, want 0", f.runs)
	}
}

func TestErrorReplyRendersUserErrors(t *testing.T) {
	f := &fakeCommand{err: &player.UserError{Msg: "Play a song first before trying to skip it!"}}
	c := cmd.Apply(f, Defaults()...)

	var replies []string
	if err := c.Run(context.Background(), invocation("g", &replies)); err != nil {
		t.Fatalf("Run() error = %v, want nil for a user error", err)
	}
	if len(replies) != 1 || replies[0] != "Play a song first before trying to skip it!" {
		t.Errorf("replies = %v", replies)
	}
}

func TestErrorReplyKeepsInternalErrors(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeCommand{err: &player.ConnectionError{ChannelID: "v", Err: boom}}
	c := cmd.Apply(f, Defaults()...)

	var replies []string
	err := c.Run(context.Background(), invocation("g", &replies))
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if len(replies) != 1 || replies[0] != "I couldn't join your voice channel: boom" {
		t.Errorf("replies = %v", replies)
	}
}
