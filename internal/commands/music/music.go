// Package music holds the chat commands driving the music engine.
package music

import (
	"context"

	"music-board/internal/command"
	"music-board/internal/config"
	"music-board/internal/music/player"
	"music-board/internal/music/sources"
	"music-board/pkg/cmd"
)

const category = config.CategoryMusic

// Player is the part of the engine the commands drive.
type Player interface {
	Play(ctx context.Context, req player.Request, query string, source sources.Name) error
	PlayLast(ctx context.Context, req player.Request) error
	Skip(req player.Request) (string, error)
	Seek(req player.Request, timestamp string) (string, error)
	Loop(req player.Request, count int) (string, error)
	LoopAll(req player.Request) (string, error)
	Unloop(req player.Request) (string, error)
	TogglePause(req player.Request) (string, error)
	Disconnect(req player.Request) (string, error)
	SetVolume(req player.Request, level int) (string, error)
	Volume(req player.Request) (int, bool)
	Queue(req player.Request) (player.State, error)
}

// Commands returns every music command bound to p.
func Commands(p Player) []cmd.Command {
	return []cmd.Command{
		&PlayCommand{Player: p},
		&LastCommand{Player: p},
		&SkipCommand{Player: p},
		&SeekCommand{Player: p},
		&LoopCommand{Player: p},
		&LoopAllCommand{Player: p},
		&UnloopCommand{Player: p},
		&PauseCommand{Player: p},
		&DisconnectCommand{Player: p},
		&VolumeCommand{Player: p},
		&QueueCommand{Player: p},
	}
}

// Register adds the music commands to reg wrapped in mws.
func Register(reg *cmd.Registry, p Player, mws ...cmd.Middleware) {
	for _, c := range Commands(p) {
		reg.Register(cmd.Apply(c, mws...))
	}
}

// replyWith runs a command that answers with a single line.
func replyWith(inv *cmd.Invocation, fn func(req player.Request) (string, error)) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	text, err := fn(mc.Request)
	if err != nil {
		return err
	}
	return mc.Reply(text)
}
