package music

import (
	"context"
	"strconv"

	"music-board/internal/music/player"
	"music-board/pkg/cmd"
)

type SkipCommand struct {
	Player Player
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current song" }
func (c *SkipCommand) Aliases() []string   { return []string{"s", "next"} }
func (c *SkipCommand) Category() string    { return category }
func (c *SkipCommand) Usage() string       { return "skip" }

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, c.Player.Skip)
}

type SeekCommand struct {
	Player Player
}

func (c *SeekCommand) Name() string        { return "seek" }
func (c *SeekCommand) Description() string { return "Jump to a position in the current song" }
func (c *SeekCommand) Aliases() []string   { return nil }
func (c *SeekCommand) Category() string    { return category }
func (c *SeekCommand) Usage() string       { return "seek <seconds|mm:ss>" }

func (c *SeekCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return &player.UserError{Msg: "Tell me where to seek, e.g. `seek 1:30`."}
	}
	return replyWith(inv, func(req player.Request) (string, error) {
		return c.Player.Seek(req, inv.Args[0])
	})
}

type LoopCommand struct {
	Player Player
}

func (c *LoopCommand) Name() string        { return "loop" }
func (c *LoopCommand) Description() string { return "Repeat the current song, forever or N more times" }
func (c *LoopCommand) Aliases() []string   { return []string{"repeat"} }
func (c *LoopCommand) Category() string    { return category }
func (c *LoopCommand) Usage() string       { return "loop [times]" }

func (c *LoopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	count := 0
	if len(inv.Args) > 0 {
		n, err := strconv.Atoi(inv.Args[0])
		if err != nil || n < 0 {
			return &player.UserError{Msg: "The loop count must be a positive number."}
		}
		count = n
	}
	return replyWith(inv, func(req player.Request) (string, error) {
		return c.Player.Loop(req, count)
	})
}

type LoopAllCommand struct {
	Player Player
}

func (c *LoopAllCommand) Name() string        { return "loopall" }
func (c *LoopAllCommand) Description() string { return "Repeat the whole queue" }
func (c *LoopAllCommand) Aliases() []string   { return []string{"repeatall"} }
func (c *LoopAllCommand) Category() string    { return category }
func (c *LoopAllCommand) Usage() string       { return "loopall" }

func (c *LoopAllCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, c.Player.LoopAll)
}

type UnloopCommand struct {
	Player Player
}

func (c *UnloopCommand) Name() string        { return "unloop" }
func (c *UnloopCommand) Description() string { return "Stop repeating" }
func (c *UnloopCommand) Aliases() []string   { return nil }
func (c *UnloopCommand) Category() string    { return category }
func (c *UnloopCommand) Usage() string       { return "unloop" }

func (c *UnloopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, c.Player.Unloop)
}

type PauseCommand struct {
	Player Player
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause or resume the current song" }
func (c *PauseCommand) Aliases() []string   { return []string{"resume"} }
func (c *PauseCommand) Category() string    { return category }
func (c *PauseCommand) Usage() string       { return "pause" }

func (c *PauseCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, c.Player.TogglePause)
}

type DisconnectCommand struct {
	Player Player
}

func (c *DisconnectCommand) Name() string        { return "disconnect" }
func (c *DisconnectCommand) Description() string { return "Stop playing and leave the voice channel" }
func (c *DisconnectCommand) Aliases() []string   { return []string{"dc", "leave", "stop"} }
func (c *DisconnectCommand) Category() string    { return category }
func (c *DisconnectCommand) Usage() string       { return "disconnect" }

func (c *DisconnectCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, c.Player.Disconnect)
}

type VolumeCommand struct {
	Player Player
}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Show or change the volume" }
func (c *VolumeCommand) Aliases() []string   { return []string{"vol"} }
func (c *VolumeCommand) Category() string    { return category }
func (c *VolumeCommand) Usage() string       { return "volume [level]" }

func (c *VolumeCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, func(req player.Request) (string, error) {
		if len(inv.Args) == 0 {
			level, ok := c.Player.Volume(req)
			if !ok {
				return "", &player.UserError{Msg: "Nothing is playing right now."}
			}
			return "Current volume: **" + strconv.Itoa(level) + "**", nil
		}

		level, err := strconv.Atoi(inv.Args[0])
		if err != nil {
			return "", &player.UserError{Msg: "The volume must be a number."}
		}
		return c.Player.SetVolume(req, level)
	})
}
