package music

import (
	"context"
	"strings"

	"music-board/internal/command"
	"music-board/internal/music/player"
	"music-board/internal/music/sources"
	"music-board/pkg/cmd"
)

type PlayCommand struct {
	Player Player
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song or add it to the queue" }
func (c *PlayCommand) Aliases() []string   { return []string{"p"} }
func (c *PlayCommand) Category() string    { return category }
func (c *PlayCommand) Usage() string       { return "play [--source=youtube|soundcloud|radio] <link or search>" }

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}

	source, query, err := parsePlayArgs(inv.Args)
	if err != nil {
		return err
	}
	return c.Player.Play(ctx, mc.Request, query, source)
}

func parsePlayArgs(args []string) (sources.Name, string, error) {
	var source sources.Name
	if len(args) > 0 {
		if v, ok := strings.CutPrefix(args[0], "--source="); ok {
			switch name := sources.Name(strings.ToLower(v)); name {
			case sources.SourceYouTube, sources.SourceSoundCloud, sources.SourceRadio:
				source = name
			default:
				return "", "", &player.UserError{Msg: "Unknown source `" + v + "`, use youtube, soundcloud or radio."}
			}
			args = args[1:]
		}
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return "", "", &player.UserError{Msg: "Tell me what to play: a link or a search."}
	}
	return source, query, nil
}

// LastCommand replays the last song played from this channel.
type LastCommand struct {
	Player Player
}

func (c *LastCommand) Name() string        { return "last" }
func (c *LastCommand) Description() string { return "Play the last song played in this channel again" }
func (c *LastCommand) Aliases() []string   { return []string{"replay"} }
func (c *LastCommand) Category() string    { return category }
func (c *LastCommand) Usage() string       { return "last" }

func (c *LastCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	return c.Player.PlayLast(ctx, mc.Request)
}
