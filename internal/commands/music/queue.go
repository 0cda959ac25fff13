package music

import (
	"context"
	"fmt"
	"strings"

	"music-board/internal/music/player"
	"music-board/pkg/cmd"
)

const queuePreview = 10

type QueueCommand struct {
	Player Player
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the current song and what comes next" }
func (c *QueueCommand) Aliases() []string   { return []string{"q"} }
func (c *QueueCommand) Category() string    { return category }
func (c *QueueCommand) Usage() string       { return "queue" }

func (c *QueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return replyWith(inv, func(req player.Request) (string, error) {
		st, err := c.Player.Queue(req)
		if err != nil {
			return "", err
		}
		return renderQueue(st), nil
	})
}

func renderQueue(st player.State) string {
	var sb strings.Builder

	switch {
	case st.Current == nil:
		sb.WriteString("Nothing is playing right now.\n")
	case st.Paused:
		fmt.Fprintf(&sb, "Paused: `%s`\n", st.Current.Title)
	default:
		fmt.Fprintf(&sb, "Now playing: `%s`\n", st.Current.Title)
	}

	switch st.Looping.Mode {
	case player.LoopOne:
		sb.WriteString("Looping the current song\n")
	case player.LoopCount:
		fmt.Fprintf(&sb, "Looping the current song %d more times\n", st.Looping.Count)
	case player.LoopAll:
		sb.WriteString("Looping the whole queue\n")
	}

	if len(st.Queue) == 0 {
		sb.WriteString("The queue is empty.")
		return sb.String()
	}

	for i, song := range st.Queue {
		if i == queuePreview {
			fmt.Fprintf(&sb, "...and %d more", len(st.Queue)-queuePreview)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, song.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}
