package discord

import (
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"music-board/internal/command"
	"music-board/internal/music/player"
	"music-board/pkg/cmd"
)

// maxMessageLen is Discord's message length limit, in characters.
const maxMessageLen = 2000

// onMessageCreate dispatches prefix commands.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || b.registry == nil {
		return
	}

	name, args, ok := cmd.Parse(b.cfg.CommandPrefix, m.Content)
	if !ok {
		return
	}
	c := b.registry.Get(name)
	if c == nil {
		return
	}

	voiceChannel, _ := b.FindUserVoiceState(m.GuildID, m.Author.ID)
	mc := &command.MessageContext{
		Request: player.Request{
			GuildID:        m.GuildID,
			ChannelID:      m.ChannelID,
			VoiceChannelID: voiceChannel,
			UserID:         m.Author.ID,
		},
		Reply: func(text string) error {
			_, err := s.ChannelMessageSend(m.ChannelID, truncate(text))
			return err
		},
		Log: b.log,
	}

	if err := c.Run(b.ctx, &cmd.Invocation{Args: args, Data: mc}); err != nil {
		b.log.Error("Error running command", "command", name, "err", err)
	}
}

func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLen-3]) + "..."
}

// Notifier posts engine messages to text channels.
type Notifier struct {
	dg *discordgo.Session
}

func NewNotifier(dg *discordgo.Session) *Notifier {
	return &Notifier{dg: dg}
}

func (n *Notifier) Send(channelID, text string) error {
	_, err := n.dg.ChannelMessageSend(channelID, truncate(text))
	return err
}
