package discord

import (
	"github.com/bwmarrin/discordgo"
)

// FindUserVoiceState returns the voice channel the user is connected to in
// the guild.
func (b *Bot) FindUserVoiceState(guildID, userID string) (string, bool) {
	if guildID == "" {
		return "", false
	}
	vs, err := b.dg.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

// onVoiceStateUpdate arms the alone timer when the last listener leaves the
// bot's channel and cancels it when someone comes back.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if b.engine == nil || v.VoiceState == nil {
		return
	}

	guildID := v.GuildID
	channelID, ok := b.engine.VoiceChannel(guildID)
	if !ok {
		b.setAlone(guildID, false)
		return
	}

	touched := v.ChannelID == channelID || (v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID == channelID)
	if !touched {
		return
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		b.log.Debug("Guild not in state", "guild", guildID, "err", err)
		return
	}

	listeners := countListeners(guild.VoiceStates, channelID, s.State.User.ID, func(userID string) bool {
		m, err := s.State.Member(guildID, userID)
		return err == nil && m.User != nil && m.User.Bot
	})

	alone := listeners == 0
	if !b.setAlone(guildID, alone) {
		return
	}
	if alone {
		b.log.Debug("Bot left alone", "guild", guildID, "channel", channelID)
		b.engine.StartAloneTimeout(guildID)
	} else {
		b.log.Debug("Listener is back", "guild", guildID, "channel", channelID)
		b.engine.StopAloneTimeout(guildID)
	}
}

// setAlone records the alone state and reports whether it changed.
func (b *Bot) setAlone(guildID string, alone bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.alone[guildID] == alone {
		return false
	}
	if alone {
		b.alone[guildID] = true
	} else {
		delete(b.alone, guildID)
	}
	return true
}

// countListeners counts the users other than the bot itself and other bots
// connected to channelID.
func countListeners(states []*discordgo.VoiceState, channelID, selfID string, isBot func(userID string) bool) int {
	n := 0
	for _, vs := range states {
		if vs == nil || vs.ChannelID != channelID || vs.UserID == selfID {
			continue
		}
		if isBot != nil && isBot(vs.UserID) {
			continue
		}
		n++
	}
	return n
}
