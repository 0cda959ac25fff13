package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"music-board/internal/config"
	"music-board/pkg/cmd"
)

// MusicEngine is what the adapter needs from the music engine to track who
// is listening.
type MusicEngine interface {
	VoiceChannel(guildID string) (string, bool)
	StartAloneTimeout(guildID string)
	StopAloneTimeout(guildID string)
}

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	log      *log.Logger
	registry *cmd.Registry
	engine   MusicEngine

	ctx context.Context

	mu    sync.Mutex
	alone map[string]bool
}

// New creates the Discord session. Handlers are added by Attach and the
// gateway is opened by Run.
func New(cfg *config.Config, logger *log.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	return &Bot{
		dg:    dg,
		cfg:   cfg,
		log:   logger,
		ctx:   context.Background(),
		alone: make(map[string]bool),
	}, nil
}

// Session exposes the discordgo session to the voice and notifier adapters.
func (b *Bot) Session() *discordgo.Session {
	return b.dg
}

// Attach wires the command registry and the music engine into the event
// handlers.
func (b *Bot) Attach(registry *cmd.Registry, engine MusicEngine) {
	b.registry = registry
	b.engine = engine

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onVoiceStateUpdate)
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info("Shutdown signal received, closing Discord session")
	return nil
}

// Close closes the gateway connection.
func (b *Bot) Close() error {
	return b.dg.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("Discord bot is running", "user", r.User.Username, "guilds", len(r.Guilds), "prefix", b.cfg.CommandPrefix)
}
