// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"music-board/internal/command"
	"music-board/internal/commands/music"
	"music-board/internal/config"
	"music-board/internal/discord"
	"music-board/internal/logger"
	"music-board/internal/middleware"
	"music-board/internal/music/parsers/kkdai"
	"music-board/internal/music/parsers/ytdlp"
	"music-board/internal/music/player"
	"music-board/internal/music/source_resolver"
	"music-board/internal/music/sources"
	"music-board/internal/music/sources/radio"
	"music-board/internal/music/sources/soundcloud"
	"music-board/internal/music/sources/youtube"
	"music-board/internal/music/stream"
	"music-board/internal/storage"
	"music-board/pkg/cmd"
)

var (
	openStore = storage.Open
	newBot    = discord.New
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", "err", err)
	}

	root := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	root.Info("Starting music bot", "storage", cfg.StorageDriver, "prefix", cfg.CommandPrefix)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, root); err != nil {
		root.Error("Music bot stopped", "err", err)
		cancel()
		os.Exit(1)
	}
	root.Info("Bye")
}

// run wires the bot and blocks until ctx is done. Everything it opens is
// closed before it returns.
func run(ctx context.Context, cfg *config.Config, root *log.Logger) error {
	store, err := openStore(cfg.StorageDriver, cfg.StoragePath, logger.Component(root, "storage"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			root.Warn("Failed to close storage", "err", err)
		}
	}()

	resolver := newResolver(cfg, root)

	bot, err := newBot(cfg, logger.Component(root, "discord"))
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	playerCfg := player.DefaultConfig()
	playerCfg.DisconnectTimeout = cfg.DisconnectTimeout()
	playerCfg.AloneDisconnectTimeout = cfg.AloneDisconnectTimeout()
	playerCfg.ResolveTimeout = cfg.ResolveTimeout()
	playerCfg.DefaultVolume = cfg.DefaultVolume

	engine := player.New(
		playerCfg,
		resolver,
		stream.NewJoiner(bot.Session(), logger.Component(root, "voice")),
		store,
		discord.NewNotifier(bot.Session()),
		logger.Component(root, "player"),
	)

	registry := cmd.NewRegistry()
	mws := middleware.Defaults()
	registry.Register(cmd.Apply(&command.HelpCommand{Registry: registry, Prefix: cfg.CommandPrefix}, mws...))
	music.Register(registry, engine, mws...)
	bot.Attach(registry, engine)

	runErr := bot.Run(ctx)

	engine.Close()
	if err := bot.Close(); err != nil {
		root.Warn("Failed to close Discord session", "err", err)
	}
	return runErr
}

// newResolver builds the providers in priority order. YouTube also serves
// plain search terms.
func newResolver(cfg *config.Config, root *log.Logger) *source_resolver.SourceResolver {
	yt := youtube.New(
		kkdai.NewClient(cfg.YouTubeProxy, logger.Component(root, "kkdai")),
		logger.Component(root, "youtube"),
	)
	sc := soundcloud.New(ytdlp.New(cfg.YouTubeProxy, logger.Component(root, "ytdlp")))
	rd := radio.New()

	srcs := []sources.Source{yt, sc, rd}
	for _, s := range srcs {
		root.Debug("Registered source", "name", s.SourceName())
	}
	return source_resolver.New(yt, srcs...)
}
