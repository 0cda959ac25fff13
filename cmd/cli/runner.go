package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"music-board/internal/config"
	"music-board/internal/logger"
	"music-board/internal/storage"
	"music-board/pkg/util"
)

const dateTpl = "YYYY-MM-DD hh:mm"

type RunnerOpts struct {
	Config *config.Config
	Logger *log.Logger
	Output io.Writer
}

// Runner holds what the settings commands share.
type Runner struct {
	cfg    *config.Config
	logger *log.Logger
	output io.Writer
	store  storage.Store
}

func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{cfg: opts.Config, logger: opts.Logger, output: opts.Output}
	if r.cfg == nil {
		r.cfg = &config.Config{StorageDriver: config.StorageJSON, StoragePath: "datastore.json"}
	}
	if r.logger == nil {
		r.logger = logger.Discard()
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	return r
}

func (r *Runner) App() *cli.Command {
	keyFlags := []cli.Flag{
		&cli.StringFlag{Name: "guild", Aliases: []string{"g"}, Usage: "Guild ID", Required: true},
		&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "Text channel ID", Required: true},
	}

	return &cli.Command{
		Name:  "music-cli",
		Usage: "Inspect and edit the music settings store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "driver", Usage: "Storage driver (json or sqlite)", Value: r.cfg.StorageDriver},
			&cli.StringFlag{Name: "path", Usage: "Storage file path", Value: r.cfg.StoragePath},
		},
		Before: r.open,
		After:  r.close,
		Commands: []*cli.Command{
			{
				Name:  "settings",
				Usage: "Per channel music settings",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List every stored setting",
						Action: r.List,
					},
					{
						Name:   "show",
						Usage:  "Show the setting of one channel",
						Flags:  keyFlags,
						Action: r.Show,
					},
					{
						Name:  "set-volume",
						Usage: "Set the volume used the next time the bot joins",
						Flags: append([]cli.Flag{
							&cli.IntFlag{Name: "volume", Aliases: []string{"v"}, Usage: "Volume level", Required: true},
						}, keyFlags...),
						Action: r.SetVolume,
					},
					{
						Name:   "reset",
						Usage:  "Forget the setting of one channel",
						Flags:  keyFlags,
						Action: r.Reset,
					},
				},
			},
		},
	}
}

func (r *Runner) open(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	store, err := storage.Open(cmd.String("driver"), cmd.String("path"), r.logger)
	if err != nil {
		return ctx, fmt.Errorf("failed to open storage: %w", err)
	}
	r.store = store
	return ctx, nil
}

func (r *Runner) close(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}

func key(cmd *cli.Command) storage.Key {
	return storage.Key{GuildID: cmd.String("guild"), ChannelID: cmd.String("channel")}
}

// List prints every stored setting as a table.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.store.MusicSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list settings: %w", err)
	}
	if len(settings) == 0 {
		fmt.Fprintln(r.output, "No settings stored.")
		return nil
	}

	tw := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GUILD\tCHANNEL\tVOLUME\tPLAYED\tLAST SONG\tUPDATED")
	for _, s := range settings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			s.GuildID, s.ChannelID, volumeString(s.Volume), s.SongsPlayed, s.LastSongPlayed,
			util.FormatDateTpl(s.UpdatedAt, dateTpl))
	}
	return tw.Flush()
}

func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	s, err := r.store.MusicSetting(ctx, key(cmd))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no setting stored for %s", key(cmd))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(r.output, "Guild:        %s\n", s.GuildID)
	fmt.Fprintf(r.output, "Channel:      %s\n", s.ChannelID)
	fmt.Fprintf(r.output, "Volume:       %s\n", volumeString(s.Volume))
	fmt.Fprintf(r.output, "Songs played: %d\n", s.SongsPlayed)
	fmt.Fprintf(r.output, "Last song:    %s\n", s.LastSongPlayed)
	fmt.Fprintf(r.output, "Updated:      %s\n", util.FormatDateTpl(s.UpdatedAt, dateTpl))
	return nil
}

func (r *Runner) SetVolume(ctx context.Context, cmd *cli.Command) error {
	level := cmd.Int("volume")
	if level < 0 {
		return fmt.Errorf("volume must not be negative, got %d", level)
	}
	if err := r.store.UpdateMany(ctx, key(cmd), storage.MusicUpdate{Volume: &level}); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	r.logger.Info("Volume updated", "key", key(cmd).String(), "volume", level)
	fmt.Fprintf(r.output, "Volume for %s set to %d\n", key(cmd), level)
	return nil
}

func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.DeleteMusicSetting(ctx, key(cmd)); err != nil {
		return fmt.Errorf("failed to reset setting: %w", err)
	}
	fmt.Fprintf(r.output, "Setting for %s removed\n", key(cmd))
	return nil
}

func volumeString(v *int) string {
	if v == nil {
		return "default"
	}
	return strconv.Itoa(*v)
}
