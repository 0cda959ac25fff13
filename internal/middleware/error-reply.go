package middleware

import (
	"context"
	"errors"

	"music-board/internal/music/player"
	"music-board/pkg/cmd"
)

// WithErrorReply turns a command error into a chat reply. User errors are
// consumed; anything else is still returned so it gets logged.
func WithErrorReply() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			if err == nil {
				return nil
			}

			mc := messageContext(inv)
			if mc == nil || mc.Reply == nil {
				return err
			}
			if rerr := mc.Reply(player.UserMessage(err)); rerr != nil && mc.Log != nil {
				mc.Log.Warn("Failed to send error reply", "err", rerr)
			}

			var userErr *player.UserError
			if errors.As(err, &userErr) {
				return nil
			}
			return err
		})
	}
}
