package middleware

import (
	"context"
	"time"

	"music-board/pkg/cmd"
)

// WithCommandLogger logs every command execution with its outcome.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			mc := messageContext(inv)
			if mc == nil || mc.Log == nil {
				return err
			}
			kv := []interface{}{
				"command", c.Name(),
				"guild", mc.Request.GuildID,
				"user", mc.Request.UserID,
				"took", time.Since(start).Round(time.Millisecond),
			}
			if err != nil {
				mc.Log.Warn("Command failed", append(kv, "err", err)...)
			} else {
				mc.Log.Debug("Command done", kv...)
			}
			return err
		})
	}
}
