package middleware

import (
	"context"

	"music-board/pkg/cmd"
)

// WithGuildOnly drops commands sent outside a guild, e.g. in DMs.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if mc := messageContext(inv); mc != nil && mc.Request.GuildID == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
