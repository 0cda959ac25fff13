// Package middleware wraps chat commands with the checks and logging every
// command shares.
package middleware

import (
	"music-board/internal/command"
	"music-board/pkg/cmd"
)

// Defaults returns the middleware chain applied to every chat command,
// innermost first.
func Defaults() []cmd.Middleware {
	return []cmd.Middleware{
		WithErrorReply(),
		WithCommandLogger(),
		WithGuildOnly(),
	}
}

func messageContext(inv *cmd.Invocation) *command.MessageContext {
	mc, _ := command.FromInvocation(inv)
	return mc
}
