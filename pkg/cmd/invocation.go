// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is dispatched
// (Discord messages, CLI) is defined by adapters that wrap this.
package cmd

import (
	"context"
	"strings"
)

// Invocation carries the minimal input any command runner can pass: arguments
// and an opaque payload. Adapters set Data to their context.
type Invocation struct {
	Args []string
	Data interface{}
}

// Command is the universal contract: identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Parse splits a prefixed chat message into a lower-cased command name and
// its arguments. ok is false when content does not start with prefix.
func Parse(prefix, content string) (name string, args []string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}
