// Package command holds what the chat adapter hands to commands and the
// commands that are not tied to a feature.
package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"music-board/internal/config"
	"music-board/internal/music/player"
	"music-board/pkg/cmd"
)

// MessageContext is passed in cmd.Invocation.Data for prefix commands.
type MessageContext struct {
	Request player.Request
	Reply   func(text string) error
	Log     *log.Logger
}

// FromInvocation extracts the message context, if any.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, bool) {
	mc, ok := inv.Data.(*MessageContext)
	return mc, ok && mc != nil
}

// Meta is exposed by chat commands for the help listing.
type Meta interface {
	Category() string
	Usage() string
}

// HelpCommand lists the registered commands.
type HelpCommand struct {
	Registry *cmd.Registry
	Prefix   string
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List the available commands" }
func (c *HelpCommand) Aliases() []string   { return []string{"h"} }
func (c *HelpCommand) Category() string    { return config.CategoryGeneral }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := FromInvocation(inv)
	if !ok {
		return nil
	}

	byCategory := map[string][]string{}
	var categories []string
	for _, sub := range c.Registry.GetAll() {
		category, usage := "Other", sub.Name()
		if m, ok := cmd.Root(sub).(Meta); ok {
			category, usage = m.Category(), m.Usage()
		}
		if _, seen := byCategory[category]; !seen {
			categories = append(categories, category)
		}
		byCategory[category] = append(byCategory[category],
			fmt.Sprintf("`%s%s` %s", c.Prefix, usage, sub.Description()))
	}

	slices.SortStableFunc(categories, func(a, b string) int {
		return config.CategoryWeight(a) - config.CategoryWeight(b)
	})

	var sb strings.Builder
	for i, category := range categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\n%s\n", category, strings.Join(byCategory[category], "\n"))
	}
	return mc.Reply(strings.TrimSpace(sb.String()))
}
