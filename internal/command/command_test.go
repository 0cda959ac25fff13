package command

import (
	"context"
	"strings"
	"testing"

	"music-board/internal/config"
	"music-board/pkg/cmd"
)

type pingCommand struct{}

func (pingCommand) Name() string        { return "ping" }
func (pingCommand) Description() string { return "Replies pong" }
func (pingCommand) Category() string    { return "Fun" }
func (pingCommand) Usage() string       { return "ping" }

func (pingCommand) Run(ctx context.Context, inv *cmd.Invocation) error { return nil }

func TestHelpListsCommands(t *testing.T) {
	reg := cmd.NewRegistry()
	help := &HelpCommand{Registry: reg, Prefix: "!"}
	reg.Register(help)
	reg.Register(pingCommand{})

	var reply string
	mc := &MessageContext{Reply: func(text string) error {
		reply = text
		return nil
	}}
	if err := help.Run(context.Background(), &cmd.Invocation{Data: mc}); err != nil {
		t.Fatal(err)
	}

	generalAt := strings.Index(reply, "**"+config.CategoryGeneral+"**")
	funAt := strings.Index(reply, "**Fun**")
	if generalAt < 0 || funAt < 0 || generalAt > funAt {
		t.Errorf("categories out of order:\n%s", reply)
	}

	for _, want := range []string{"`!help` List the available commands", "`!ping` Replies pong"} {
		if !strings.Contains(reply, want) {
			t.Errorf("help reply missing %q:\n%s", want, reply)
		}
	}
	if reg.Get("h") == nil {
		t.Error("help alias not registered")
	}
}

func TestFromInvocationIgnoresOtherData(t *testing.T) {
	if _, ok := FromInvocation(&cmd.Invocation{Data: "cli"}); ok {
		t.Error("FromInvocation accepted foreign data")
	}
}
