package chatcmder

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatrelay/pkg/chat"
	"github.com/papercomputeco/chatrelay/pkg/tui"
)

const chatLongDesc string = `Open an interactive chat against a running relay.

Each prompt is posted to the relay as {"prompt": "..."} and the reply is
appended to the conversation. The conversation lives only as long as the
session.

Examples:
  chatrelay chat
  chatrelay chat --url http://relay.internal:8080/api/chat`

const chatShortDesc string = "Chat with the relay interactively"

type chatCommander struct {
	url   string
	plain bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.url, "url", chat.DefaultEndpoint, "Relay endpoint")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Show replies as plain text instead of rendered markdown")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	var opts []tui.Option
	if !c.plain {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return fmt.Errorf("could not create markdown renderer: %w", err)
		}
		opts = append(opts, tui.WithRenderer(renderer))
	}

	model := tui.NewModel(cmd.Context(), chat.NewClient(c.url), opts...)

	program := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}

	return nil
}
