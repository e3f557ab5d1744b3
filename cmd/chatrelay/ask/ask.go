package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/chatrelay/pkg/chat"
)

const askLongDesc string = `Send a single prompt to the relay and print the reply.

The prompt is taken from the arguments. With no arguments it is read
from stdin, as long as stdin is not a terminal.

Examples:
  chatrelay ask "Explain HTTP status 429 in one sentence"
  echo "Summarize this" | chatrelay ask
  chatrelay ask --url http://relay.internal:8080/api/chat hello`

const askShortDesc string = "Send one prompt and print the reply"

type askCommander struct {
	url string
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVar(&cmder.url, "url", chat.DefaultEndpoint, "Relay endpoint")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	reply, err := chat.NewClient(c.url).Send(ctx, prompt)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// readPrompt joins args, or reads in when there are none. An interactive
// terminal is never read from, so "chatrelay ask" alone does not hang.
func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no prompt given")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("could not read prompt from stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt given")
	}
	return prompt, nil
}
