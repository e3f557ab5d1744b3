package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/chatrelay/cmd/chatrelay/ask"
	chatcmder "github.com/papercomputeco/chatrelay/cmd/chatrelay/chat"
	servecmder "github.com/papercomputeco/chatrelay/cmd/chatrelay/serve"
)

const rootLongDesc string = `chatrelay relays chat requests to an AI completion API while keeping
the API key on the server.

Run "chatrelay serve" to start the relay, then talk to it with
"chatrelay chat" or "chatrelay ask".`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatrelay",
		Short:        "Server-side relay for AI chat completions",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
