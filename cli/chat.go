package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/chatops/apiserver"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		serverAddr string
		chatID     string
		userID     string
		scope      string
	)

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a prompt to a running chatops server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := apiserver.ChatRequest{
				ChatID: chatID,
				UserID: userID,
				Scope:  scope,
				Prompt: strings.Join(args, " "),
			}
			body, err := json.Marshal(req)
			if err != nil {
				return errors.WithStack(err)
			}

			resp, err := http.Post(serverAddr+"/v1/chat", "application/json", bytes.NewReader(body))
			if err != nil {
				return errors.WithMessage(err, "failed to reach server")
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return errors.WithStack(err)
			}
			if resp.StatusCode != http.StatusOK {
				return errors.Newf("server returned %s: %s", resp.Status, string(data))
			}

			var chatResp apiserver.ChatResponse
			if err := json.Unmarshal(data, &chatResp); err != nil {
				return errors.WithStack(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n%s\n", chatResp.ChatID, chatResp.Reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAddr, "server", "http://127.0.0.1:8080", "chatops server address")
	cmd.Flags().StringVar(&chatID, "chat", "", "chat ID to continue; empty starts a new chat")
	cmd.Flags().StringVar(&userID, "user", "", "requesting user identity")
	cmd.Flags().StringVar(&scope, "scope", "read", "session scope: read|write")

	return cmd
}
