package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/kindralabs/khub/internal/api"
	"github.com/kindralabs/khub/internal/hub"
	"github.com/kindralabs/khub/internal/models"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		message string
		private bool
		to      string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Post a message to the community chat",
		Long:  "Posts a message to the community chat. Without flags an interactive form is shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), shortTimeout)
			defer cancel()

			if message == "" {
				message, private, to, err = promptSend(ctx, client)
				if err != nil {
					return err
				}
			}

			recipientID := ""
			if private {
				recipientID, err = resolveRecipientArg(ctx, client, to)
				if err != nil {
					return err
				}
			}

			if err := hub.ValidateSend(message, private, recipientID); err != nil {
				return err
			}

			created, err := client.SendMessage(ctx, api.SendMessageRequest{
				Content:   message,
				Recipient: recipientID,
				IsPrivate: private,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d.\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "message content")
	cmd.Flags().BoolVar(&private, "private", false, "send as a private message")
	cmd.Flags().StringVar(&to, "to", "", "recipient id or username for a private message")
	return cmd
}

// resolveRecipientArg accepts either a recipient id or a username.
func resolveRecipientArg(ctx context.Context, client *api.Client, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", hub.ErrRecipientRequired
	}

	users, err := client.ListRecipients(ctx)
	if err != nil {
		return "", fmt.Errorf("list recipients: %w", err)
	}
	if _, ok := hub.ResolveRecipient(users, arg); ok {
		return arg, nil
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, arg) {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("unknown recipient %q", arg)
}

func promptSend(ctx context.Context, client *api.Client) (message string, private bool, to string, err error) {
	users, err := client.ListRecipients(ctx)
	if err != nil {
		return "", false, "", fmt.Errorf("list recipients: %w", err)
	}

	recipientOptions := make([]huh.Option[string], 0, len(users))
	for _, u := range users {
		recipientOptions = append(recipientOptions, huh.NewOption(displayRecipient(u), u.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Message").
				CharLimit(2000).
				Value(&message),
			huh.NewConfirm().
				Title("Private message?").
				Value(&private),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Recipient").
				Options(recipientOptions...).
				Value(&to),
		).WithHideFunc(func() bool { return !private }),
	)
	if err := form.Run(); err != nil {
		return "", false, "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", false, "", errors.New("empty message")
	}
	return message, private, to, nil
}

func displayRecipient(u models.UserRef) string {
	name := u.DisplayName()
	if name != u.Username && u.Username != "" {
		return fmt.Sprintf("%s (%s)", name, u.Username)
	}
	return name
}
