package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kindralabs/khub/internal/api"
	"github.com/kindralabs/khub/internal/auth"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a platform session token",
		Long:  "Stores the Kindra API token in the system keyring and verifies it against the platform.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			token := strings.TrimSpace(tokenFlag)
			if token == "" {
				token, err = promptToken()
				if err != nil {
					return err
				}
			}
			if token == "" {
				return errors.New("no token provided")
			}

			// Verify before storing so a typo doesn't wedge later commands.
			client, err := api.NewClient(api.Config{
				BaseURL: cfg.API.BaseURL,
				Token:   api.StaticToken(token),
				Timeout: cfg.API.Timeout,
			})
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), shortTimeout)
			defer cancel()
			if _, err := client.ListNotifications(ctx); err != nil {
				var statusErr *api.StatusError
				if errors.As(err, &statusErr) && (statusErr.Status == 401 || statusErr.Status == 403) {
					return errors.New("token rejected by the platform")
				}
				return fmt.Errorf("verifying token: %w", err)
			}

			if err := auth.SaveToken(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "session token (prompted when omitted)")
	return cmd
}

func promptToken() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal; pass --token or set KHUB_TOKEN")
	}

	var token string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Kindra API token").
			Description("Issued under Account Settings on the platform.").
			EchoMode(huh.EchoModePassword).
			Value(&token),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}
