package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindralabs/khub/internal/models"
)

func newNotifyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Inspect and acknowledge notifications",
	}
	cmd.AddCommand(newNotifyListCmd(opts), newNotifyReadCmd(opts))
	return cmd
}

func newNotifyListCmd(opts *rootOptions) *cobra.Command {
	var unreadOnly bool
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
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
			notifications, err := client.ListNotifications(ctx)
			if err != nil {
				return err
			}

			filter := models.ParseCategory(category)
			out := cmd.OutOrStdout()
			shown := 0
			for _, n := range notifications {
				if unreadOnly && n.Read {
					continue
				}
				if category != "" && n.Category != filter {
					continue
				}
				marker := " "
				if !n.Read {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-10s %-36s %s\n", marker, n.Category, n.ID, n.Title)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "No notifications.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}

func newNotifyReadCmd(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "read [id...]",
		Short: "Mark notifications as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("pass notification ids or --all")
			}

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

			ids := args
			if all {
				notifications, err := client.ListNotifications(ctx)
				if err != nil {
					return err
				}
				ids = ids[:0]
				for _, n := range notifications {
					if !n.Read {
						ids = append(ids, n.ID)
					}
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing unread.")
				return nil
			}

			if err := client.MarkNotificationsRead(ctx, ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d read.\n", len(ids))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "mark every unread notification")
	return cmd
}
