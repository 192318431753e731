package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kindralabs/khub/internal/events"
	"github.com/kindralabs/khub/internal/models"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow hub activity from the terminal",
		Long:  "Polls the platform and prints a line for each new community message and unread change until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			controller, bus, _, err := buildController(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = bus.Subscribe("watch", events.Filter{
				EventTypes: []models.EventType{
					models.EventTypeMessageArrived,
					models.EventTypeUnreadChanged,
				},
			}, func(event *models.Event) {
				switch event.Type {
				case models.EventTypeMessageArrived:
					snap := controller.Snapshot()
					if len(snap.Messages) == 0 {
						return
					}
					last := snap.Messages[len(snap.Messages)-1]
					fmt.Fprintf(out, "%s  %s: %s\n",
						last.CreatedAt.Local().Format("15:04:05"),
						last.Author.DisplayName(),
						last.Content)
				case models.EventTypeUnreadChanged:
					fmt.Fprintf(out, "unread: %d chat, %d activity\n", event.ChatUnread, event.NotifUnread)
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = bus.Unsubscribe("watch") }()

			if err := controller.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = controller.Stop() }()

			fmt.Fprintf(out, "watching %s (poll every %s, ctrl+c to stop)\n", cfg.API.BaseURL, cfg.Hub.PollInterval)
			<-ctx.Done()
			return nil
		},
	}
}
