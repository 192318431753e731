// Package cli implements the khub command tree.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kindralabs/khub/internal/api"
	"github.com/kindralabs/khub/internal/auth"
	"github.com/kindralabs/khub/internal/config"
	"github.com/kindralabs/khub/internal/events"
	"github.com/kindralabs/khub/internal/hub"
	"github.com/kindralabs/khub/internal/hubtui"
	"github.com/kindralabs/khub/internal/logging"
	"github.com/kindralabs/khub/internal/models"
)

type rootOptions struct {
	configFile string
	baseURL    string
	logLevel   string
}

// Execute runs the khub command tree.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "khub",
		Short:         "Kindra Community Hub terminal client",
		Long:          "khub keeps the Kindra community chat and activity feed in sync in your terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			controller, _, focus, err := buildController(cfg)
			if err != nil {
				return err
			}
			tuiCfg := hubtui.Config{
				Theme:          cfg.TUI.Theme,
				ShowTimestamps: cfg.TUI.ShowTimestamps,
			}
			return hubtui.Run(cmd.Context(), tuiCfg, controller, focus)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "platform API root override")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(),
		newSendCmd(opts),
		newDeleteCmd(opts),
		newWatchCmd(opts),
		newNotifyCmd(opts),
	)
	return cmd
}

// loadConfig resolves configuration and re-initializes logging from it.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configFile != "" {
		cfg, err = config.LoadFromFile(o.configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if o.baseURL != "" {
		cfg.API.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return cfg, nil
}

// newAPIClient builds the platform client with the stored session token.
func newAPIClient(cfg *config.Config) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   auth.Token,
		Timeout: cfg.API.Timeout,
	})
}

// buildController assembles the hub engine: API client, event bus, focus
// tracker, controller.
func buildController(cfg *config.Config) (*hub.Controller, *events.InMemoryPublisher, *hub.FocusTracker, error) {
	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	bus := events.NewInMemoryPublisher()
	focus := hub.NewFocusTracker()

	controller := hub.NewController(hub.ControllerConfig{
		PollInterval:         cfg.Hub.PollInterval,
		ContentPreviewLength: cfg.Hub.ContentPreviewLength,
		Role:                 models.Role(cfg.API.Role),
	}, client, bus, focus)

	return controller, bus, focus, nil
}

// shortTimeout bounds one-shot CLI requests.
const shortTimeout = 30 * time.Second
