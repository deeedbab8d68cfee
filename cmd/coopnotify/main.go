// Command coopnotify watches the food coop shift calendar and notifies
// members when shifts they want open up.
//
// Usage:
//
//	coopnotify monitor [username password] --shift Checkout
//	coopnotify check
//	coopnotify check --once
//	coopnotify committees
package main

import (
	"context"
	"os"

	"coop_shift_notifier/internal/infra/config"
	"coop_shift_notifier/internal/infra/logger"

	"github.com/spf13/cobra"
)

func main() {
	var cfg *config.AppConfig

	root := &cobra.Command{
		Use:           "coopnotify",
		Short:         "Food coop shift notifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg)
			return nil
		},
	}

	// Commands read cfg lazily: it is only set once PersistentPreRunE has run.
	getCfg := func() *config.AppConfig { return cfg }
	root.AddCommand(monitorCmd(getCfg))
	root.AddCommand(checkCmd(getCfg))
	root.AddCommand(committeesCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Log.WithError(err).Error("coopnotify failed")
		os.Exit(1)
	}
}
