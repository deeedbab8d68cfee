package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"coop_shift_notifier/internal/app"
	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/infra/config"
	"coop_shift_notifier/internal/infra/coop"
	idb "coop_shift_notifier/internal/infra/database"
	"coop_shift_notifier/internal/infra/email"
	"coop_shift_notifier/internal/infra/logger"
	"coop_shift_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type configFunc func() *config.AppConfig

func monitorCmd(getCfg configFunc) *cobra.Command {
	var (
		shiftQuery string
		keyword    string
		once       bool
	)
	cmd := &cobra.Command{
		Use:   "monitor [username password]",
		Short: "Alert once when shifts of one type open up, and again after they were gone",
		Args:  credentialArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getCfg()
			log := logger.Component("monitor")

			committee, ok := coop.LookupCommittee(shiftQuery)
			if !ok {
				return fmt.Errorf("unknown shift type %q: run 'coopnotify committees' for the list", shiftQuery)
			}
			creds := credentialsFrom(cfg, args)

			source, err := newCatalogSource(cfg, creds)
			if err != nil {
				return err
			}
			target := app.MonitorTarget{CommitteeID: committee.ID, Name: committee.Name, Keyword: keyword}

			if once {
				svc := app.NewMonitorService(source, target, nil, nil, log)
				catalog, err := svc.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), catalog)
			}

			if err := cfg.ValidateMonitor(); err != nil {
				return err
			}
			rt := newDaemon(cfg)
			defer rt.close()

			var sinks []notification.AlertSink
			if cfg.SMTPConfigured() {
				sinks = append(sinks, email.NewNotifier(newSMTPDialer(cfg), cfg.FromEmail, cfg.AlertEmail, logger.Component("email")))
			}
			var tg *telegramRuntime
			if cfg.TelegramConfigured() {
				tg, err = newTelegramRuntime(cfg)
				if err != nil {
					return err
				}
				sinks = append(sinks, telegram.NewAlertNotifier(tg.client, cfg.TelegramChatID, logger.Component("telegram")))
			}

			svc := app.NewMonitorService(source, target, sinks, rt.metrics, log)
			if tg != nil {
				telegram.RegisterBotCommands(rt.ctx, tg.bot, cfg.TelegramChatID, committee.Name, svc.Snapshot, logger.Component("telegram"))
				tg.start()
				defer tg.stop()
			}

			log.WithFields(logrus.Fields{
				"committee_id": committee.ID,
				"shift":        committee.Name,
				"channels":     len(sinks),
			}).Info("Monitoring shift type")
			return rt.runScheduled("monitor", cfg.CronSpecMonitor, cfg.CycleTimeout, svc.RunCycle)
		},
	}
	cmd.Flags().StringVar(&shiftQuery, "shift", "", "shift type to watch: committee ID, name or alias (default all committees)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "only count shifts whose description contains this text")
	cmd.Flags().BoolVar(&once, "once", false, "fetch once, print the catalog as JSON and exit without alerting")
	return cmd
}

func checkCmd(getCfg configFunc) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Match every active member preference against open shifts and email new matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getCfg()
			log := logger.Component("shift_check")

			if once {
				if cfg.DatabaseURL == "" {
					return fmt.Errorf("DATABASE_URL is not set")
				}
			} else if err := cfg.ValidateCheck(); err != nil {
				return err
			}

			source, err := newCatalogSource(cfg, coop.Credentials{Username: cfg.CoopUsername, Password: cfg.CoopPassword})
			if err != nil {
				return err
			}
			db, err := idb.NewPostgresConnection(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer db.Close()
			log.Info("Database connection established successfully.")
			prefRepo := idb.NewPostgresPreferenceRepository(db, logger.Component("preferences"))

			if once {
				svc := app.NewShiftCheckServiceImpl(prefRepo, source, nil, coop.AllCommitteesID, nil, log)
				report, err := svc.Preview(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			}

			rt := newDaemon(cfg)
			defer rt.close()
			notifier := email.NewNotifier(newSMTPDialer(cfg), cfg.FromEmail, cfg.AlertEmail, logger.Component("email"))
			svc := app.NewShiftCheckServiceImpl(prefRepo, source, notifier, coop.AllCommitteesID, rt.metrics, log)

			return rt.runScheduled("check", cfg.CronSpecCheck, cfg.CycleTimeout, func(ctx context.Context) error {
				_, err := svc.RunCycle(ctx)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "fetch and match once, print the report as JSON and exit without sending email")
	return cmd
}

func committeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "committees",
		Short: "List the shift types (committees) accepted by --shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCommittees(cmd.OutOrStdout(), coop.Committees)
		},
	}
}

// credentialArgs accepts either no credentials (taken from the environment)
// or both username and password.
func credentialArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || len(args) == 2 {
		return nil
	}
	return fmt.Errorf("expected username and password, or neither; got %d argument(s)", len(args))
}

func credentialsFrom(cfg *config.AppConfig, args []string) coop.Credentials {
	if len(args) == 2 {
		return coop.Credentials{Username: args[0], Password: args[1]}
	}
	return coop.Credentials{Username: cfg.CoopUsername, Password: cfg.CoopPassword}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCommittees(w io.Writer, committees []coop.Committee) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNOTE")
	for _, c := range committees {
		note := ""
		if c.Restricted {
			note = "training required"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, note)
	}
	return tw.Flush()
}
