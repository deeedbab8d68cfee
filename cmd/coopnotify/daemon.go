package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coop_shift_notifier/internal/infra/config"
	"coop_shift_notifier/internal/infra/coop"
	"coop_shift_notifier/internal/infra/email"
	"coop_shift_notifier/internal/infra/logger"
	"coop_shift_notifier/internal/infra/metrics"
	"coop_shift_notifier/internal/infra/scheduler"
	"coop_shift_notifier/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 10 * time.Second

// newCatalogSource wires session, extractor and fetcher into one catalog source.
func newCatalogSource(cfg *config.AppConfig, creds coop.Credentials) (*coop.Source, error) {
	session, err := coop.NewSession(cfg.CoopBaseURL, creds, cfg.FetchTimeout, logger.Component("session"))
	if err != nil {
		return nil, err
	}
	fetcher, err := coop.NewFetcher(coop.FetcherOptions{
		BaseURL:           cfg.CoopBaseURL,
		WindowBlocks:      cfg.FetchWindowBlocks,
		Timeout:           cfg.FetchTimeout,
		RequestsPerSecond: cfg.FetchRequestsPerSecond,
	}, coop.NewExtractor(logger.Component("extractor")), logger.Component("fetcher"))
	if err != nil {
		return nil, err
	}
	return coop.NewSource(fetcher, session), nil
}

func newSMTPDialer(cfg *config.AppConfig) *gomail.Dialer {
	return email.NewDialer(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
}

// daemon owns the long-running pieces shared by the scheduled commands:
// signal handling, metrics and the cron scheduler.
type daemon struct {
	ctx     context.Context
	stop    context.CancelFunc
	metrics *metrics.Metrics
	server  *metrics.Server
	log     *logrus.Entry
}

func newDaemon(cfg *config.AppConfig) *daemon {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt := &daemon{
		ctx:     ctx,
		stop:    stop,
		metrics: metrics.New(reg),
		log:     logger.Component("main"),
	}
	if cfg.MetricsAddr != "" {
		rt.server = metrics.NewServer(cfg.MetricsAddr, reg, logger.Component("metrics"))
		rt.server.Start()
	}
	return rt
}

// runScheduled runs one cycle immediately, then on spec until SIGINT/SIGTERM.
func (rt *daemon) runScheduled(name, spec string, timeout time.Duration, run scheduler.CycleFunc) error {
	sched := scheduler.NewShiftScheduler(logger.Component("scheduler"))
	if err := sched.AddCycle(name, spec, timeout, run); err != nil {
		return err
	}

	firstCtx, cancel := context.WithTimeout(rt.ctx, timeout)
	if err := run(firstCtx); err != nil {
		rt.log.WithError(err).WithField("job", name).Error("Initial cycle failed")
	}
	cancel()

	sched.Start()
	rt.log.Info("Application setup complete. Scheduler is running.")

	<-rt.ctx.Done()
	rt.log.Info("Shutting down application...")
	sched.Stop()
	return nil
}

func (rt *daemon) close() {
	rt.stop()
	if rt.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.server.Shutdown(ctx); err != nil {
		rt.log.WithError(err).Warn("Metrics server did not shut down cleanly")
	}
	rt.log.Info("Application shut down gracefully.")
}

// telegramRuntime is the bot used both for alerts and operator commands.
type telegramRuntime struct {
	bot    *telebot.Bot
	client *telegram.TelebotAdapter
}

func newTelegramRuntime(cfg *config.AppConfig) (*telegramRuntime, error) {
	bot, err := telegram.NewBot(cfg.TelegramToken, true, logger.Component("telegram"))
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return &telegramRuntime{bot: bot, client: telegram.NewTelebotAdapter(bot)}, nil
}

// start polls for commands in the background so it does not block shutdown handling.
func (t *telegramRuntime) start() {
	go t.bot.Start()
}

func (t *telegramRuntime) stop() {
	t.bot.Stop()
}
