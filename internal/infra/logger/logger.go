package logger

import (
	"os"
	"strings"

	"coop_shift_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

const serviceName = "coopnotify"

// Log is shared by every command; components log through Component entries.
var Log = logrus.New()

// Init applies LOG_LEVEL and ENVIRONMENT. Deployed environments get JSON
// lines for log shipping, local runs get readable text.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, ok := levelFor(cfg.LogLevel)
	Log.SetLevel(level)
	if !ok {
		Log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	Log.SetFormatter(formatterFor(cfg.Environment))
	Log.WithFields(logrus.Fields{"level": Log.GetLevel().String(), "environment": cfg.Environment}).
		Debug("Logger configured")
}

// levelFor parses a level name; unknown names fall back to info.
func levelFor(name string) (logrus.Level, bool) {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return logrus.InfoLevel, false
	}
	return level, true
}

func formatterFor(environment string) logrus.Formatter {
	switch strings.ToLower(environment) {
	case "production", "staging":
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	default:
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	}
}

// Component returns the entry a service or adapter logs through. Cycle code
// adds cycle_id on top of it.
func Component(name string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{"service": serviceName, "component": name})
}
