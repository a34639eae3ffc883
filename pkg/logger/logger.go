package logger

import (
  "os"

  "github.com/seatradar/seatradar/pkg/env"
  log "github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger: JSON with caller
// reporting in production, plain text for local runs. The level comes
// from LOG_LEVEL when set.
func Init() {
  if env.IsProduction() {
    log.SetFormatter(&log.JSONFormatter{})
    log.SetReportCaller(true)
  } else {
    log.SetFormatter(&log.TextFormatter{
      FullTimestamp: true,
    })
  }

  log.SetLevel(logLevel())
}

func logLevel() log.Level {
  raw := os.Getenv("LOG_LEVEL")
  if raw == "" {
    return log.InfoLevel
  }

  level, err := log.ParseLevel(raw)
  if err != nil {
    log.Warnf("logger: unknown LOG_LEVEL %q, falling back to info", raw)
    return log.InfoLevel
  }

  return level
}
