package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"facecam/internal/config"
)

// Setup configures the standard logrus logger from cfg. Output always goes
// to stderr; when cfg.File is set it is also written to a rotating file.
func Setup(cfg config.LogConfig) {
	SetupLogger(log.StandardLogger(), cfg, os.Stderr)
}

func SetupLogger(logger *log.Logger, cfg config.LogConfig, stderr io.Writer) {
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var out io.Writer = stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			logger.SetOutput(stderr)
			logger.WithError(err).Warn("failed to create log directory, logging to stderr only")
		} else {
			out = io.MultiWriter(stderr, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    10, // MB
				MaxBackups: 2,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
	}
	logger.SetOutput(out)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(log.InfoLevel)
		logger.Warnf("unknown log level %q, falling back to info", cfg.Level)
		return
	}
	logger.SetLevel(level)
}
