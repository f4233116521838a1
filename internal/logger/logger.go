package logger

import (
    "os"
    "time"

    "github.com/mattn/go-isatty"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    "gopkg.in/natefinch/lumberjack.v2"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
)

// New builds the process logger. Dev gets a console writer with colors when
// stdout is a terminal; everything else gets JSON. When cfg.LogFile is set a
// rotating file sink is added alongside.
func New(cfg config.Config) zerolog.Logger {
    zerolog.TimeFieldFormat = time.RFC3339

    var out zerolog.LevelWriter
    if cfg.AppEnv == "dev" {
        isTerminal := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
        out = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{
            Out:        os.Stdout,
            TimeFormat: time.RFC3339,
            NoColor:    !isTerminal,
        })
    } else {
        out = zerolog.MultiLevelWriter(os.Stdout)
    }

    if cfg.LogFile != "" {
        out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
            Filename:   cfg.LogFile,
            MaxSize:    50, // MB
            MaxBackups: 5,
            MaxAge:     30, // days
            Compress:   true,
        })
    }

    logger := zerolog.New(out).With().Timestamp().Logger()
    log.Logger = logger
    return logger
}
