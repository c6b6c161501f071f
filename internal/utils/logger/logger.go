package logger

import (
	"os"
	"strings"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/server/config"
	"coursekeeper/internal/utils/logger/slogpretty"
)

// New создает логгер под окружение: local - цветной вывод, dev/prod - JSON.
func New(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog()
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

// WithLevel пересоздает JSON логгер с уровнем из LOG_LEVEL. Для local не меняет ничего.
func WithLevel(env, level string) *slog.Logger {
	if env == config.EnvLocal || env == "" || level == "" {
		return New(env)
	}
	return slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)}),
	)
}

// ParseLevel понимает debug, info, warn, error. Остальное - info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewCLI пишет в stderr, чтобы не мешать выводу команд: с debug - цветной
// вывод от DEBUG, иначе только WARN и выше.
func NewCLI(debug bool) *slog.Logger {
	if debug {
		opts := slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		return slog.New(opts.NewPrettyHandler(os.Stderr))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
