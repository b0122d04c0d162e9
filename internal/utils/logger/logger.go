package logger

import (
	"context"
	"encoding/json"
	stdlog "log"
	"os"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"

	"fieldreport/internal/app/server/config"
)

// New возвращает логгер, настроенный под окружение.
func New(env string) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return setupPrettySlog()
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return setupPrettySlog()
	}
}

// NewLogger is kept for the server entrypoint.
func NewLogger(env string) *slog.Logger {
	return New(env)
}

func setupPrettySlog() *slog.Logger {
	return slog.New(newPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}))
}

// prettyHandler печатает цветные строки для локальной разработки.
type prettyHandler struct {
	opts  *slog.HandlerOptions
	log   *stdlog.Logger
	attrs []slog.Attr
}

func newPrettyHandler(opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts: opts,
		log:  stdlog.New(os.Stdout, "", 0),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts != nil && h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.CyanString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	var fieldsStr string
	if len(fields) > 0 {
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fieldsStr = color.WhiteString(string(b))
	}

	timeStr := r.Time.Format("15:04:05.000")
	msg := color.New(color.Bold).Sprint(r.Message)

	h.log.Println(timeStr, level, msg, fieldsStr)
	return nil
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyHandler{
		opts:  h.opts,
		log:   h.log,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *prettyHandler) WithGroup(_ string) slog.Handler {
	// Groups are flattened in local output.
	return h
}
