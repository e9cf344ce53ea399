package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options mirrors the log section of the configuration.
type Options struct {
	// Out defaults to stderr.
	Out   io.Writer
	Level string
	// JSON writes one object per line; otherwise a human readable console
	// format is used.
	JSON bool
}

// ZerologAdapter implements Logger on a zerolog.Logger.
type ZerologAdapter struct {
	zl zerolog.Logger
}

func New(opts Options) *ZerologAdapter {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	return &ZerologAdapter{
		zl: zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger(),
	}
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.write(z.zl.Debug(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.write(z.zl.Info(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.write(z.zl.Warn(), component, fields).Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	z.write(z.zl.Error().Err(err), component, fields).Msg(component + " failed")
}

func (z *ZerologAdapter) write(e *zerolog.Event, component string, fields map[string]interface{}) *zerolog.Event {
	return e.Str("component", component).Fields(fields)
}

// Slog bridges the adapter into libraries that only accept *slog.Logger.
func (z *ZerologAdapter) Slog() *slog.Logger {
	return slog.New(slog.NewTextHandler(z.zl, &slog.HandlerOptions{
		Level: slogLevel(z.zl.GetLevel()),
	}))
}

func slogLevel(level zerolog.Level) slog.Level {
	switch level {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return slog.LevelDebug
	case zerolog.WarnLevel:
		return slog.LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
