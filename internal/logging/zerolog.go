package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger. Key–value args are added
// as fields; a dangling key is logged under "!BADKEY" like slog does.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// NewZerologLoggerFor builds a timestamped zerolog logger writing to w.
func NewZerologLoggerFor(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return NewZerologLogger(zerolog.New(w).With().Timestamp().Logger().Level(lvl))
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Debug(), msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Info(), msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Warn(), msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Error(), msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		c = c.Interface(key, val)
	}
	return &ZerologLogger{l: c.Logger()}
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		if err, ok := val.(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, val)
	}
	e.Msg(msg)
}

func pair(args []any, i int) (string, any) {
	if i+1 >= len(args) {
		return "!BADKEY", args[i]
	}
	key, ok := args[i].(string)
	if !ok {
		key = fmt.Sprint(args[i])
	}
	return key, args[i+1]
}
