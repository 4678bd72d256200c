package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Interface -.
type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message interface{}, args ...interface{})
	Warn(message interface{}, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
}

// Logger -.
type Logger struct {
	logger *zerolog.Logger
}

var _ Interface = (*Logger)(nil)

// Format selects the output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// New - console logger on stdout
func New(level string) *Logger {
	return NewWithWriter(level, FormatConsole, os.Stdout)
}

// NewWithWriter builds a logger writing to w. Console format is for humans,
// JSON for log shippers.
func NewWithWriter(level string, format Format, w io.Writer) *Logger {
	out := w
	if format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: &l}
}

// Nop discards everything. Handy in tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{logger: &l}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return zerolog.ErrorLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug -.
func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.write(l.logger.Debug(), message, args)
}

// Info -.
func (l *Logger) Info(message interface{}, args ...interface{}) {
	l.write(l.logger.Info(), message, args)
}

// Warn -.
func (l *Logger) Warn(message interface{}, args ...interface{}) {
	l.write(l.logger.Warn(), message, args)
}

// Error -.
func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.write(l.logger.Error(), message, args)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.write(l.logger.WithLevel(zerolog.FatalLevel), message, args)

	os.Exit(1)
}

// write renders message and appends args as key/value pairs. A trailing key
// without value is logged under "extra".
func (l *Logger) write(event *zerolog.Event, message interface{}, args []interface{}) {
	if event == nil {
		return
	}

	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		if i+1 >= len(args) {
			event = event.Interface("extra", args[i])
			break
		}
		if err, isErr := args[i+1].(error); isErr {
			event = event.AnErr(key, err)
			continue
		}
		event = event.Interface(key, args[i+1])
	}

	switch msg := message.(type) {
	case error:
		event.Msg(msg.Error())
	case string:
		event.Msg(msg)
	default:
		event.Msg(fmt.Sprintf("%v", message))
	}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...interface{}) *Logger {
	ctx := l.logger.With()
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			ctx = ctx.Interface(key, args[i+1])
		}
	}
	child := ctx.Logger()
	return &Logger{logger: &child}
}
