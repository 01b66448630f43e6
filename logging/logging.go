package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "LEDFX_LOG_LEVEL"

// New builds a console logger tagged with app and installs it as the global
// zerolog logger.
func New(app string, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, app, level)
}

// NewWithWriter is New writing to out.
func NewWithWriter(out io.Writer, app string, level string) zerolog.Logger {
	if env, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = env.String()
	}
	lvl, ok := ParseLevel(level)
	if !ok {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// Printer adapts a zerolog logger to the Println/Printf interface expected by
// libraries that log through a std-style logger, such as paho's mqtt.ERROR.
type Printer struct {
	log   zerolog.Logger
	level zerolog.Level
}

// NewPrinter creates a Printer that logs every line at level.
func NewPrinter(log zerolog.Logger, level zerolog.Level) Printer {
	return Printer{log: log, level: level}
}

func (p Printer) Println(v ...interface{}) {
	p.log.WithLevel(p.level).Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (p Printer) Printf(format string, v ...interface{}) {
	p.log.WithLevel(p.level).Msg(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
