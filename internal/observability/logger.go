// Package observability sets up the process logger. The console encoder
// prints the bare message, so the logger doubles as the report channel.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats understood by the logger.
const (
	FormatColorized = "colorized_text"
	FormatRaw       = "raw_json"
	FormatPretty    = "pretty_json"
)

// Config selects the sink and verbosity.
type Config struct {
	Format string
	// OutputPath receives the report instead of the console. Ignored for
	// JSON formats, which write their document there themselves.
	OutputPath string
	Verbose    bool
}

// New builds the logger for one run. The returned func closes the file sink.
func New(cfg Config, console zapcore.WriteSyncer) (*zap.Logger, func() error) {
	noop := func() error { return nil }

	if cfg.Format == FormatRaw {
		return zap.NewNop(), noop
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Verbose {
		level.SetLevel(zap.DebugLevel)
	}

	sink := console
	closeSink := noop
	switch {
	case cfg.Format == FormatPretty:
		// stdout carries the JSON document.
		sink = zapcore.Lock(os.Stderr)
	case cfg.OutputPath != "":
		file := &lumberjack.Logger{
			Filename:   cfg.OutputPath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		sink = zapcore.AddSync(file)
		closeSink = file.Close
	}
	if sink == nil {
		sink = zapcore.Lock(os.Stdout)
	}

	core := zapcore.NewCore(newEncoder(cfg.Verbose), sink, level)
	return zap.New(core), closeSink
}

// newEncoder prints only the message, or level and time too in verbose mode.
func newEncoder(verbose bool) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	if verbose {
		encCfg.TimeKey = "ts"
		encCfg.LevelKey = "level"
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encCfg)
}
