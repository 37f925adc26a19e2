// Package logging sets up the zap logger both generators share: human-readable lines on stderr,
// with errors also sent to the system log where the driver's operators look for them.
package logging

import (
	"io"

	"github.com/google/uuid"
	"gitlab.com/efronlicht/enve"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure New.
type Options struct {
	Name   string        // program name; the logger's name and the syslog tag.
	Level  zapcore.Level // minimum level written to stderr.
	Syslog bool          // also send errors to the system log.
}

// OptionsFromEnv reads INDEX_LOG_LEVEL (default info) and INDEX_SYSLOG (default true).
func OptionsFromEnv(name string) Options {
	return Options{
		Name:   name,
		Level:  enve.FromTextOr[zapcore.Level]("INDEX_LOG_LEVEL", zapcore.InfoLevel),
		Syslog: enve.BoolOr("INDEX_SYSLOG", true),
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// New builds a logger writing to stderr and, if asked and available, the system log.
// Every entry carries a run_id unique to this process, so one invocation's lines can be picked out of a busy log.
// Call the returned func before exiting to flush and close everything.
func New(opts Options, stderr io.Writer) (*zap.Logger, func()) {
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(zapcore.AddSync(stderr)), opts.Level),
	}
	closers := []func() error{}
	if opts.Syslog {
		if core, closer, err := syslogCore(opts.Name); err == nil {
			cores = append(cores, core)
			closers = append(closers, closer)
		}
	}
	logger := zap.New(zapcore.NewTee(cores...)).Named(opts.Name).With(zap.String("run_id", uuid.NewString()))
	return logger, func() {
		_ = logger.Sync()
		for _, c := range closers {
			_ = c()
		}
	}
}
