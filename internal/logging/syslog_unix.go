//go:build !windows && !plan9

package logging

import (
	"log/syslog"

	"go.uber.org/zap/zapcore"
)

// syslogCore writes errors and worse to the local syslog daemon at LOG_ERR.
// syslog stamps its own time, so the encoder leaves it out.
func syslogCore(tag string) (zapcore.Core, func() error, error) {
	w, err := syslog.New(syslog.LOG_ERR|syslog.LOG_USER, tag)
	if err != nil {
		return nil, nil, err
	}
	cfg := encoderConfig()
	cfg.TimeKey = ""
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), zapcore.ErrorLevel), w.Close, nil
}
