//go:build windows || plan9

package logging

import (
	"errors"

	"go.uber.org/zap/zapcore"
)

func syslogCore(string) (zapcore.Core, func() error, error) {
	return nil, nil, errors.New("no syslog on this platform")
}
