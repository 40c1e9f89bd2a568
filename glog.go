package lifecycle

import (
	"context"

	"github.com/goliatone/go-logger/glog"
)

// NewGlogAdapter bridges a go-logger instance onto the package Logger
// contract. A nil base falls back to FmtLogger.
func NewGlogAdapter(base glog.Logger) Logger {
	if base == nil {
		return NewFmtLogger(nil)
	}
	return glogAdapter{logger: base}
}

type glogAdapter struct {
	logger glog.Logger
}

func (l glogAdapter) Trace(msg string, args ...any) { l.logger.Trace(msg, args...) }
func (l glogAdapter) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l glogAdapter) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l glogAdapter) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l glogAdapter) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l glogAdapter) Fatal(msg string, args ...any) { l.logger.Fatal(msg, args...) }

func (l glogAdapter) WithContext(ctx context.Context) Logger {
	return glogAdapter{logger: l.logger.WithContext(ctx)}
}

func (l glogAdapter) WithFields(fields map[string]any) Logger {
	if fl, ok := l.logger.(glog.FieldsLogger); ok {
		return glogAdapter{logger: fl.WithFields(fields)}
	}
	return l
}
