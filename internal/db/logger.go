package db

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger routes gorm's log output through logrus
type gormLogger struct {
	entry         *logrus.Entry
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewLogger returns a gorm logger writing to the given logrus logger
func NewLogger(log *logrus.Logger, level logger.LogLevel) logger.Interface {
	return &gormLogger{
		entry:         log.WithField("component", "gorm"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.entry.WithContext(ctx).Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.entry.WithContext(ctx).Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.entry.WithContext(ctx).Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logrus.Fields{
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
		"sql":         sql,
	}
	switch {
	// Missing rows are an expected outcome of lookups, not a driver failure
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		l.entry.WithContext(ctx).WithFields(fields).WithError(err).Error("query failed")
	case elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.entry.WithContext(ctx).WithFields(fields).Warn("slow query")
	case l.level >= logger.Info:
		l.entry.WithContext(ctx).WithFields(fields).Debug("query")
	}
}
