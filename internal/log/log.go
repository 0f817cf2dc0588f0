// Package log is the process-wide structured logger. The level is taken
// from MRCZ_LOG_LEVEL (debug, info, warn, error) and defaults to warn so a
// library user sees nothing unless something went wrong.
package log

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvLevel names the environment variable read at start-up.
const EnvLevel = "MRCZ_LOG_LEVEL"

// Logger is the backend behind the package-level functions.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warning(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})
	SetLevel(level string)
	SetLogWriter(writer io.Writer)
}

func init() {
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{TimestampFormat: time.RFC3339Nano, FullTimestamp: true}
	r := &defaultLogger{logger: logger}
	r.SetLevel(os.Getenv(EnvLevel))
	mLog = r
}

var mLog Logger

type defaultLogger struct {
	logger *logrus.Logger
}

func (l *defaultLogger) Debug(_ context.Context, msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Debug(msg)
}

func (l *defaultLogger) Info(_ context.Context, msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Info(msg)
}

func (l *defaultLogger) Warning(_ context.Context, msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Warning(msg)
}

func (l *defaultLogger) Error(_ context.Context, msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Error(msg)
}

func (l *defaultLogger) SetLevel(level string) {
	l.logger.SetLevel(parseLevel(level))
}

func (l *defaultLogger) SetLogWriter(writer io.Writer) {
	l.logger.Out = writer
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// SetLogger replaces the process-wide logger.
func SetLogger(logger Logger) {
	if logger != nil {
		mLog = logger
	}
}

// SetLogLevel changes the level; an empty level is ignored.
func SetLogLevel(level string) {
	if level == "" {
		return
	}
	mLog.SetLevel(level)
}

// SetLogWriter redirects output; nil is ignored.
func SetLogWriter(writer io.Writer) {
	if writer == nil {
		return
	}
	mLog.SetLogWriter(writer)
}

// Debug logs at debug level. Calls with neither message nor fields are dropped,
// as in the other level functions.
func Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	mLog.Debug(ctx, msg, fields)
}

// Info logs at info level.
func Info(ctx context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	mLog.Info(ctx, msg, fields)
}

// Warning logs at warning level.
func Warning(ctx context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	mLog.Warning(ctx, msg, fields)
}

// Error logs at error level.
func Error(ctx context.Context, msg string, fields map[string]interface{}) {
	if msg == "" && len(fields) == 0 {
		return
	}
	mLog.Error(ctx, msg, fields)
}
