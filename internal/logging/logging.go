// Package logging provides the logging surface shared by the queue runtime
// and the HTTP front end.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger provides a simple interface to implement your own logging platform
// or use the default.
type Logger interface {
	Println(v ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// logrusLogger is the default Logger backed by logrus.
type logrusLogger struct {
	entry *logrus.Logger
}

// New builds the default Logger, writing structured logs to stderr at the
// given level ("debug", "info", "warn", "error"; defaults to "info" on a
// parse failure).
func New(level string) Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.Level = lvl

	return &logrusLogger{entry: l}
}

func (l *logrusLogger) Println(v ...interface{}) {
	l.entry.Info(v...)
}

func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}
