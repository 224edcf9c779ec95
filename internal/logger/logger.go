package logger

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

const (
	// FieldPackage is the name of the package that emits the log entry.
	FieldPackage = "package"

	// FieldFunction is the name of the function that emits the log entry.
	FieldFunction = "function"

	// FormatText is a human readable key=value formatter.
	FormatText = "text"

	// FormatJSON is a structured JSON formatter.
	FormatJSON = "json"
)

var (
	// ErrUnknownFormat happens when the log format is not supported.
	ErrUnknownFormat = errors.New("unknown log format")
)

// Fields is a set of key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Config
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// Output defaults to the standard output.
	Output io.Writer `yaml:"-"`
}

// Log is a structured leveled logger.
//
// Error and Errorf always take the error that caused the entry,
// so that it is attached to the entry as a field.
type Log interface {
	WithField(key string, value interface{}) Log
	WithFields(fields Fields) Log

	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Error(err error, args ...interface{})
	Errorf(err error, format string, args ...interface{})
}

// entry adapts logrus entry to the Log interface.
type entry struct {
	e *logrus.Entry
}

// NewLogger creates a new logrus based logger.
func NewLogger(conf Config) (Log, error) {
	l := logrus.New()

	switch conf.Format {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, ErrUnknownFormat
	}

	level := logrus.InfoLevel
	if conf.Level != "" {
		lvl, err := logrus.ParseLevel(conf.Level)
		if err != nil {
			return nil, err
		}
		level = lvl
	}
	l.SetLevel(level)

	if conf.Output != nil {
		l.SetOutput(conf.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	return &entry{e: logrus.NewEntry(l)}, nil
}

// NewNullLogger creates a discarding logger and a hook
// that records all log entries.
func NewNullLogger() (Log, *logtest.Hook) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)
	return &entry{e: logrus.NewEntry(l)}, hook
}

func (l *entry) WithField(key string, value interface{}) Log {
	return &entry{e: l.e.WithField(key, value)}
}

func (l *entry) WithFields(fields Fields) Log {
	return &entry{e: l.e.WithFields(logrus.Fields(fields))}
}

func (l *entry) Trace(args ...interface{}) { l.e.Trace(args...) }

func (l *entry) Debug(args ...interface{}) { l.e.Debug(args...) }

func (l *entry) Info(args ...interface{}) { l.e.Info(args...) }

func (l *entry) Infof(format string, args ...interface{}) { l.e.Infof(format, args...) }

func (l *entry) Warn(args ...interface{}) { l.e.Warn(args...) }

func (l *entry) Error(err error, args ...interface{}) {
	l.e.WithError(err).Error(args...)
}

func (l *entry) Errorf(err error, format string, args ...interface{}) {
	l.e.WithError(err).Errorf(format, args...)
}
