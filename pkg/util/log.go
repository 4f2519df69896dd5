package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// runHook stamps every entry with the id of the current collection run.
type runHook struct {
	id string
}

func (h *runHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *runHook) Fire(e *logrus.Entry) error {
	e.Data["run"] = h.id
	return nil
}

// SetRunID tags all subsequent log entries with a run field, replacing any
// previous run id.
func SetRunID(id string) {
	hooks := make(logrus.LevelHooks)
	for _, hs := range Logger.Hooks {
		for _, h := range hs {
			if _, ok := h.(*runHook); !ok {
				hooks.Add(h)
			}
		}
	}
	hooks.Add(&runHook{id: id})
	Logger.ReplaceHooks(hooks)
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithDevice returns a logger with device context
func WithDevice(device string) *logrus.Entry {
	return Logger.WithField("device", device)
}

// WithCommand returns a logger with device and show-command context
func WithCommand(device, command string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"device": device, "command": command})
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
