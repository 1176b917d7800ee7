// Package stagelog adapts logrus to schedule.Logger, so pkg/schedule's
// Debugf/Infof/Warnf/Errorf calls end up structured and leveled the same
// way the rest of a stagehand app logs.
package stagelog

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/windrift/stagehand/pkg/schedule"
)

// Entry wraps a *logrus.Entry (or the base *logrus.Logger, via its
// WithField-less zero Entry) as a schedule.Logger.
type Entry struct {
	entry *logrus.Entry
}

// New builds a new logrus.Logger on every call and wraps it for
// pkg/schedule consumption. level is parsed with logrus.ParseLevel;
// an unrecognized level falls back to Info.
func New(level string) schedule.Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	base.SetLevel(parsed)

	return &Entry{entry: logrus.NewEntry(base)}
}

// WithFields returns a derived schedule.Logger carrying the given
// structured fields — e.g. one per AnimTimeline, tagged with its name.
func (l *Entry) WithFields(fields map[string]interface{}) schedule.Logger {
	return &Entry{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *Entry) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Entry) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Entry) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Entry) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
