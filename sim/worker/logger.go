package worker

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// logrusAdapter routes watermill's logs into logrus. Watermill's info
// output is per-subscription chatter, so it is demoted to debug.
type logrusAdapter struct {
	entry *logrus.Entry
}

func newLogrusAdapter(fields logrus.Fields) watermill.LoggerAdapter {
	return logrusAdapter{entry: logrus.WithFields(fields)}
}

func (l logrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l logrusAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l logrusAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l logrusAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l logrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return logrusAdapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}
