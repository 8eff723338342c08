// Package logging builds the logrus loggers shared by the handler and the serving modes.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured from opts. The text format leaves messages
// unquoted so logged payloads read the same as they were received.
func New(opts ...Option) *logrus.Logger {
	o := NewOptions(opts...)

	l := logrus.New()
	if o.Output != nil {
		l.SetOutput(o.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	level, err := logrus.ParseLevel(o.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch o.Format {
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{
			DisableTimestamp: !o.Timestamp,
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			DisableQuote:     true,
			DisableTimestamp: !o.Timestamp,
			FullTimestamp:    o.Timestamp,
		})
	}

	return l
}
