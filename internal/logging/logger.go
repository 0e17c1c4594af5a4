// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup points the standard logger at out (stderr when nil) and sets its
// level. debug forces the debug level regardless of level.
func Setup(level string, debug bool, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.StandardLogger()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return logger, err
		}
		lvl = parsed
	}
	if debug {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)

	return logger, nil
}
