// Package logging holds the process-wide structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "yatube"

var (
	logger = logrus.New()
	Log    = logger.WithField("service", serviceName)
)

// Init configures level and output format. Production gets JSON lines,
// everything else gets the text formatter for readability.
func Init(level string, production bool) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithFields(logrus.Fields{"service": serviceName, "production": production})
}
