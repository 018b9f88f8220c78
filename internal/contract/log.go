package contract

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger. Diagnostic output goes to stderr so that
// stdout stays clean for tables and the MCP protocol.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// ConfigureLogger sets the level and destination of Logger. A nil writer keeps the current one.
func ConfigureLogger(level logrus.Level, w io.Writer) {
	Logger.SetLevel(level)
	if w != nil {
		Logger.SetOutput(w)
	}
}
