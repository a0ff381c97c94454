// Package logger configures the shared logrus instance used by every
// command and pipeline stage.
package logger

import (
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/shiena/ansicolor"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Setup must be called once before use;
// until then it behaves as a default logrus logger.
var Log = logrus.New()

// Setup applies the pipeline's log format and the requested level.
// Unknown level names fall back to info.
func Setup(level string) {
	Log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	Log.SetOutput(ansicolor.NewAnsiColorWriter(os.Stdout))

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)
}
