package devcli

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

var LogFormatter = &formatter.Formatter{
	TimestampFormat: "2006-01-02 15:04:05",
	HideKeys:        true,
	FieldsOrder:     []string{"subsystem", "req-id", "feed", "subject"},
	CallerFirst:     true,
	CustomCallerFormatter: func(f *runtime.Frame) string {
		return fmt.Sprintf(" [%s:%d]", path.Base(f.File), f.Line)
	},
}

// SetupLogger builds a stderr logger for one subsystem. Level "none"
// discards all output.
func SetupLogger(level, subsystem string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(LogFormatter)
	entry := logger.WithField("subsystem", subsystem)

	if level == "none" {
		logger.SetOutput(io.Discard)
		return entry
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		entry.Warnf("invalid log level %q, defaulting to info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetReportCaller(lvl >= logrus.DebugLevel)
	return entry
}
