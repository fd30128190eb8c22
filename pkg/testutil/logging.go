package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// TestLogLevelEnvName selects the logrus level used by tests
const TestLogLevelEnvName = "TEST_LOG_LEVEL"

// Test output is silenced unless running with -v, so that program logs and
// runtime traces only show up when asked for.
func init() {
	configureTestLogging(os.Args, os.Getenv(TestLogLevelEnvName))
}

func configureTestLogging(args []string, level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.TraceLevel
	}
	logrus.SetLevel(parsed)

	for _, arg := range args {
		if arg == "-test.v=true" || arg == "-test.v" || strings.HasPrefix(arg, "-test.v=test2json") {
			logrus.SetOutput(os.Stderr)
			return
		}
	}
	logrus.SetOutput(io.Discard)
}
