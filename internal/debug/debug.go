// Package debug writes protocol traces when $WAYLAND_DEBUG is set.
package debug

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

var trace *log.Logger

func init() {
	if enabled(os.Getenv("WAYLAND_DEBUG")) {
		trace = log.NewWithOptions(os.Stderr, log.Options{
			Level:           log.DebugLevel,
			Prefix:          "wayland",
			ReportTimestamp: true,
		})
	}
}

// enabled reports whether v turns tracing on. As with libwayland,
// "client" and positive numbers do and anything else doesn't.
func enabled(v string) bool {
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "client" {
			return true
		}
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			return true
		}
	}
	return false
}

// Enabled reports whether tracing is on.
func Enabled() bool {
	return trace != nil
}

func Printf(str string, args ...any) {
	if trace != nil {
		trace.Debugf(str, args...)
	}
}
