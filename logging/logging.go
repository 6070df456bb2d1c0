// Package logging wraps charmbracelet/log so every component logs
// through one leveled, component-scoped logger instead of bare
// fmt.Println/log.Println calls.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the structured logger every component receives.
type Logger = log.Logger

var root = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// SetLevel sets the global minimum log level (e.g. log.DebugLevel).
func SetLevel(level log.Level) {
	root.SetLevel(level)
}

// Component returns a sub-logger tagged with the given component name,
// e.g. Component("manager") prefixes every line with component=manager.
func Component(name string) *Logger {
	return root.With("component", name)
}
