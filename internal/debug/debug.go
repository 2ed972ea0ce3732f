// Package debug holds gsdsync's process-wide verbosity switches. Debug output
// is enabled by --verbose or by setting GSDSYNC_DEBUG to any non-empty value.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	enabled     = os.Getenv("GSDSYNC_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	mu     sync.Mutex
	stderr io.Writer = os.Stderr
	stdout io.Writer = os.Stdout
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// Logf writes a debug line to stderr.
func Logf(format string, args ...interface{}) {
	if Enabled() {
		write(stderr, fmt.Sprintf(format, args...))
	}
}

// Printf writes debug output to stdout.
func Printf(format string, args ...interface{}) {
	if Enabled() {
		write(stdout, fmt.Sprintf(format, args...))
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		write(stdout, fmt.Sprintf(format, args...))
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		write(stdout, fmt.Sprintln(args...))
	}
}

func write(w io.Writer, s string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = io.WriteString(w, s)
}
