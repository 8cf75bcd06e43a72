// Package logger provides the process-wide logger for lexrag.
// Debug, Info and Section only print when verbose mode is enabled via
// --verbose. Warnings always print unless quiet mode is set, so that
// degraded operation (fallback embeddings, failed searches) is visible.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	quiet   bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetQuiet suppresses warnings. Used by machine-readable output modes
// and the MCP stdio server, where stderr noise is unwanted.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(gated bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(true, "[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(true, "[INFO] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	emit(true, "\n=== ", "%s ===", name)
}

// Warn prints a warning unless quiet mode is set.
func Warn(format string, args ...any) {
	mu.RLock()
	q, v := quiet, verbose
	mu.RUnlock()
	if q && !v {
		return
	}
	emit(false, "[WARN] ", format, args...)
}

// Timed logs how long an operation took when the returned func is called.
//
//	defer logger.Timed("retrieval")()
func Timed(name string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", name, time.Since(start).Round(time.Millisecond))
	}
}
