// Package output renders provider callbacks on a terminal. ConsoleHost is
// the harness-side implementation of the host protocol: activities become
// progress bars, yields become result lines, diagnostics become prefixed
// messages. Rendering degrades cleanly on non-TTY writers so piped output
// stays readable.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color codes for diagnostics and completion markers.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// colorEnabled reports whether ANSI color codes should be emitted to w,
// honoring the NO_COLOR convention.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return writerIsTTY(w)
}

// ConsoleHost implements the provider's host callback surface on a
// terminal. Safe for the sequential callback discipline the provider uses;
// the mutex only guards against interleaved writes when a background
// component logs concurrently.
type ConsoleHost struct {
	mu       sync.Mutex
	w        io.Writer
	verbose  bool
	barWidth int

	nextID int
	labels map[int]string
}

// NewConsoleHost creates a console host writing to w. With verbose false,
// Verbose diagnostics are dropped.
func NewConsoleHost(w io.Writer, verbose bool) *ConsoleHost {
	return &ConsoleHost{
		w:        w,
		verbose:  verbose,
		barWidth: 30,
		labels:   make(map[int]string),
	}
}

// StartActivity opens a new activity and returns its id.
func (h *ConsoleHost) StartActivity(parentID int, label string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.labels[h.nextID] = label

	if !writerIsTTY(h.w) {
		fmt.Fprintf(h.w, "%s...\n", label)
	}
	return h.nextID
}

// ReportProgress redraws the activity's progress bar.
func (h *ConsoleHost) ReportProgress(activityID, percent int, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	label, ok := h.labels[activityID]
	if !ok {
		return
	}

	// Only a TTY can overwrite the line; non-TTY writers already printed
	// the label on start and get a single completion line later.
	if !writerIsTTY(h.w) {
		return
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := (percent * h.barWidth) / 100

	bar := strings.Builder{}
	bar.WriteString("[")
	for i := 0; i < h.barWidth; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	fmt.Fprintf(h.w, "\r%s %3d%% %s: %s\033[K", bar.String(), percent, label, message)
}

// CompleteActivity closes an activity with a success or failure marker.
func (h *ConsoleHost) CompleteActivity(activityID int, success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	label, ok := h.labels[activityID]
	if !ok {
		return
	}
	delete(h.labels, activityID)

	marker := "done"
	color := colorGreen
	if !success {
		marker = "failed"
		color = colorRed
	}

	if writerIsTTY(h.w) {
		fmt.Fprint(h.w, "\r\033[K")
	}
	if colorEnabled(h.w) {
		fmt.Fprintf(h.w, "%s: %s%s%s\n", label, color, marker, colorReset)
	} else {
		fmt.Fprintf(h.w, "%s: %s\n", label, marker)
	}
}

// YieldSoftwareIdentity prints one package identity result line.
func (h *ConsoleHost) YieldSoftwareIdentity(token, name, version, source, summary string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	line := fmt.Sprintf("%-28s %-14s %-12s %s", name, version, source, summary)
	fmt.Fprintln(h.w, strings.TrimRight(line, " "))
	if h.verbose {
		h.verbosef("reference: %s", token)
	}
}

// YieldPackageSource prints one package source result line.
func (h *ConsoleHost) YieldPackageSource(name, location string, trusted, registered bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	flags := make([]string, 0, 2)
	if trusted {
		flags = append(flags, "trusted")
	}
	if registered {
		flags = append(flags, "registered")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " (" + strings.Join(flags, ", ") + ")"
	}
	fmt.Fprintf(h.w, "%-20s %s%s\n", name, location, suffix)
}

// Verbose writes a diagnostic line when verbose output is enabled.
func (h *ConsoleHost) Verbose(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.verbose {
		return
	}
	h.verbosef(format, args...)
}

// Warning writes a warning diagnostic line.
func (h *ConsoleHost) Warning(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if colorEnabled(h.w) {
		fmt.Fprintf(h.w, "%swarning:%s %s\n", colorYellow, colorReset, fmt.Sprintf(format, args...))
	} else {
		fmt.Fprintf(h.w, "warning: %s\n", fmt.Sprintf(format, args...))
	}
}

// Error writes an error diagnostic line.
func (h *ConsoleHost) Error(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if colorEnabled(h.w) {
		fmt.Fprintf(h.w, "%serror:%s %s\n", colorRed, colorReset, fmt.Sprintf(format, args...))
	} else {
		fmt.Fprintf(h.w, "error: %s\n", fmt.Sprintf(format, args...))
	}
}

// verbosef writes a gray diagnostic line. Caller holds the lock.
func (h *ConsoleHost) verbosef(format string, args ...any) {
	if colorEnabled(h.w) {
		fmt.Fprintf(h.w, "%s%s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	} else {
		fmt.Fprintln(h.w, fmt.Sprintf(format, args...))
	}
}
