// Package claspio centralizes stream wiring and terminal capability
// detection for usage and error rendering.
package claspio

import (
	stdio "io"
	"os"
	"runtime"
	"strings"
)

// platformIO is implemented per OS in io_unix.go and io_windows.go.
type platformIO interface {
	isTerminal(*os.File) bool
	termSize(*os.File) (width, height int, ok bool)
	enableVirtualTerminal() bool
	vtEnabled() bool
}

// IOManager bundles the three process streams with terminal capability
// queries. Renderers take their width and color decisions from here so tests
// can redirect everything.
type IOManager struct {
	in  stdio.Reader
	out stdio.Writer
	err stdio.Writer

	forceColor bool
	noColor    bool

	p platformIO
}

// NewIOManager returns a manager bound to process stdio.
func NewIOManager() *IOManager {
	return &IOManager{in: os.Stdin, out: os.Stdout, err: os.Stderr, p: newPlatformIO()}
}

// WithIn sets the input reader and returns the manager for chaining.
func (m *IOManager) WithIn(r stdio.Reader) *IOManager { m.in = r; return m }

// WithOut sets the standard output writer and returns the manager for chaining.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the standard error writer and returns the manager for chaining.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// ForceColor turns color output on regardless of environment.
func (m *IOManager) ForceColor() *IOManager { m.forceColor = true; m.noColor = false; return m }

// NoColor turns color output off regardless of environment.
func (m *IOManager) NoColor() *IOManager { m.noColor = true; m.forceColor = false; return m }

// ColorAuto restores environment-based color detection.
func (m *IOManager) ColorAuto() *IOManager { m.noColor = false; m.forceColor = false; return m }

// In returns the configured input reader.
func (m *IOManager) In() stdio.Reader { return m.in }

// Out returns the configured standard output writer.
func (m *IOManager) Out() stdio.Writer { return m.out }

// Err returns the configured standard error writer.
func (m *IOManager) Err() stdio.Writer { return m.err }

// IsTTY reports whether stdout is connected to a terminal.
func (m *IOManager) IsTTY() bool { return m.p.isTerminal(os.Stdout) }

// IsInteractive reports whether stdin is a terminal outside CI.
func (m *IOManager) IsInteractive() bool {
	return m.p.isTerminal(os.Stdin) && os.Getenv("CI") == ""
}

// IsPiped reports whether stdin comes from a pipe or file.
func (m *IOManager) IsPiped() bool { return !m.p.isTerminal(os.Stdin) }

// IsRedirected reports whether stdout goes to a pipe or file.
func (m *IOManager) IsRedirected() bool { return !m.p.isTerminal(os.Stdout) }

// Width returns the terminal width, the COLUMNS fallback, or 80.
func (m *IOManager) Width() int {
	if w, _, ok := m.p.termSize(os.Stdout); ok && w > 0 {
		return w
	}
	if w, _ := envTermSize(); w > 0 {
		return w
	}
	return 80
}

// Height returns the terminal height, the LINES fallback, or 24.
func (m *IOManager) Height() int {
	if _, h, ok := m.p.termSize(os.Stdout); ok && h > 0 {
		return h
	}
	if _, h := envTermSize(); h > 0 {
		return h
	}
	return 24
}

// SupportsColor reports whether ANSI sequences should be emitted. NO_COLOR
// and FORCE_COLOR take precedence over detection.
func (m *IOManager) SupportsColor() bool {
	if m.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if m.forceColor || os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if goos() == "windows" {
		return m.p.vtEnabled()
	}
	if !m.IsTTY() {
		return false
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// ColorLevel returns 0 for no color, 1 for 16 colors, 2 for 256 colors and
// 3 for truecolor, from environment heuristics.
func (m *IOManager) ColorLevel() int {
	if !m.SupportsColor() {
		return 0
	}
	colorterm := os.Getenv("COLORTERM")
	if colorterm == "truecolor" || colorterm == "24bit" {
		return 3
	}
	term := os.Getenv("TERM")
	if strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") {
		return 3
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "vscode", "zed":
		return 3
	}
	if goos() == "windows" {
		if os.Getenv("WT_SESSION") != "" || os.Getenv("WT_PROFILE_ID") != "" {
			return 3
		}
		if os.Getenv("ConEmuANSI") == "ON" {
			return 3
		}
		if m.p.vtEnabled() {
			return 3
		}
		return 2
	}
	if strings.Contains(term, "256color") {
		return 2
	}
	return 1
}

// EnableVirtualTerminal tries to enable ANSI processing on Windows consoles.
// On other platforms it is a no-op reporting true.
func (m *IOManager) EnableVirtualTerminal() bool { return m.p.enableVirtualTerminal() }

// Colorize wraps s with the given ANSI SGR code (e.g. "31" for red) and a
// trailing reset. Without color support it returns s unchanged.
func (m *IOManager) Colorize(s, code string) string {
	if !m.SupportsColor() {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Bold returns s in bold when color is supported.
func (m *IOManager) Bold(s string) string { return m.Colorize(s, "1") }

// Faint returns s in faint intensity when color is supported.
func (m *IOManager) Faint(s string) string { return m.Colorize(s, "2") }

// Underline returns s underlined when color is supported.
func (m *IOManager) Underline(s string) string { return m.Colorize(s, "4") }

// goos is overridable through CLASP_GOOS so platform branches are testable
// everywhere.
func goos() string {
	if v := os.Getenv("CLASP_GOOS"); v != "" {
		return v
	}
	return runtime.GOOS
}
