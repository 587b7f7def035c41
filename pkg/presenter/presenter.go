// Package presenter writes the user-facing migration report: one status line
// per skill framed by rules, then the tally. Color is optional and follows
// NO_COLOR and SKILLMIG_COLOR.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// RuleWidth is the width of the "=" rules framing the per-skill lines
const RuleWidth = 60

// Status classifies a per-skill report line
type Status int

const (
	// StatusOK marks a migrated skill
	StatusOK Status = iota
	// StatusSkip marks a skill left untouched
	StatusSkip
	// StatusError marks a skill whose processing failed
	StatusError
)

// Summary is the final tally of a run
type Summary struct {
	Updated int
	Skipped int
	Errors  int
}

// Total is the number of processed skills
func (s Summary) Total() int {
	return s.Updated + s.Skipped + s.Errors
}

// Presenter defines the interface for CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Rule()
	Line(status Status, text string)
	Summary(s Summary)
	Diff(diff string)
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets fatih/color detect terminal support
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// New creates a TerminalPresenter on stdout and stderr
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom settings
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("SKILLMIG_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error displays an error message to stderr. Quiet mode does not apply.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		c.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Section displays an underlined header
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintln(p.output, title)
	c.Fprintln(p.output, strings.Repeat("-", len(title)))
}

// Rule prints a line of "=" characters
func (p *TerminalPresenter) Rule() {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, strings.Repeat("=", RuleWidth))
}

// Line prints one per-skill report line. Error lines are printed even in
// quiet mode.
func (p *TerminalPresenter) Line(status Status, text string) {
	switch status {
	case StatusOK:
		if p.quiet {
			return
		}
		color.New(color.FgGreen).Fprintln(p.output, text)
	case StatusSkip:
		if p.quiet {
			return
		}
		color.New(color.FgYellow).Fprintln(p.output, text)
	default:
		color.New(color.FgRed).Fprintln(p.output, text)
	}
}

// Summary prints the final tally
func (p *TerminalPresenter) Summary(s Summary) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "Updated: %d\n", s.Updated)
	fmt.Fprintf(p.output, "Skipped: %d\n", s.Skipped)
	fmt.Fprintf(p.output, "Errors:  %d\n", s.Errors)
	fmt.Fprintf(p.output, "Total:   %d\n", s.Total())
}

// Diff prints a unified diff, coloring added and removed lines
func (p *TerminalPresenter) Diff(diff string) {
	if p.quiet || diff == "" {
		return
	}

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			color.New(color.Bold).Fprint(p.output, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(p.output, line)
		case strings.HasPrefix(line, "+"):
			added.Fprint(p.output, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprint(p.output, line)
		default:
			fmt.Fprint(p.output, line)
		}
	}
	if !strings.HasSuffix(diff, "\n") {
		fmt.Fprintln(p.output)
	}
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter Presenter = New()

// Default returns the process wide presenter
func Default() Presenter {
	return defaultPresenter
}

// Error displays an error message using the default presenter.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning message using the default presenter.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter.
func Info(message string) {
	defaultPresenter.Info(message)
}

// SetQuiet enables or disables quiet mode for the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}
