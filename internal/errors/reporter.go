package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"parsegen/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
)

// CompilerError is a structured diagnostic anchored to a source location.
type CompilerError struct {
	Level    ErrorLevel
	Code     string       // error code like E0001
	Message  string       // primary message
	Position ast.Position // location in the grammar source
	Length   int          // length of the problematic region
	Notes    []string     // additional context notes
	HelpText string       // help text for the error
}

// NewError builds an error diagnostic for a source span.
func NewError(code, message string, span ast.Span) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     code,
		Message:  message,
		Position: span.Start,
		Length:   spanLength(span),
	}
}

// NewWarning builds a warning diagnostic for a source span.
func NewWarning(code, message string, span ast.Span) CompilerError {
	return CompilerError{
		Level:    Warning,
		Code:     code,
		Message:  message,
		Position: span.Start,
		Length:   spanLength(span),
	}
}

// WithNote returns a copy carrying an extra context note.
func (e CompilerError) WithNote(note string) CompilerError {
	e.Notes = append(e.Notes, note)
	return e
}

// WithHelp returns a copy carrying help text.
func (e CompilerError) WithHelp(help string) CompilerError {
	e.HelpText = help
	return e
}

func (e CompilerError) Error() string {
	return e.Message
}

func spanLength(span ast.Span) int {
	n := span.End.Offset - span.Start.Offset
	if n < 1 {
		n = 1
	}
	return n
}

// Reporter renders diagnostics with source context, Rust-style.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for one grammar file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders one diagnostic, colorized for terminal output.
func (r *Reporter) Format(err CompilerError) string {
	var out strings.Builder

	levelColor := r.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		fmt.Fprintf(&out, "%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message)
	} else {
		fmt.Fprintf(&out, "%s: %s\n", levelColor(string(err.Level)), err.Message)
	}

	width := lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&out, "%s %s %s:%d:%d\n",
		indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column)
	fmt.Fprintf(&out, "%s %s\n", indent, dim("│"))

	if err.Position.Line > 0 && err.Position.Line <= len(r.lines) {
		fmt.Fprintf(&out, "%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, err.Position.Line)),
			dim("│"),
			r.lines[err.Position.Line-1])
		fmt.Fprintf(&out, "%s %s %s\n", indent, dim("│"), r.marker(err))
	}

	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range err.Notes {
		fmt.Fprintf(&out, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), err.HelpText)
	}

	out.WriteString("\n")
	return out.String()
}

// FormatAll renders a batch of diagnostics in order.
func (r *Reporter) FormatAll(errs []CompilerError) string {
	var out strings.Builder
	for _, err := range errs {
		out.WriteString(r.Format(err))
	}
	return out.String()
}

func (r *Reporter) levelColor(level ErrorLevel) func(...interface{}) string {
	if level == Warning {
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return color.New(color.FgRed, color.Bold).SprintFunc()
}

func (r *Reporter) marker(err CompilerError) string {
	length := err.Length
	if length < 1 {
		length = 1
	}
	line := r.lines[err.Position.Line-1]
	if err.Position.Column-1+length > len(line) {
		length = max(1, len(line)-err.Position.Column+1)
	}

	spaces := strings.Repeat(" ", max(0, err.Position.Column-1))
	markerColor := r.levelColor(err.Level)
	return spaces + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

// HasErrors reports whether any diagnostic is error-level.
func HasErrors(errs []CompilerError) bool {
	for _, err := range errs {
		if err.Level == Error {
			return true
		}
	}
	return false
}
