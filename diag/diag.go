// Package diag renders assembler errors and VM exceptions with the same
// source-line-and-caret layout, so the two subsystems that produce
// diagnostics never have to agree on formatting twice.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Position locates a diagnostic in a source file. Line and Col are 1-based;
// a zero Position (File == "") means "no source location" and Render omits
// the location prefix. The source-line context is printed whenever the
// Diagnostic's Line is non-empty.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Diagnostic is one reportable error or warning. Line is the raw source
// text the diagnostic points into (no trailing newline); it may be empty
// when no source context is available (e.g. a VM exception raised before
// any instruction ran). Width is the tilde-span length under the caret,
// clamped to at least 1.
type Diagnostic struct {
	Pos     Position
	Message string
	Line    string
	Width   int
	// Kind is a caller-defined short tag (e.g. "unknown_mnemonic", "bkpt")
	// identifying the diagnostic's kind for programmatic consumers. Never
	// rendered by Render/String; those only use Message.
	Kind string
}

// ColorEnabled reports whether ANSI color should be used, per spec.md §6:
// suppressed whenever NO_COLOR is set, regardless of value.
func ColorEnabled() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return !set
}

// Render writes the diagnostic in the shared layout:
//
//	file:line:col: error: message
//	<source line>
//	   ^~~~~
//
// color controls whether "error:" is wrapped in ANSI red/bold.
func (d Diagnostic) Render(w io.Writer, color bool) {
	label := "error:"
	if color {
		label = "\x1b[1;31merror:\x1b[0m"
	}
	if d.Pos.File != "" {
		fmt.Fprintf(w, "%s: %s %s\n", d.Pos, label, d.Message)
	} else {
		fmt.Fprintf(w, "%s %s\n", label, d.Message)
	}
	if d.Line != "" {
		fmt.Fprintln(w, d.Line)
		fmt.Fprintln(w, caretLine(d.Pos.Col, d.Width))
	}
}

// String renders using the process's current NO_COLOR setting.
func (d Diagnostic) String() string {
	var b strings.Builder
	d.Render(&b, ColorEnabled())
	return b.String()
}

func caretLine(col, width int) string {
	if width < 1 {
		width = 1
	}
	if col < 1 {
		col = 1
	}
	return strings.Repeat(" ", col-1) + "^" + strings.Repeat("~", width-1)
}

// List accumulates diagnostics in source order rather than stopping at the
// first error (spec.md §7 policy). Assembly, as a whole, fails if any
// error was recorded; warnings never fail it.
type List struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Add appends an error diagnostic.
func (l *List) Add(d Diagnostic) { l.Errors = append(l.Errors, d) }

// AddWarning appends a warning diagnostic.
func (l *List) AddWarning(d Diagnostic) { l.Warnings = append(l.Warnings, d) }

// HasErrors reports whether any error was recorded.
func (l *List) HasErrors() bool { return len(l.Errors) > 0 }

// Render writes up to limit errors (0 means unlimited) followed, if any
// were dropped, by a "(N errors omitted)" summary line — spec.md §6's
// -l/--limit-errors behavior.
func (l *List) Render(w io.Writer, limit int) {
	color := ColorEnabled()
	shown := len(l.Errors)
	if limit > 0 && limit < shown {
		shown = limit
	}
	for _, d := range l.Errors[:shown] {
		d.Render(w, color)
	}
	if omitted := len(l.Errors) - shown; omitted > 0 {
		fmt.Fprintf(w, "(%d errors omitted)\n", omitted)
	}
}

// RenderWarnings writes every accumulated warning.
func (l *List) RenderWarnings(w io.Writer) {
	color := ColorEnabled()
	for _, d := range l.Warnings {
		d.Render(w, color)
	}
}
