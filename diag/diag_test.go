package diag

import (
	"strings"
	"testing"
)

func TestRenderWithLocationAndCaret(t *testing.T) {
	d := Diagnostic{
		Pos:     Position{File: "prog.s", Line: 1, Col: 1},
		Message: "unknown instruction mnemonic",
		Line:    "BOGUS X0, X0",
		Width:   5,
	}
	var b strings.Builder
	d.Render(&b, false)
	got := b.String()
	want := "prog.s:1:1: error: unknown instruction mnemonic\nBOGUS X0, X0\n^~~~~\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderWithoutLocation(t *testing.T) {
	d := Diagnostic{Message: "floating-point exception: division by zero"}
	var b strings.Builder
	d.Render(&b, false)
	if got, want := b.String(), "error: floating-point exception: division by zero\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderColorWrapsLabel(t *testing.T) {
	d := Diagnostic{Message: "boom"}
	var b strings.Builder
	d.Render(&b, true)
	if got := b.String(); !strings.Contains(got, "\x1b[1;31merror:\x1b[0m") {
		t.Fatalf("expected ANSI-wrapped label, got %q", got)
	}
}

func TestColorEnabledRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled() {
		t.Fatal("expected ColorEnabled() == false with NO_COLOR set")
	}
	t.Setenv("NO_COLOR", "")
	if ColorEnabled() {
		t.Fatal("expected ColorEnabled() == false even with NO_COLOR empty, per spec: presence alone suppresses color")
	}
}

func TestListRenderLimitsAndSummarizes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var l List
	for i := 0; i < 5; i++ {
		l.Add(Diagnostic{Message: "err"})
	}
	var b strings.Builder
	l.Render(&b, 3)
	got := b.String()
	if strings.Count(got, "error: err") != 3 {
		t.Fatalf("expected 3 rendered errors, got %q", got)
	}
	if !strings.Contains(got, "(2 errors omitted)") {
		t.Fatalf("expected omission summary, got %q", got)
	}
}

func TestListRenderUnlimited(t *testing.T) {
	var l List
	l.Add(Diagnostic{Message: "a"})
	l.Add(Diagnostic{Message: "b"})
	var b strings.Builder
	l.Render(&b, 0)
	if strings.Contains(b.String(), "omitted") {
		t.Fatalf("unlimited render should not summarize, got %q", b.String())
	}
}

func TestHasErrors(t *testing.T) {
	var l List
	if l.HasErrors() {
		t.Fatal("empty list should report no errors")
	}
	l.AddWarning(Diagnostic{Message: "just a warning"})
	if l.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}
	l.Add(Diagnostic{Message: "real error"})
	if !l.HasErrors() {
		t.Fatal("expected HasErrors() == true after Add")
	}
}
