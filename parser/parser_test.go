package parser

import (
	"strings"
	"testing"

	"lemu64/isa"
)

func assembleOK(t *testing.T, src string) *Result {
	t.Helper()
	r := Assemble("test.s", src)
	if !r.OK() {
		for _, d := range r.Diagnostics.Errors {
			t.Logf("error: %s", d.Message)
		}
		t.Fatalf("assembly failed with %d error(s)", len(r.Diagnostics.Errors))
	}
	return r
}

func TestEmptyProgramAssemblesToNothing(t *testing.T) {
	r := assembleOK(t, "")
	if len(r.Words) != 0 {
		t.Fatalf("got %d words, want 0", len(r.Words))
	}
}

func TestMovExpandsToAddWithZeroRegister(t *testing.T) {
	r := assembleOK(t, "MOV X0, X1\n")
	if len(r.Words) != 1 {
		t.Fatalf("got %d words, want 1", len(r.Words))
	}
	if r.Tags[0] != isa.ADD {
		t.Fatalf("tag = %v, want ADD", r.Tags[0])
	}
	f := isa.UnpackR(r.Words[0])
	if f.Rd != 0 || f.Rn != 1 || f.Rm != MaxRegisterIndex {
		t.Fatalf("fields = %+v, want Rd=0 Rn=1 Rm=XZR", f)
	}
}

func TestCmpExpandsToSubsWithZeroDestination(t *testing.T) {
	r := assembleOK(t, "CMP X2, X3\n")
	if r.Tags[0] != isa.SUBS {
		t.Fatalf("tag = %v, want SUBS", r.Tags[0])
	}
	f := isa.UnpackR(r.Words[0])
	if f.Rd != MaxRegisterIndex || f.Rn != 2 || f.Rm != 3 {
		t.Fatalf("fields = %+v, want Rd=XZR Rn=2 Rm=3", f)
	}
}

func TestForwardBranchPatchesCorrectOffset(t *testing.T) {
	r := assembleOK(t, "B target\nHALT\ntarget:\nHALT\n")
	f := isa.UnpackB(r.Words[0])
	if f.Addr26 != 2 {
		t.Fatalf("forward branch offset = %d, want 2", f.Addr26)
	}
}

func TestBackwardBranchPatchesCorrectOffset(t *testing.T) {
	r := assembleOK(t, "loop:\nHALT\nB loop\n")
	f := isa.UnpackB(r.Words[1])
	if f.Addr26 != -1 {
		t.Fatalf("backward branch offset = %d, want -1", f.Addr26)
	}
}

func TestDotConditionBranchMnemonic(t *testing.T) {
	r := assembleOK(t, "B.EQ target\ntarget:\nHALT\n")
	if r.Tags[0] != isa.BEQ {
		t.Fatalf("tag = %v, want BEQ", r.Tags[0])
	}
}

func TestForwardLdaAlwaysReservesFourSlots(t *testing.T) {
	r := assembleOK(t, "LDA X0, target\nHALT\nHALT\nHALT\nHALT\ntarget:\nHALT\n")
	// MOVZ + 3xMOVK = 4 words before the 4 HALTs and the label.
	if len(r.Words) != 9 {
		t.Fatalf("got %d words, want 9 (4 LDA + 4 HALT + ... )", len(r.Words))
	}
	if r.Tags[0] != isa.MOVZ || r.Tags[1] != isa.MOVK || r.Tags[2] != isa.MOVK || r.Tags[3] != isa.MOVK {
		t.Fatalf("tags = %v, want MOVZ,MOVK,MOVK,MOVK", r.Tags[:4])
	}
}

func TestBackwardLdaTrimsTrailingZeroHalves(t *testing.T) {
	r := assembleOK(t, "target:\nHALT\nLDA X0, target\n")
	// text_start is 0x400000: halves are 0x0000,0x0040,0x0000,0x0000 -> only
	// the first two non-zero-from-the-top halves are needed (MOVZ + 1 MOVK).
	if len(r.Words) != 3 {
		t.Fatalf("got %d words, want 3 (HALT + MOVZ + 1 MOVK)", len(r.Words))
	}
	if r.Tags[1] != isa.MOVZ {
		t.Fatalf("first LDA word tag = %v, want MOVZ", r.Tags[1])
	}
}

func TestUnknownMnemonicIsReportedAsAnError(t *testing.T) {
	r := Assemble("test.s", "BOGUS X0, X0\n")
	if r.OK() {
		t.Fatal("expected assembly to fail on an unknown mnemonic")
	}
	found := false
	for _, d := range r.Diagnostics.Errors {
		if d.Kind == "unknown_mnemonic" {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics = %+v, want one with Kind unknown_mnemonic", r.Diagnostics.Errors)
	}
}

func TestUnknownMnemonicDiagnosticMatchesRenderedText(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	r := Assemble("test.s", "BOGUS X0, X0\n")
	if r.OK() {
		t.Fatal("expected assembly to fail on an unknown mnemonic")
	}
	var rendered strings.Builder
	r.Diagnostics.Render(&rendered, 0)
	want := "test.s:1:1: error: unknown instruction mnemonic"
	if got := rendered.String(); !strings.HasPrefix(got, want) {
		t.Fatalf("rendered diagnostic = %q, want prefix %q", got, want)
	}
}

func TestUndefinedLabelIsReportedAsAnError(t *testing.T) {
	r := Assemble("test.s", "B nowhere\n")
	if r.OK() {
		t.Fatal("expected assembly to fail on an undefined label")
	}
}

func TestDuplicateLabelIsReportedAsAnError(t *testing.T) {
	r := Assemble("test.s", "x:\nHALT\nx:\nHALT\n")
	if r.OK() {
		t.Fatal("expected assembly to fail on a duplicate label")
	}
}
