package isa

import "testing"

func TestPackUnpackR(t *testing.T) {
	f := RFields{Rd: 3, Rn: 17, Rm: 31, Shamt: 41}
	word := PackR(0x123, f)
	got := UnpackR(word)
	if got != f {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestPackUnpackIImmediateSignExtends(t *testing.T) {
	cases := []int32{0, 1, -1, 2047, -2048}
	for _, imm := range cases {
		word := PackI(0x3FF, 5, 9, imm)
		got := UnpackI(word)
		if int32(got.Imm12) != imm {
			t.Fatalf("imm12 %d: got %d after round trip", imm, got.Imm12)
		}
	}
}

func TestPackUnpackD(t *testing.T) {
	f := DFields{Rt: 1, Rn: 2, Op: 3, Addr9: 0x1FF}
	word := PackD(0x7FF, f.Rt, f.Rn, f.Op, f.Addr9)
	got := UnpackD(word)
	if got != f {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestPackUnpackBSignExtends(t *testing.T) {
	cases := []int32{0, 1, -1, (1 << 25) - 1, -(1 << 25)}
	for _, addr := range cases {
		word := PackB(0x3F, addr)
		got := UnpackB(word)
		if got.Addr26 != addr {
			t.Fatalf("addr26 %d: got %d after round trip", addr, got.Addr26)
		}
	}
}

func TestPackUnpackCBSignExtends(t *testing.T) {
	cases := []int32{0, 1, -1, (1 << 18) - 1, -(1 << 18)}
	for _, addr := range cases {
		word := PackCB(0xFF, 0x1A, addr)
		got := UnpackCB(word)
		if got.Addr19 != addr {
			t.Fatalf("addr19 %d: got %d after round trip", addr, got.Addr19)
		}
		if got.Rt != 0x1A {
			t.Fatalf("rt: got %d, want 0x1A", got.Rt)
		}
	}
}

func TestPackUnpackIW(t *testing.T) {
	f := IWFields{Rd: 7, Imm16: 0xBEEF, ShamtX16: 2}
	word := PackIW(0x1FF, f.Rd, f.Imm16, f.ShamtX16)
	got := UnpackIW(word)
	if got != f {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestFormatString(t *testing.T) {
	cases := map[Format]string{
		FormatR: "R", FormatI: "I", FormatD: "D",
		FormatB: "B", FormatCB: "CB", FormatIW: "IW",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Fatalf("Format(%d).String() = %q, want %q", f, got, want)
		}
	}
}
