package isa

import "testing"

func TestTableBuildsWithoutPanic(t *testing.T) {
	// buildTable runs checkInvariant; a bad opcode assignment panics at
	// package init. Referencing TheTable() here just makes sure the test
	// binary actually touches it.
	if TheTable() == nil {
		t.Fatal("TheTable() returned nil")
	}
}

func TestEveryTagRoundTripsThroughItsOwnOpcodeRange(t *testing.T) {
	for i := range entries {
		e := &entries[i]
		start, end := e.prefixRange()
		if start < 0 || end > 2047 || start > end {
			t.Fatalf("%v: invalid prefix range [%d,%d]", e.Tag, start, end)
		}

		word := wordWithPrefix(e, start)
		got, ok := Decode(word)
		if !ok {
			t.Fatalf("%v: word %#08x (prefix %d) failed to decode", e.Tag, word, start)
		}
		if got.Tag != e.Tag {
			t.Fatalf("%v: word %#08x decoded as %v instead", e.Tag, word, got.Tag)
		}
	}
}

// wordWithPrefix builds a minimal word whose top 11 bits fall at prefix and
// whose discriminator field (if any) matches e, so Decode resolves to e even
// from an ambiguous slot.
func wordWithPrefix(e *CodecEntry, prefix int) uint32 {
	word := uint32(prefix) << 21
	if e.Discriminator == nil {
		return word
	}
	switch e.Format {
	case FormatR:
		word |= uint32(*e.Discriminator&0x3F) << 10
	case FormatCB:
		word |= uint32(*e.Discriminator & 0xF)
	}
	return word
}

func TestNoOverlapWithoutDiscriminator(t *testing.T) {
	for i := range entries {
		a := &entries[i]
		aStart, aEnd := a.prefixRange()
		for j := i + 1; j < len(entries); j++ {
			b := &entries[j]
			bStart, bEnd := b.prefixRange()
			if aEnd < bStart || bEnd < aStart {
				continue
			}
			if a.Discriminator == nil || b.Discriminator == nil {
				t.Fatalf("%v and %v overlap ([%d,%d] vs [%d,%d]) without a discriminator", a.Tag, b.Tag, aStart, aEnd, bStart, bEnd)
			}
			if a.Format == b.Format && *a.Discriminator == *b.Discriminator {
				t.Fatalf("%v and %v overlap with identical discriminator %d", a.Tag, b.Tag, *a.Discriminator)
			}
		}
	}
}

func TestMnemonicLookupCoversEveryEntry(t *testing.T) {
	tb := TheTable()
	for i := range entries {
		e := &entries[i]
		for _, m := range e.Mnemonics {
			tag, ok := tb.Lookup(m)
			if !ok {
				t.Fatalf("mnemonic %q not found", m)
			}
			if tag != e.Tag {
				t.Fatalf("mnemonic %q resolved to %v, want %v", m, tag, e.Tag)
			}
		}
	}
}

func TestUnknownMnemonicNotFound(t *testing.T) {
	if _, ok := TheTable().Lookup("BOGUS"); ok {
		t.Fatal("BOGUS unexpectedly resolved to a codec tag")
	}
}

func TestDecodeRejectsUnassignedPrefix(t *testing.T) {
	// 0x7FF is not a B/IW/CB/I/D/R opcode band in the current catalogue.
	word := uint32(0x7FF) << 21
	if _, ok := Decode(word); ok {
		t.Fatal("expected decode failure for an unassigned opcode prefix")
	}
}

func TestConditionalBranchFamilySharesOpcodeDiscriminatedByCond(t *testing.T) {
	tb := TheTable()
	conds := []CodecTag{BEQ, BNE, BLO, BHS, BMI, BPL, BVS, BVC, BHI, BLS, BGE, BLT, BGT, BLE}
	seen := map[uint8]CodecTag{}
	for _, tag := range conds {
		e := tb.Entry(tag)
		if e.Discriminator == nil {
			t.Fatalf("%v: expected a condition discriminator", tag)
		}
		if prev, ok := seen[*e.Discriminator]; ok {
			t.Fatalf("%v and %v share condition code %d", tag, prev, *e.Discriminator)
		}
		seen[*e.Discriminator] = tag

		word := PackCB(e.Opcode, uint8(*e.Discriminator), 7)
		got, ok := Decode(word)
		if !ok || got.Tag != tag {
			t.Fatalf("%v: round trip failed, got %v ok=%v", tag, got, ok)
		}
	}
}

func TestFPSingleDoubleFamilyDiscriminatedByShamt(t *testing.T) {
	tb := TheTable()
	pairs := [][2]CodecTag{
		{FADDS, FADDD}, {FSUBS, FSUBD}, {FMULS, FMULD}, {FDIVS, FDIVD}, {FCMPS, FCMPD},
	}
	for _, p := range pairs {
		single, double := tb.Entry(p[0]), tb.Entry(p[1])
		if single.Opcode != double.Opcode {
			t.Fatalf("%v and %v expected to share an opcode, got %#x and %#x", p[0], p[1], single.Opcode, double.Opcode)
		}
		if *single.Discriminator == *double.Discriminator {
			t.Fatalf("%v and %v share a discriminator", p[0], p[1])
		}
		sWord := PackR(single.Opcode, RFields{Shamt: *single.Discriminator})
		dWord := PackR(double.Opcode, RFields{Shamt: *double.Discriminator})
		gotS, ok := Decode(sWord)
		if !ok || gotS.Tag != p[0] {
			t.Fatalf("%v: round trip failed, got %v ok=%v", p[0], gotS, ok)
		}
		gotD, ok := Decode(dWord)
		if !ok || gotD.Tag != p[1] {
			t.Fatalf("%v: round trip failed, got %v ok=%v", p[1], gotD, ok)
		}
	}
}
