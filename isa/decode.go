package isa

// Decode maps a 32-bit instruction word to its codec entry. The fast path is
// a single array index on the top 11 bits; only the ambiguous slots (the FP
// single/double family sharing an R-format opcode, and the B.cond family
// sharing a CB-format opcode) fall through to a short linear scan keyed on
// the format's discriminator field. Returns ok=false if no entry matches
// (the caller raises the "illegal instruction" exception).
func Decode(word uint32) (*CodecEntry, bool) {
	prefix := int(word >> 21)
	switch idx := table.fast[prefix]; idx {
	case unset:
		return nil, false
	case ambiguous:
		return table.decodeAmbiguous(word, prefix)
	default:
		return &table.Entries[idx], true
	}
}

func (t *Table) decodeAmbiguous(word uint32, prefix int) (*CodecEntry, bool) {
	for i := range t.Entries {
		e := &t.Entries[i]
		start, end := e.prefixRange()
		if prefix < start || prefix > end {
			continue
		}
		if e.Discriminator == nil {
			// An unambiguous entry never shares a slot with another entry
			// (checkInvariant guarantees it), so this slot would not have
			// been marked ambiguous in the first place.
			return e, true
		}
		if discriminatorOf(e.Format, word) == *e.Discriminator {
			return e, true
		}
	}
	return nil, false
}

// discriminatorOf extracts the field that disambiguates overlapping codec
// entries: R-format's shamt, or the low 4 bits of CB-format's rt (the
// condition code for the B.cond family).
func discriminatorOf(f Format, word uint32) uint8 {
	switch f {
	case FormatR:
		return UnpackR(word).Shamt
	case FormatCB:
		return UnpackCB(word).Rt & 0xF
	default:
		return 0
	}
}
