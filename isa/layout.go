package isa

// Address-space layout constants shared by the assembler (which computes
// absolute LDA targets) and the VM's memory model (spec.md §3 "Memory").
// Kept in isa, the one leaf package both already depend on, rather than
// creating an assembler->vm import.
const (
	// ZeroPageSize is the length of the optional zero page when enabled.
	ZeroPageSize = 4096

	// TextStart is the first byte address of the read-only text segment.
	TextStart = 0x40_0000
	// TextEnd is one past the last byte address of the text segment.
	TextEnd = 0x1000_0000
	// DynamicEnd is one past the last byte address of the dynamic segment.
	DynamicEnd = 0x7F_FFFF_FFFC

	// InstrSize is the fixed width of a packed instruction word, in bytes.
	InstrSize = 4
)
