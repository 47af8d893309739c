package vm

import "lemu64/isa"

// Fixed X-register indices named by the assembler's alias keywords
// (spec.md §4.1) and used directly by branch-with-link and reset state.
const (
	RegIP0 = 16
	RegIP1 = 17
	RegSP  = 28
	RegFP  = 29
	RegLR  = 30
	RegZR  = 31
)

// NZCV is the four condition flags (spec.md §3 "Condition flags").
type NZCV struct {
	N, Z, C, V bool
}

// CPU holds the three register files and condition flags spec.md §3
// describes: 32 signed 64-bit X registers, 32 single- and 32
// double-precision FP registers. Grounded on the teacher's CPU/CPSR shape
// (vm/cpu.go) but widened from ARM2's 15 32-bit integer registers to this
// ISA's wider, three-bank register file, and with X31 hardwired to zero.
type CPU struct {
	X [32]int64
	S [32]float32
	D [32]float64

	PC int64 // 0-based instruction index into the text segment

	Flags NZCV

	Cycles uint64
}

// NewCPU returns a CPU in its spec-mandated reset state: SP at
// dynamic_end-8, LR at a sentinel one word before text_end (the
// "terminating link register" a top-level CALL can safely branch to).
func NewCPU() *CPU {
	c := &CPU{}
	c.X[RegSP] = int64(isa.DynamicEnd - 8)
	c.X[RegLR] = int64(isa.TextEnd - isa.InstrSize)
	return c
}

// GetX returns the value of X register reg; X31 always reads zero.
func (c *CPU) GetX(reg uint8) int64 {
	if reg == RegZR {
		return 0
	}
	return c.X[reg]
}

// SetX sets X register reg. Writes to X31 are discarded (spec.md §3: "X31
// is a hardwired zero ... writes are discarded").
func (c *CPU) SetX(reg uint8, v int64) {
	if reg == RegZR {
		return
	}
	c.X[reg] = v
}
