package vm

// Kind enumerates the fault categories spec.md §7 lists for the VM: unknown,
// simd, ies, sys, instr, pc, data, fpe, wpt, bkpt. Once a VM raises one it
// moves to the faulted state and stays there (spec.md §3 "State machine").
type Kind int

const (
	KindUnknown Kind = iota
	KindSIMD
	KindIES
	KindSys
	KindInstr
	KindPC
	KindData
	KindFPE
	KindWPT
	KindBkpt
)

// String is the snake_case tag used in diagnostics' Kind field.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindSIMD:
		return "simd"
	case KindIES:
		return "ies"
	case KindSys:
		return "sys"
	case KindInstr:
		return "instr"
	case KindPC:
		return "pc"
	case KindData:
		return "data"
	case KindFPE:
		return "fpe"
	case KindWPT:
		return "wpt"
	case KindBkpt:
		return "bkpt"
	}
	return "unknown"
}

// displayPrefix is the human-readable noun phrase used when rendering an
// exception as a diagnostic message, e.g. "breakpoint exception: reached halt".
func (k Kind) displayPrefix() string {
	switch k {
	case KindUnknown:
		return "unknown exception"
	case KindSIMD:
		return "simd exception"
	case KindIES:
		return "illegal execution state exception"
	case KindSys:
		return "supervisor call exception"
	case KindInstr:
		return "instruction exception"
	case KindPC:
		return "program counter exception"
	case KindData:
		return "data exception"
	case KindFPE:
		return "floating-point exception"
	case KindWPT:
		return "watchpoint exception"
	case KindBkpt:
		return "breakpoint exception"
	}
	return "unknown exception"
}

// AccessKind distinguishes a data exception's direction, matching spec.md
// §7's data{kind: load|store, addr} payload.
type AccessKind int

const (
	AccessLoad AccessKind = iota
	AccessStore
)

// Exception is a raised VM fault. Addr and Access are only meaningful when
// Kind == KindData.
type Exception struct {
	Kind    Kind
	Message string
	Access  AccessKind
	Addr    uint64
}

func (e *Exception) Error() string { return e.Message }

func dataFault(access AccessKind, addr uint64) *Exception {
	verb := "load"
	if access == AccessStore {
		verb = "store"
	}
	return &Exception{
		Kind:    KindData,
		Access:  access,
		Addr:    addr,
		Message: "memory " + verb + " fault",
	}
}
