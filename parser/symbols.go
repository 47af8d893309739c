package parser

// LabelTable is the ordered mapping from label name to the 0-based index in
// the instruction vector it precedes (spec.md §3 "Label table"). Insertion
// order is kept so that Names lists labels deterministically, in definition
// order.
type LabelTable struct {
	index map[string]int
	order []string
}

// NewLabelTable creates an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{index: make(map[string]int)}
}

// Define records name at instrIndex. Returns false if name is already
// defined (spec.md: "Duplicate definitions are errors").
func (lt *LabelTable) Define(name string, instrIndex int) bool {
	if _, exists := lt.index[name]; exists {
		return false
	}
	lt.index[name] = instrIndex
	lt.order = append(lt.order, name)
	return true
}

// Lookup returns the instruction index a label was defined at.
func (lt *LabelTable) Lookup(name string) (int, bool) {
	idx, ok := lt.index[name]
	return idx, ok
}

// Names returns every defined label in definition order.
func (lt *LabelTable) Names() []string { return lt.order }

// PendingFormat is the instruction shape a deferred patch applies to
// (spec.md §3 "Pending reference table").
type PendingFormat int

const (
	PendingB PendingFormat = iota
	PendingCB
	PendingLDA
)

// PendingRef is one deferred patch: an instruction (or, for LDA, the first
// of the four reserved MOVZ/MOVK instructions) waiting on a label's address. Tok is
// the label-name token at the reference site, kept so an unresolved or
// out-of-range reference can still point a diagnostic at the right source
// location once the file has been fully consumed.
type PendingRef struct {
	InstrIndex int
	Format     PendingFormat
	Tok        Token
}

// PendingTable maps an unresolved label name to every reference still
// waiting on its definition. Entries are removed as soon as the label is
// defined and its references are patched; whatever remains once the file
// is fully consumed becomes "undefined label" diagnostics, reported in the
// order the names were first referenced.
type PendingTable struct {
	refs  map[string][]PendingRef
	order []string
}

// NewPendingTable creates an empty pending-reference table.
func NewPendingTable() *PendingTable {
	return &PendingTable{refs: make(map[string][]PendingRef)}
}

// Add appends a deferred reference to name.
func (pt *PendingTable) Add(name string, ref PendingRef) {
	if _, exists := pt.refs[name]; !exists {
		pt.order = append(pt.order, name)
	}
	pt.refs[name] = append(pt.refs[name], ref)
}

// Take removes and returns every pending reference to name, if any.
func (pt *PendingTable) Take(name string) ([]PendingRef, bool) {
	refs, ok := pt.refs[name]
	if ok {
		delete(pt.refs, name)
	}
	return refs, ok
}

// Remaining returns the names still unresolved, in first-referenced order.
func (pt *PendingTable) Remaining() []string {
	var out []string
	for _, name := range pt.order {
		if _, ok := pt.refs[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// RefsFor returns the deferred references for an unresolved name, without
// removing them. Used when reporting "undefined label" for every reference,
// not just the first.
func (pt *PendingTable) RefsFor(name string) []PendingRef { return pt.refs[name] }
