// Package parser implements the two-table, single-pass assembler described
// in spec.md §4.3: it walks the token stream once, packs each instruction
// through the shared isa codec, and resolves label references against the
// label table as soon as they're defined, using the pending-reference table
// to patch branches and LDA expansions whose target hadn't been seen yet.
package parser

import (
	"fmt"
	"strings"

	"lemu64/diag"
	"lemu64/isa"
)

// Result is everything an assembly run produces: the packed program plus
// enough bookkeeping for the loader and for fault diagnostics.
type Result struct {
	// Words is the assembled program, one packed instruction per slot at
	// text_start + 4*i.
	Words []uint32
	// Tags is the codec tag each word was assembled from (pseudo-ops expand
	// to their real tag, e.g. MOV records isa.ADD).
	Tags []isa.CodecTag
	// Positions is the source position of the mnemonic token that produced
	// each word, so a VM exception can point at its source line and column.
	Positions []diag.Position
	// Labels is the final label table, used by the VM fault handler to find
	// the nearest preceding label for a PC.
	Labels *LabelTable
	// Diagnostics holds every assembler error. Assembly failed if
	// Diagnostics.HasErrors().
	Diagnostics diag.List
	// NeedsRelocations is set when a B or CB branch target fell outside its
	// field's native range; spec.md leaves multi-instruction relocation
	// trampolines unimplemented, so this surfaces as an
	// unimplemented_far_jump diagnostic instead of a working program.
	NeedsRelocations bool
}

// OK reports whether assembly produced a usable program.
func (r *Result) OK() bool { return !r.Diagnostics.HasErrors() }

// Assemble runs the assembler over source and returns the full result.
// filename is used only to annotate diagnostics.
func Assemble(filename, source string) *Result {
	a := newAssembler(filename, source)
	a.run()
	return a.result()
}

type assembler struct {
	filename string
	lines    []string
	lexer    *Lexer
	cur      Token
	peek     Token

	errs    diag.List
	labels  *LabelTable
	pending *PendingTable

	words     []uint32
	tags      []isa.CodecTag
	positions []diag.Position

	needsRelocations bool
}

func newAssembler(filename, source string) *assembler {
	a := &assembler{
		filename: filename,
		lines:    strings.Split(source, "\n"),
		lexer:    NewLexer(filename, source),
		labels:   NewLabelTable(),
		pending:  NewPendingTable(),
	}
	a.advance()
	a.advance()
	return a
}

func (a *assembler) advance() {
	a.cur = a.peek
	a.peek = a.lexer.NextToken()
}

// run walks the whole token stream once, per spec.md §4.3: each line is
// empty, a label definition, or an instruction.
func (a *assembler) run() {
	for a.cur.Type != TokenEOF {
		switch {
		case a.cur.Type == TokenNewline:
			a.advance()

		case a.cur.Type == TokenColon:
			a.errorAt(a.cur, ErrEmptyLabel, "empty label name")
			a.failLine()

		case a.cur.Type == TokenDotIdentifier && a.peek.Type == TokenColon:
			a.errorAt(a.cur, ErrDotLabel, "label cannot contain '.'")
			a.failLine()

		case a.cur.Type == TokenIdentifier && a.peek.Type == TokenColon:
			a.assembleLabelDef()

		case a.cur.Type == TokenIdentifier || a.cur.Type == TokenDotIdentifier:
			a.assembleInstruction()

		default:
			a.errorAt(a.cur, ErrUnexpectedToken, fmt.Sprintf("unexpected token %s", a.cur.Type))
			a.failLine()
		}
	}

	for _, name := range a.pending.Remaining() {
		for _, ref := range a.pending.RefsFor(name) {
			a.errorAt(ref.Tok, ErrUndefinedLabel, fmt.Sprintf("undefined label %q", name))
		}
	}
}

func (a *assembler) assembleLabelDef() {
	nameTok := a.cur
	a.advance() // identifier
	a.advance() // ':'
	a.defineLabel(nameTok.Literal, nameTok)
	if a.cur.Type != TokenNewline && a.cur.Type != TokenEOF {
		a.errorAt(a.cur, ErrUnexpectedToken, "expected newline after label")
		a.failLine()
		return
	}
	if a.cur.Type == TokenNewline {
		a.advance()
	}
}

func (a *assembler) defineLabel(name string, tok Token) {
	instrIndex := len(a.words)
	if !a.labels.Define(name, instrIndex) {
		a.errorAt(tok, ErrDuplicateLabelName, fmt.Sprintf("label %q already defined", name))
		return
	}
	if refs, ok := a.pending.Take(name); ok {
		for _, ref := range refs {
			a.patch(ref, instrIndex)
		}
	}
}

// patch rewrites a previously-emitted placeholder word once its label's
// target instruction index is known.
func (a *assembler) patch(ref PendingRef, targetIndex int) {
	switch ref.Format {
	case PendingB:
		offset := int32(targetIndex - ref.InstrIndex)
		if !fitsSigned(offset, 26) {
			a.needsRelocations = true
			a.errorAt(ref.Tok, ErrUnimplementedFarJump, "branch target exceeds the native 26-bit range; relocations are not implemented")
			return
		}
		a.words[ref.InstrIndex] = (a.words[ref.InstrIndex] &^ 0x3FFFFFF) | (uint32(offset) & 0x3FFFFFF)

	case PendingCB:
		offset := int32(targetIndex - ref.InstrIndex)
		if !fitsSigned(offset, 19) {
			a.needsRelocations = true
			a.errorAt(ref.Tok, ErrUnimplementedFarJump, "branch target exceeds the native 19-bit range; relocations are not implemented")
			return
		}
		a.words[ref.InstrIndex] = (a.words[ref.InstrIndex] &^ (0x7FFFF << 5)) | ((uint32(offset) & 0x7FFFF) << 5)

	case PendingLDA:
		addr := uint64(isa.TextStart) + uint64(targetIndex)*isa.InstrSize
		for i := 0; i < 4; i++ {
			half := uint16(addr >> (16 * uint(i)))
			word := a.words[ref.InstrIndex+i]
			word = (word &^ (0xFFFF << 5)) | (uint32(half) << 5)
			a.words[ref.InstrIndex+i] = word
		}
	}
}

func fitsSigned(v int32, bits uint) bool {
	min := -(int32(1) << (bits - 1))
	max := (int32(1) << (bits - 1)) - 1
	return v >= min && v <= max
}

// assembleInstruction handles the four pseudo-instructions directly, then
// falls back to the codec table for everything else.
func (a *assembler) assembleInstruction() {
	mnemTok := a.cur

	switch mnemTok.Literal {
	case "MOV":
		a.assembleMOV(mnemTok)
		return
	case "LDA":
		a.assembleLDA(mnemTok)
		return
	case "CMP":
		a.assembleCMP(mnemTok)
		return
	case "CMPI":
		a.assembleCMPI(mnemTok)
		return
	}

	tag, found := isa.TheTable().Lookup(mnemTok.Literal)
	if !found {
		a.errorAt(mnemTok, ErrUnknownMnemonic, "unknown instruction mnemonic")
		a.failLine()
		return
	}
	entry := isa.TheTable().Entry(tag)
	a.advance() // past mnemonic

	var word uint32
	var ok bool
	switch entry.Style {
	case isa.StyleB:
		word, ok = a.assembleBranchLabel(entry, mnemTok, 0, PendingB, 26)
	case isa.StyleCB:
		word, ok = a.assembleBranchLabel(entry, mnemTok, 0, PendingCB, 19)
	case isa.StyleCBZ:
		var rt uint8
		rt, ok = a.expectReg(RegX)
		if ok {
			ok = a.expectComma()
		}
		if ok {
			word, ok = a.assembleBranchLabel(entry, mnemTok, rt, PendingCB, 19)
		}
	case isa.StyleIW:
		word, ok = a.parseIW(entry)
	default:
		word, ok = a.parseRegisterStyle(entry)
	}
	if !ok {
		a.failLine()
		return
	}
	a.emit(word, mnemTok, tag)
	a.expectLineEnd()
}

// assembleBranchLabel parses a trailing label operand and either resolves it
// immediately (backward reference) or registers a pending patch (forward
// reference). rt carries CBZ/CBNZ's tested register; it's ignored for B,
// whose format has no such field, and for B.cond, which instead packs the
// entry's fixed condition discriminator into that field.
func (a *assembler) assembleBranchLabel(entry *isa.CodecEntry, mnemTok Token, rt uint8, kind PendingFormat, bits uint) (uint32, bool) {
	if a.cur.Type == TokenDotIdentifier {
		a.errorAt(a.cur, ErrDotLabel, "label cannot contain '.'")
		return 0, false
	}
	if a.cur.Type != TokenIdentifier {
		a.errorAt(a.cur, ErrExpectedToken, "expected a label name")
		return 0, false
	}
	labelTok := a.cur
	a.advance()

	instrIndex := len(a.words)
	var offset int32
	if idx, ok := a.labels.Lookup(labelTok.Literal); ok {
		offset = int32(idx - instrIndex)
		if !fitsSigned(offset, bits) {
			a.needsRelocations = true
			a.errorAt(mnemTok, ErrUnimplementedFarJump, "branch target exceeds the native immediate range; relocations are not implemented")
			return 0, false
		}
	} else {
		a.pending.Add(labelTok.Literal, PendingRef{InstrIndex: instrIndex, Format: kind, Tok: labelTok})
	}

	if kind == PendingB {
		return isa.PackB(entry.Opcode, offset), true
	}
	cond := rt
	if entry.Style != isa.StyleCBZ {
		cond = *entry.Discriminator
	}
	return isa.PackCB(entry.Opcode, cond, offset), true
}

// MOV Xd, Xn -> ADD Xd, Xn, XZR
func (a *assembler) assembleMOV(mnemTok Token) {
	a.advance()
	rd, ok := a.expectReg(RegX)
	if ok {
		ok = a.expectComma()
	}
	var rn uint8
	if ok {
		rn, ok = a.expectReg(RegX)
	}
	if !ok {
		a.failLine()
		return
	}
	entry := isa.TheTable().Entry(isa.ADD)
	word := isa.PackR(entry.Opcode, isa.RFields{Rd: rd, Rn: rn, Rm: MaxRegisterIndex})
	a.emit(word, mnemTok, isa.ADD)
	a.expectLineEnd()
}

// CMP Xn, Xm -> SUBS XZR, Xn, Xm
func (a *assembler) assembleCMP(mnemTok Token) {
	a.advance()
	rn, ok := a.expectReg(RegX)
	if ok {
		ok = a.expectComma()
	}
	var rm uint8
	if ok {
		rm, ok = a.expectReg(RegX)
	}
	if !ok {
		a.failLine()
		return
	}
	entry := isa.TheTable().Entry(isa.SUBS)
	word := isa.PackR(entry.Opcode, isa.RFields{Rd: MaxRegisterIndex, Rn: rn, Rm: rm})
	a.emit(word, mnemTok, isa.SUBS)
	a.expectLineEnd()
}

// CMPI Xn, #imm -> SUBIS XZR, Xn, #imm
func (a *assembler) assembleCMPI(mnemTok Token) {
	a.advance()
	rn, ok := a.expectReg(RegX)
	if ok {
		ok = a.expectComma()
	}
	var imm int64
	var immTok Token
	if ok {
		immTok = a.cur
		imm, ok = a.expectInt()
	}
	if !ok {
		a.failLine()
		return
	}
	if imm < -2048 || imm > 2047 {
		a.errorAt(immTok, ErrImmediateOverflow, "immediate must fit in a signed 12-bit field")
		a.failLine()
		return
	}
	entry := isa.TheTable().Entry(isa.SUBIS)
	word := isa.PackI(entry.Opcode, MaxRegisterIndex, rn, int32(imm))
	a.emit(word, mnemTok, isa.SUBIS)
	a.expectLineEnd()
}

// LDA Xd, label -> 1-4 MOVZ/MOVK instructions loading the label's absolute
// byte address. A forward reference always reserves the full 4 instructions
// (trailing zero-half MOVKs can only be omitted once the address is known),
// patched in place once the label is defined.
func (a *assembler) assembleLDA(mnemTok Token) {
	a.advance()
	rd, ok := a.expectReg(RegX)
	if ok {
		ok = a.expectComma()
	}
	if !ok {
		a.failLine()
		return
	}
	if a.cur.Type == TokenDotIdentifier {
		a.errorAt(a.cur, ErrDotLabel, "label cannot contain '.'")
		a.failLine()
		return
	}
	if a.cur.Type != TokenIdentifier {
		a.errorAt(a.cur, ErrExpectedToken, "expected a label name")
		a.failLine()
		return
	}
	labelTok := a.cur
	a.advance()

	startIndex := len(a.words)
	if idx, ok := a.labels.Lookup(labelTok.Literal); ok {
		addr := uint64(isa.TextStart) + uint64(idx)*isa.InstrSize
		a.emitLDAResolved(rd, addr, mnemTok)
	} else {
		a.emitLDAPlaceholder(rd, mnemTok)
		a.pending.Add(labelTok.Literal, PendingRef{InstrIndex: startIndex, Format: PendingLDA, Tok: labelTok})
	}
	a.expectLineEnd()
}

func (a *assembler) emitLDAResolved(rd uint8, addr uint64, mnemTok Token) {
	halves := [4]uint16{
		uint16(addr),
		uint16(addr >> 16),
		uint16(addr >> 32),
		uint16(addr >> 48),
	}
	n := 4
	for n > 1 && halves[n-1] == 0 {
		n--
	}
	movz := isa.TheTable().Entry(isa.MOVZ)
	movk := isa.TheTable().Entry(isa.MOVK)
	a.emit(isa.PackIW(movz.Opcode, rd, halves[0], 0), mnemTok, isa.MOVZ)
	for i := 1; i < n; i++ {
		a.emit(isa.PackIW(movk.Opcode, rd, halves[i], uint8(i)), mnemTok, isa.MOVK)
	}
}

func (a *assembler) emitLDAPlaceholder(rd uint8, mnemTok Token) {
	movz := isa.TheTable().Entry(isa.MOVZ)
	movk := isa.TheTable().Entry(isa.MOVK)
	a.emit(isa.PackIW(movz.Opcode, rd, 0, 0), mnemTok, isa.MOVZ)
	for i := 1; i < 4; i++ {
		a.emit(isa.PackIW(movk.Opcode, rd, 0, uint8(i)), mnemTok, isa.MOVK)
	}
}

// parseIW parses MOVZ/MOVK's "Xd, #imm16 [, LSL #s]" grammar.
func (a *assembler) parseIW(entry *isa.CodecEntry) (uint32, bool) {
	rd, ok := a.expectReg(RegX)
	if !ok {
		return 0, false
	}
	if !a.expectComma() {
		return 0, false
	}
	immTok := a.cur
	imm, ok := a.expectInt()
	if !ok {
		return 0, false
	}
	if imm < 0 || imm > 0xFFFF {
		a.errorAt(immTok, ErrMovImmediateOverflow, "immediate must fit in an unsigned 16-bit field")
		return 0, false
	}

	var shamtX16 uint8
	if a.cur.Type == TokenComma {
		a.advance()
		if a.cur.Type != TokenIdentifier || a.cur.Literal != "LSL" {
			a.errorAt(a.cur, ErrMovNoLSL, "expected 'LSL'")
			return 0, false
		}
		a.advance()
		shTok := a.cur
		sh, ok := a.expectInt()
		if !ok {
			return 0, false
		}
		switch sh {
		case 0:
			shamtX16 = 0
		case 16:
			shamtX16 = 1
		case 32:
			shamtX16 = 2
		case 48:
			shamtX16 = 3
		default:
			a.errorAt(shTok, ErrMovShiftOverflow, "shift must be one of 0, 16, 32, 48")
			return 0, false
		}
	}
	return isa.PackIW(entry.Opcode, rd, uint16(imm), shamtX16), true
}

// parseRegisterStyle handles every operand style that isn't a branch or
// MOVZ/MOVK: plain register, FP, immediate, and memory-operand forms.
func (a *assembler) parseRegisterStyle(entry *isa.CodecEntry) (uint32, bool) {
	switch entry.Style {
	case isa.StyleXXX:
		rd, ok := a.expectReg(RegX)
		if ok {
			ok = a.expectComma()
		}
		var rn, rm uint8
		if ok {
			rn, ok = a.expectReg(RegX)
		}
		if ok {
			ok = a.expectComma()
		}
		if ok {
			rm, ok = a.expectReg(RegX)
		}
		if !ok {
			return 0, false
		}
		return isa.PackR(entry.Opcode, isa.RFields{Rd: rd, Rn: rn, Rm: rm}), true

	case isa.StyleXXShamt:
		rd, ok := a.expectReg(RegX)
		if ok {
			ok = a.expectComma()
		}
		var rn uint8
		if ok {
			rn, ok = a.expectReg(RegX)
		}
		if ok {
			ok = a.expectComma()
		}
		if !ok {
			return 0, false
		}
		shTok := a.cur
		sh, ok := a.expectInt()
		if !ok {
			return 0, false
		}
		if sh < 0 || sh > 63 {
			a.errorAt(shTok, ErrShiftAmountOverflow, "shift amount must be 0-63")
			return 0, false
		}
		return isa.PackR(entry.Opcode, isa.RFields{Rd: rd, Rn: rn, Shamt: uint8(sh)}), true

	case isa.StyleX:
		rn, ok := a.expectReg(RegX)
		if !ok {
			return 0, false
		}
		return isa.PackR(entry.Opcode, isa.RFields{Rn: rn}), true

	case isa.StyleSSS, isa.StyleDDD:
		kind := RegS
		if entry.Style == isa.StyleDDD {
			kind = RegD
		}
		rd, ok := a.expectReg(kind)
		if ok {
			ok = a.expectComma()
		}
		var rn, rm uint8
		if ok {
			rn, ok = a.expectReg(kind)
		}
		if ok {
			ok = a.expectComma()
		}
		if ok {
			rm, ok = a.expectReg(kind)
		}
		if !ok {
			return 0, false
		}
		return isa.PackR(entry.Opcode, isa.RFields{Rd: rd, Rn: rn, Rm: rm, Shamt: *entry.Discriminator}), true

	case isa.StyleSS, isa.StyleDD:
		kind := RegS
		if entry.Style == isa.StyleDD {
			kind = RegD
		}
		rn, ok := a.expectReg(kind)
		if ok {
			ok = a.expectComma()
		}
		var rm uint8
		if ok {
			rm, ok = a.expectReg(kind)
		}
		if !ok {
			return 0, false
		}
		return isa.PackR(entry.Opcode, isa.RFields{Rn: rn, Rm: rm, Shamt: *entry.Discriminator}), true

	case isa.StyleEmpty:
		return isa.PackR(entry.Opcode, isa.RFields{}), true

	case isa.StyleTime:
		var rd uint8
		if a.cur.Type == TokenXReg {
			rd = a.cur.RegIndex
			a.advance()
		}
		return isa.PackR(entry.Opcode, isa.RFields{Rd: rd}), true

	case isa.StylePrnt:
		var idx, kindCode uint8
		switch a.cur.Type {
		case TokenXReg:
			idx, kindCode = a.cur.RegIndex, 0
		case TokenSReg:
			idx, kindCode = a.cur.RegIndex, 1
		case TokenDReg:
			idx, kindCode = a.cur.RegIndex, 2
		default:
			a.errorAt(a.cur, ErrExpectedToken, "expected a register operand")
			return 0, false
		}
		a.advance()
		return isa.PackR(entry.Opcode, isa.RFields{Rd: idx, Rn: kindCode}), true

	case isa.StyleI:
		rd, ok := a.expectReg(RegX)
		if ok {
			ok = a.expectComma()
		}
		var rn uint8
		if ok {
			rn, ok = a.expectReg(RegX)
		}
		if ok {
			ok = a.expectComma()
		}
		if !ok {
			return 0, false
		}
		immTok := a.cur
		imm, ok := a.expectInt()
		if !ok {
			return 0, false
		}
		if imm < -2048 || imm > 2047 {
			a.errorAt(immTok, ErrImmediateOverflow, "immediate must fit in a signed 12-bit field")
			return 0, false
		}
		return isa.PackI(entry.Opcode, rd, rn, int32(imm)), true

	case isa.StyleLoadX, isa.StyleLoadS, isa.StyleLoadD:
		kind := RegX
		switch entry.Style {
		case isa.StyleLoadS:
			kind = RegS
		case isa.StyleLoadD:
			kind = RegD
		}
		rt, ok := a.expectReg(kind)
		if ok {
			ok = a.expectComma()
		}
		if ok {
			ok = a.expect(TokenLBracket, "'['")
		}
		var rn uint8
		if ok {
			rn, ok = a.expectReg(RegX)
		}
		if !ok {
			return 0, false
		}
		var off int64
		if a.cur.Type == TokenComma {
			a.advance()
			offTok := a.cur
			var ok2 bool
			off, ok2 = a.expectInt()
			if !ok2 {
				return 0, false
			}
			if off < 0 || off > 511 {
				a.errorAt(offTok, ErrLoadStoreOffsetOverflow, "load/store offset must fit in an unsigned 9-bit field")
				return 0, false
			}
		}
		if !a.expect(TokenRBracket, "']'") {
			return 0, false
		}
		return isa.PackD(entry.Opcode, rt, rn, 0, uint16(off)), true

	case isa.StyleSTXR:
		rs, ok := a.expectReg(RegX)
		if ok {
			ok = a.expectComma()
		}
		var rt uint8
		if ok {
			rt, ok = a.expectReg(RegX)
		}
		if ok {
			ok = a.expectComma()
		}
		if ok {
			ok = a.expect(TokenLBracket, "'['")
		}
		var rn uint8
		if ok {
			rn, ok = a.expectReg(RegX)
		}
		if ok {
			ok = a.expect(TokenRBracket, "']'")
		}
		if !ok {
			return 0, false
		}
		return isa.PackD(entry.Opcode, rt, rn, 0, uint16(rs)), true

	default:
		return 0, false
	}
}

// --- token-stream helpers ---

func (a *assembler) expectReg(kind RegKind) (uint8, bool) {
	want := regTokenType(kind)
	if a.cur.Type != want {
		a.errorAt(a.cur, ErrExpectedToken, fmt.Sprintf("expected a %s register, got %s", regKindName(kind), a.cur.Type))
		return 0, false
	}
	idx := a.cur.RegIndex
	a.advance()
	return idx, true
}

func (a *assembler) expectComma() bool { return a.expect(TokenComma, "','") }

func (a *assembler) expect(tt TokenType, desc string) bool {
	if a.cur.Type != tt {
		a.errorAt(a.cur, ErrExpectedToken, "expected "+desc)
		return false
	}
	a.advance()
	return true
}

func (a *assembler) expectInt() (int64, bool) {
	if a.cur.Type != TokenInteger {
		a.errorAt(a.cur, ErrExpectedToken, "expected an integer")
		return 0, false
	}
	v := a.cur.IntValue
	a.advance()
	return v, true
}

func (a *assembler) expectLineEnd() {
	if a.cur.Type == TokenNewline {
		a.advance()
		return
	}
	if a.cur.Type == TokenEOF {
		return
	}
	a.errorAt(a.cur, ErrUnexpectedToken, "expected newline")
	a.failLine()
}

// failLine consumes tokens up to and including the next newline (or EOF),
// recovering from an error so assembly can keep accumulating diagnostics
// instead of stopping at the first one (spec.md §4.3, §7).
func (a *assembler) failLine() {
	for a.cur.Type != TokenNewline && a.cur.Type != TokenEOF {
		a.advance()
	}
	if a.cur.Type == TokenNewline {
		a.advance()
	}
}

func (a *assembler) emit(word uint32, tok Token, tag isa.CodecTag) {
	a.words = append(a.words, word)
	a.tags = append(a.tags, tag)
	a.positions = append(a.positions, a.tokenPos(tok))
}

func regKindName(k RegKind) string {
	switch k {
	case RegS:
		return "S"
	case RegD:
		return "D"
	default:
		return "X"
	}
}

func (a *assembler) tokenPos(tok Token) diag.Position {
	return diag.Position{File: a.filename, Line: tok.Line, Col: tok.Col}
}

func (a *assembler) sourceLine(line int) string {
	idx := line - 1
	if idx < 0 || idx >= len(a.lines) {
		return ""
	}
	return strings.TrimRight(a.lines[idx], "\r")
}

func (a *assembler) errorAt(tok Token, kind ErrorKind, msg string) {
	width := tok.End - tok.Start
	if width < 1 {
		width = 1
	}
	a.errs.Add(diag.Diagnostic{
		Pos:     a.tokenPos(tok),
		Message: msg,
		Line:    a.sourceLine(tok.Line),
		Width:   width,
		Kind:    kind.String(),
	})
}

func (a *assembler) result() *Result {
	return &Result{
		Words:            a.words,
		Tags:             a.tags,
		Positions:        a.positions,
		Labels:           a.labels,
		Diagnostics:      a.errs,
		NeedsRelocations: a.needsRelocations,
	}
}
