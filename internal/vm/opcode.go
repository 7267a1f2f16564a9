package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skeeto/brianscheme/internal/cell"
)

// Opcode and Instruction are aliases onto internal/cell's definitions —
// the bytecode shape is part of the heap object model's payload (the
// collector must trace through it), so it's defined there; this package
// re-exports it under the names dispatch code and callers actually use.
type Opcode = cell.Opcode
type Instruction = cell.Instruction

const (
	OpArgs    = cell.OpArgs
	OpArgsDot = cell.OpArgsDot
	OpReturn  = cell.OpReturn
	OpConst   = cell.OpConst
	OpFn      = cell.OpFn
	OpFjump   = cell.OpFjump
	OpTjump   = cell.OpTjump
	OpJump    = cell.OpJump
	OpFcallj  = cell.OpFcallj
	OpCallj   = cell.OpCallj
	OpLvar    = cell.OpLvar
	OpSave    = cell.OpSave
	OpGvar    = cell.OpGvar
	OpLset    = cell.OpLset
	OpGset    = cell.OpGset
	OpSetcc   = cell.OpSetcc
	OpCc      = cell.OpCc
	OpPop     = cell.OpPop
)

// heapIntern is the small slice of *heap.Heap that the symbol/bytecode
// round-trip primitives need, declared locally so this file doesn't need
// to import internal/heap just for two function signatures.
type heapIntern interface {
	MakeCharacter(r rune) *cell.Cell
	MakeSymbol(name string) *cell.Cell
	BoolFalse() *cell.Cell
}

// SymbolToBytecode implements the symbol->bytecode primitive
// (SPEC_FULL.md "SUPPLEMENTED FEATURES"): translate an opcode-mnemonic
// symbol cell into its character-encoded bytecode form, matching vm.c's
// symbol_to_code, or h.BoolFalse() if sym does not name a known opcode.
func SymbolToBytecode(h heapIntern, sym *cell.Cell) *cell.Cell {
	if sym.Tag != cell.Symbol {
		return h.BoolFalse()
	}
	op, ok := cell.OpcodeByName(sym.Symbol)
	if !ok {
		return h.BoolFalse()
	}
	return h.MakeCharacter(rune(op))
}

// BytecodeToSymbol implements the bytecode->symbol primitive: the inverse
// of SymbolToBytecode, matching vm.c's code_to_symbol_proc.
func BytecodeToSymbol(h heapIntern, code *cell.Cell) *cell.Cell {
	if code.Tag != cell.Character {
		return h.BoolFalse()
	}
	op := cell.Opcode(code.Character)
	if !op.IsValid() {
		return h.BoolFalse()
	}
	return h.MakeSymbol(op.String())
}

// Disassemble renders code the way vm.c's wb dumps a bytecode vector:
// one parenthesised (mnemonic . args) group per instruction. It is
// diagnostics tooling, used by tests asserting on instruction shape, not
// reader/compiler surface.
func Disassemble(code cell.Code) string {
	var b strings.Builder
	b.WriteString("#<bytecode:")
	for _, instr := range code {
		switch instr.Op {
		case cell.OpConst, cell.OpFn, cell.OpGvar, cell.OpGset:
			fmt.Fprintf(&b, " (%s %s)", instr.Op, formatVal(instr.Val))
		case cell.OpLvar, cell.OpLset:
			fmt.Fprintf(&b, " (%s %d %d)", instr.Op, instr.Arg1, instr.Arg2)
		case cell.OpPop, cell.OpReturn, cell.OpSetcc, cell.OpCc:
			fmt.Fprintf(&b, " (%s)", instr.Op)
		default:
			fmt.Fprintf(&b, " (%s %d)", instr.Op, instr.Arg1)
		}
	}
	b.WriteString(">")
	return b.String()
}

func formatVal(v *cell.Cell) string {
	if v == nil {
		return "()"
	}
	switch v.Tag {
	case cell.Symbol:
		return v.Symbol
	case cell.Fixnum:
		return strconv.FormatInt(v.Fixnum, 10)
	default:
		return v.Tag.String()
	}
}
