package cell

import "fmt"

// Opcode enumerates the bytecode VM's instruction set (spec.md §4.3, §6),
// in the order original_source/vm.c's opcode_table macro declares them.
// It lives here, alongside Cell, because a compiled_proc's bytecode is
// part of the heap object model's payload shape: the collector must be
// able to trace through every constant an instruction embeds (see
// Instruction.Val below), the same way it traces a vector's elements.
type Opcode uint8

const (
	OpArgs Opcode = iota
	OpArgsDot
	OpReturn
	OpConst
	OpFn
	OpFjump
	OpTjump
	OpJump
	OpFcallj
	OpCallj
	OpLvar
	OpSave
	OpGvar
	OpLset
	OpGset
	OpSetcc
	OpCc
	OpPop
	InvalidOpcode
)

var opcodeNames = [...]string{
	OpArgs:    "args",
	OpArgsDot: "argsdot",
	OpReturn:  "return",
	OpConst:   "const",
	OpFn:      "fn",
	OpFjump:   "fjump",
	OpTjump:   "tjump",
	OpJump:    "jump",
	OpFcallj:  "fcallj",
	OpCallj:   "callj",
	OpLvar:    "lvar",
	OpSave:    "save",
	OpGvar:    "gvar",
	OpLset:    "lset",
	OpGset:    "gset",
	OpSetcc:   "setcc",
	OpCc:      "cc",
	OpPop:     "pop",
}

// IsValid reports whether o is one of the declared opcodes.
func (o Opcode) IsValid() bool {
	return int(o) < len(opcodeNames) && opcodeNames[o] != ""
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// OpcodeByName mirrors vm.c's symbol_to_code, minus the symbol-interning
// step (callers already have the mnemonic as a string, typically from a
// symbol cell's Symbol field).
func OpcodeByName(name string) (Opcode, bool) {
	for op, s := range opcodeNames {
		if s == name {
			return Opcode(op), true
		}
	}
	return InvalidOpcode, false
}

// Instruction is one already-resolved step of a compiled procedure's
// bytecode. spec.md §6 describes the compiler hoisting const/fn/gvar/gset
// operands into a per-procedure constant pool and leaving an index in the
// instruction stream; since no compiler exists in this core (spec.md §1
// scopes it out as an external collaborator), Val holds the resolved cell
// directly rather than a pool index — same semantic content, simpler
// encoding. Arg1/Arg2 hold resolved integers: frame/slot indices for
// lvar/lset, argument counts for args/argsdot/callj/fcallj, and absolute
// instruction indices for jump/tjump/fjump/save.
type Instruction struct {
	Op   Opcode
	Arg1 int
	Arg2 int
	Val  *Cell
}

// Code is a compiled procedure's bytecode: a plain Go slice rather than a
// heap-allocated vector cell, since it is write-once compiler (or in this
// core's case, builder) output that is never mutated after a procedure is
// built, and Go's own collector already keeps it alive for exactly as
// long as the owning Cell is alive. The one place this matters for our
// collector is reachability of the *cell.Cell values embedded in Val
// fields — see internal/heap's children(), which walks Code explicitly
// for that reason.
type Code []Instruction
