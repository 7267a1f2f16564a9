package vm

import "github.com/skeeto/brianscheme/internal/cell"

// InstructionBuilder assembles a bytecode vector (a []Instruction) without
// going through a compiler or reader — scaffolding for tests and the
// cmd/brianscheme demo (SPEC_FULL.md "New: Instruction Builder"), grounded
// on original_source/vm.c's make_instr, which builds instructions
// programmatically for exactly the same reason: cc_bytecode has no source
// form to compile from.
//
// Label/Jump/Tjump/Fjump defer resolving their target to an absolute
// instruction index until Build, so callers can emit a backward or
// forward jump before the label's position is known.
type InstructionBuilder struct {
	instrs []Instruction
	labels map[int]int // label id -> resolved instruction index, once Mark'd
	fixups []fixup
	nextID int
}

type fixup struct {
	instrIndex int
	labelID    int
}

// Label is an opaque handle returned by NewLabel and consumed by Mark,
// Jump, Tjump, and Fjump.
type Label int

func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{labels: make(map[int]int)}
}

// NewLabel allocates a fresh, as-yet-unmarked label.
func (b *InstructionBuilder) NewLabel() Label {
	b.nextID++
	return Label(b.nextID)
}

// Mark records the current instruction index as label's target.
func (b *InstructionBuilder) Mark(l Label) {
	b.labels[int(l)] = len(b.instrs)
}

func (b *InstructionBuilder) emit(i Instruction) {
	b.instrs = append(b.instrs, i)
}

func (b *InstructionBuilder) Args(n int)    { b.emit(Instruction{Op: OpArgs, Arg1: n}) }
func (b *InstructionBuilder) ArgsDot(n int) { b.emit(Instruction{Op: OpArgsDot, Arg1: n}) }
func (b *InstructionBuilder) Const(v *cell.Cell) { b.emit(Instruction{Op: OpConst, Val: v}) }
func (b *InstructionBuilder) Lvar(frame, slot int) {
	b.emit(Instruction{Op: OpLvar, Arg1: frame, Arg2: slot})
}
func (b *InstructionBuilder) Lset(frame, slot int) {
	b.emit(Instruction{Op: OpLset, Arg1: frame, Arg2: slot})
}
func (b *InstructionBuilder) Gvar(sym *cell.Cell) { b.emit(Instruction{Op: OpGvar, Val: sym}) }
func (b *InstructionBuilder) Gset(sym *cell.Cell) { b.emit(Instruction{Op: OpGset, Val: sym}) }
func (b *InstructionBuilder) Pop()                { b.emit(Instruction{Op: OpPop}) }
func (b *InstructionBuilder) Fn(proc *cell.Cell)  { b.emit(Instruction{Op: OpFn, Val: proc}) }
func (b *InstructionBuilder) Callj(n int)         { b.emit(Instruction{Op: OpCallj, Arg1: n}) }
func (b *InstructionBuilder) Fcallj(n int)        { b.emit(Instruction{Op: OpFcallj, Arg1: n}) }
func (b *InstructionBuilder) Return()             { b.emit(Instruction{Op: OpReturn}) }
func (b *InstructionBuilder) Cc()                 { b.emit(Instruction{Op: OpCc}) }
func (b *InstructionBuilder) Setcc()              { b.emit(Instruction{Op: OpSetcc}) }

// Jump, Tjump, and Fjump record a placeholder now and fix it up to l's
// resolved index at Build time.
func (b *InstructionBuilder) Jump(l Label)  { b.jumpLike(OpJump, l) }
func (b *InstructionBuilder) Tjump(l Label) { b.jumpLike(OpTjump, l) }
func (b *InstructionBuilder) Fjump(l Label) { b.jumpLike(OpFjump, l) }

func (b *InstructionBuilder) jumpLike(op Opcode, l Label) {
	b.fixups = append(b.fixups, fixup{instrIndex: len(b.instrs), labelID: int(l)})
	b.emit(Instruction{Op: op})
}

// Save records a placeholder return address the same way Jump does: the
// resumption point is a label marked just after the non-tail call site.
func (b *InstructionBuilder) Save(l Label) {
	b.fixups = append(b.fixups, fixup{instrIndex: len(b.instrs), labelID: int(l)})
	b.emit(Instruction{Op: OpSave})
}

// Build resolves every deferred label reference and returns the finished
// instruction stream. It panics if a label was referenced but never
// Mark'd — a malformed-bytecode bug in the caller, not a runtime
// condition (spec.md §7's "PC overrun" is a VM-level failure mode, this
// is a build-time one).
func (b *InstructionBuilder) Build() cell.Code {
	for _, f := range b.fixups {
		target, ok := b.labels[f.labelID]
		if !ok {
			panic("vm: InstructionBuilder.Build: label referenced but never marked")
		}
		b.instrs[f.instrIndex].Arg1 = target
	}
	return cell.Code(b.instrs)
}
