package vm

import "github.com/skeeto/brianscheme/internal/cell"

// ccThunk is the fixed six-instruction procedure body every captured
// continuation shares (spec.md §6 "CC thunk"). It takes no embedded
// constants — every argument is a frame/slot index — so it needs no
// *cell.Cell references and can be built once, independent of any
// particular *heap.Heap, and shared by every continuation a VM ever
// captures.
var ccThunk = buildCCThunk()

func buildCCThunk() cell.Code {
	b := NewInstructionBuilder()
	b.Args(1)     // 1. bind the value passed to the continuation
	b.Lvar(1, 1)  // 2. push saved top
	b.Lvar(1, 0)  // 3. push saved stack
	b.Setcc()     // 4. restore them
	b.Lvar(0, 0)  // 5. push the value passed to the continuation
	b.Return()    // 6.
	return b.Build()
}
