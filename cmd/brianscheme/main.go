// Command brianscheme wires the heap, the global environment, and the
// bytecode VM together and runs one hand-assembled demo program. It has
// no reader, textual assembler, or REPL loop — spec.md scopes surface
// syntax and the compiler out as external collaborators; this binary
// exists to give the execution core a runnable entry point, the same
// role main.go plays in the teacher repo.
package main

import (
	"fmt"
	"os"

	"github.com/skeeto/brianscheme/internal/heap"
	"github.com/skeeto/brianscheme/internal/prims"
	"github.com/skeeto/brianscheme/internal/vm"
)

// demoProgram computes (+ 1 (call/cc (lambda (k) (k (fib 10))))) against
// a doubly-recursive fib written directly in bytecode, and registers the
// top-level procedure that computes it as the global "demo". It exercises non-tail calls (fib's own
// recursion), a tail call through a captured continuation (escaping via
// setcc), and primitive dispatch, all in one run.
func demoProgram(h *heap.Heap, g *vm.Globals) {
	fibB := vm.NewInstructionBuilder()
	base := fibB.NewLabel()
	afterEq := fibB.NewLabel()
	afterSub1 := fibB.NewLabel()
	afterSub2 := fibB.NewLabel()
	afterRec1 := fibB.NewLabel()
	afterRec2 := fibB.NewLabel()

	// fib(n): the textbook non-tail doubly-recursive definition, included
	// to exercise save/callj's non-tail discipline rather than the
	// tail-loop shape TestTailRecursionCountdown already covers.
	fibB.Args(1)
	fibB.Save(afterEq)
	fibB.Lvar(0, 0)
	fibB.Const(h.MakeFixnum(2))
	fibB.Gvar(h.MakeSymbol("<"))
	fibB.Callj(2)
	fibB.Mark(afterEq)
	fibB.Fjump(base)
	fibB.Lvar(0, 0)
	fibB.Return()
	fibB.Mark(base)
	fibB.Save(afterRec1)
	fibB.Save(afterSub1)
	fibB.Lvar(0, 0)
	fibB.Const(h.MakeFixnum(1))
	fibB.Gvar(h.MakeSymbol("-"))
	fibB.Callj(2)
	fibB.Mark(afterSub1)
	fibB.Gvar(h.MakeSymbol("fib"))
	fibB.Fcallj(1)
	fibB.Mark(afterRec1)
	fibB.Save(afterRec2)
	fibB.Save(afterSub2)
	fibB.Lvar(0, 0)
	fibB.Const(h.MakeFixnum(2))
	fibB.Gvar(h.MakeSymbol("-"))
	fibB.Callj(2)
	fibB.Mark(afterSub2)
	fibB.Gvar(h.MakeSymbol("fib"))
	fibB.Fcallj(1)
	fibB.Mark(afterRec2)
	fibB.Gvar(h.MakeSymbol("+"))
	fibB.Callj(2)

	fibFn := h.MakeCompiledProc(fibB.Build(), h.EmptyList)
	g.Define(h.MakeSymbol("fib"), fibFn)

	kB := vm.NewInstructionBuilder()
	afterFib := kB.NewLabel()
	kB.Args(1)
	kB.Save(afterFib)
	kB.Const(h.MakeFixnum(10))
	kB.Gvar(h.MakeSymbol("fib"))
	kB.Fcallj(1)
	kB.Mark(afterFib)
	kB.Lvar(0, 0) // k
	kB.Callj(1)   // tail call: escapes through k's thunk via setcc
	kTemplate := h.MakeCompiledProc(kB.Build(), h.EmptyList)

	topB := vm.NewInstructionBuilder()
	afterCC := topB.NewLabel()
	topB.Args(0)
	topB.Save(afterCC)
	topB.Cc()
	topB.Fn(kTemplate)
	topB.Fcallj(1)
	topB.Mark(afterCC)
	topB.Const(h.MakeFixnum(1))
	topB.Gvar(h.MakeSymbol("+"))
	topB.Callj(2)
	topB.Return()
	topFn := h.MakeCompiledProc(topB.Build(), h.EmptyList)

	g.Define(h.MakeSymbol("demo"), topFn)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(heap.FatalError); ok {
				fmt.Fprintf(os.Stderr, "brianscheme: fatal: %v\n", fe)
				os.Exit(2)
			}
			panic(r)
		}
	}()

	h := heap.New()
	g := vm.NewGlobals(h)
	prims.Register(h, g)
	vm.RegisterBuiltins(h, g)
	demoProgram(h, g)

	demo, ok := g.Lookup(h.MakeSymbol("demo"))
	if !ok {
		fmt.Fprintln(os.Stderr, "brianscheme: demo program failed to register")
		os.Exit(1)
	}

	m := vm.New(h, g)
	stack := h.MakeVector(8, h.EmptyList)
	result, err := m.Run(demo, stack, 0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brianscheme: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=> %d\n", result.Fixnum)
}
