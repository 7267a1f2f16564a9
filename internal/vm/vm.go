// Package vm implements the bytecode VM (V) of spec.md §4.3: a
// register-less, stack-based evaluator over a heap-allocated operand
// stack and a pair-chain environment of vector frames, executing the
// instruction set internal/cell defines.
package vm

import (
	"fmt"
	"io"

	"github.com/skeeto/brianscheme/internal/cell"
	"github.com/skeeto/brianscheme/internal/heap"
)

// Machine ties a heap and a global environment together to run compiled
// procedures. Trace, if non-nil, receives a line per dispatched
// instruction — the Go equivalent of vm.c's VM_DEBUG, off by default.
type Machine struct {
	Heap    *heap.Heap
	Globals *Globals
	Trace   io.Writer
}

// New builds a Machine over h and g.
func New(h *heap.Heap, g *Globals) *Machine {
	return &Machine{Heap: h, Globals: g}
}

func (m *Machine) pop(stack *cell.Cell, top *int) *cell.Cell {
	v := m.Heap.VectorPop(stack, *top)
	*top--
	return v
}

func (m *Machine) push(stack *cell.Cell, top *int, v *cell.Cell) {
	m.Heap.VectorPush(stack, v, *top)
	*top++
}

// Run executes fn — a compiled_proc or compiled_syntax_proc — starting at
// instruction 0, over stack with nArgs already pushed at its top
// (spec.md §4.3). It runs until a terminal return leaves a single value
// above stackTop - nArgs, and returns that value.
//
// Run roots fn, stack, and env itself for the duration of the call,
// matching vm_execute's push_root(&fn)/push_root(&env) (extended here to
// stack, which vm_execute reaches only through fn/env but which this
// port passes and reassigns independently via setcc). That protection
// ends when Run returns — a caller that keeps its own reference to fn or
// stack afterward must root it again itself if it must survive a later
// collection.
func (m *Machine) Run(fn, stack *cell.Cell, stackTop, nArgs int) (*cell.Cell, error) {
	h := m.Heap

	if fn.Tag != cell.CompiledProc && fn.Tag != cell.CompiledSyntaxProc {
		return nil, errorf("vm: object is not a compiled procedure")
	}

	initialTop := stackTop - nArgs
	top := stackTop
	pc := 0

	h.PushRoot(&fn)
	defer h.PopRoot(&fn)

	// stack is reassigned in place by setcc, so rooting its address (not
	// just its current value) keeps the tracer seeing whichever vector it
	// points at for the whole call, matching fn/env below.
	h.PushRoot(&stack)
	defer h.PopRoot(&stack)

	// Bootstrap an empty frame for this entry, since callj/fcallj only
	// set one up for calls dispatched from inside the loop, not for the
	// very first invocation.
	emptyFrame := h.MakeVector(0, h.EmptyList)
	h.PushRoot(&emptyFrame)
	env := h.MakePair(emptyFrame, fn.Cdr)
	h.PopRoot(&emptyFrame)

	h.PushRoot(&env)
	defer h.PopRoot(&env)

	// doReturn implements RETURN_OPCODE_INSTRUCTIONS (vm.c), shared by
	// the return opcode and by callj/fcallj's primitive-call path, which
	// falls through to the same unwind once the primitive's result is on
	// the stack.
	doReturn := func() (result *cell.Cell, done bool, err error) {
		if top == initialTop+1 {
			return m.pop(stack, &top), true, nil
		}
		val := m.pop(stack, &top)
		retAddr := m.pop(stack, &top)
		if retAddr.Tag != cell.Pair || retAddr.Cdr == nil || retAddr.Cdr.Tag != cell.Pair {
			return nil, false, errorf("vm: malformed return record")
		}
		pc = int(retAddr.Car.Fixnum)
		fn = retAddr.Cdr.Car
		env = retAddr.Cdr.Cdr
		m.push(stack, &top, val)
		return nil, false, nil
	}

	invokePrimitive := func(prim *cell.Cell, n int) (*cell.Cell, bool, error) {
		result, perr := prim.Prim(stack, n, top)
		if perr != nil {
			return nil, false, perr
		}
		for i := 0; i < n; i++ {
			m.pop(stack, &top)
		}
		m.push(stack, &top, result)
		return doReturn()
	}

	for {
		if pc < 0 || pc >= len(fn.Code) {
			return nil, errorf("vm: pc %d flew off the end of bytecode (len %d)", pc, len(fn.Code))
		}
		instr := fn.Code[pc]
		pc++

		if m.Trace != nil {
			fmt.Fprintf(m.Trace, "dispatching: (%s %d %d)\n", instr.Op, instr.Arg1, instr.Arg2)
		}

		switch instr.Op {
		case cell.OpArgs:
			n := instr.Arg1
			if nArgs != n {
				return nil, errorf("args: wrong number of args, expected %d, got %d", n, nArgs)
			}
			frame := heap.Car(env)
			if n > heap.VectorSize(frame) {
				frame = h.MakeVector(n, h.EmptyList)
				heap.SetCar(env, frame)
			}
			for i := n - 1; i >= 0; i-- {
				heap.VectorStore(frame, i, m.pop(stack, &top))
			}

		case cell.OpArgsDot:
			n := instr.Arg1
			if nArgs < n {
				return nil, errorf("argsdot: wrong number of args, expected at least %d, got %d", n, nArgs)
			}
			arraySize := n + 1
			frame := heap.Car(env)
			if arraySize > heap.VectorSize(frame) {
				frame = h.MakeVector(arraySize, h.EmptyList)
				heap.SetCar(env, frame)
			}
			heap.VectorStore(frame, arraySize-1, h.EmptyList)
			for i := 0; i < nArgs-n; i++ {
				v := m.pop(stack, &top)
				h.PushRoot(&v)
				rest := heap.VectorLoad(frame, arraySize-1)
				h.PushRoot(&rest)
				heap.VectorStore(frame, arraySize-1, h.MakePair(v, rest))
				h.PopRoot(&rest)
				h.PopRoot(&v)
			}
			for i := n - 1; i >= 0; i-- {
				heap.VectorStore(frame, i, m.pop(stack, &top))
			}

		case cell.OpConst:
			m.push(stack, &top, instr.Val)

		case cell.OpLvar:
			next := env
			for i := instr.Arg1; i > 0; i-- {
				next = heap.Cdr(next)
			}
			m.push(stack, &top, heap.VectorLoad(heap.Car(next), instr.Arg2))

		case cell.OpLset:
			next := env
			for i := instr.Arg1; i > 0; i-- {
				next = heap.Cdr(next)
			}
			heap.VectorStore(heap.Car(next), instr.Arg2, heap.VectorLoad(stack, top-1))

		case cell.OpGvar:
			v, ok := m.Globals.Lookup(instr.Val)
			if !ok {
				return nil, errorf("gvar: unbound variable %s", instr.Val.Symbol)
			}
			m.push(stack, &top, v)

		case cell.OpGset:
			m.Globals.Define(instr.Val, heap.VectorLoad(stack, top-1))

		case cell.OpPop:
			m.pop(stack, &top)

		case cell.OpJump:
			pc = instr.Arg1

		case cell.OpTjump:
			if v := m.pop(stack, &top); !cell.IsFalselike(v) {
				pc = instr.Arg1
			}

		case cell.OpFjump:
			if v := m.pop(stack, &top); cell.IsFalselike(v) {
				pc = instr.Arg1
			}

		case cell.OpFn:
			newFn := h.MakeCompiledProc(instr.Val.Code, env)
			m.push(stack, &top, newFn)

		case cell.OpSave:
			pcCell := h.MakeFixnum(int64(instr.Arg1))
			h.PushRoot(&pcCell)
			inner := h.MakePair(fn, env)
			h.PushRoot(&inner)
			retAddr := h.MakePair(pcCell, inner)
			h.PopRoot(&inner)
			h.PopRoot(&pcCell)
			m.push(stack, &top, retAddr)

		case cell.OpReturn:
			val, done, err := doReturn()
			if err != nil {
				return nil, err
			}
			if done {
				return val, nil
			}

		case cell.OpCallj:
			target := cell.UnwrapMeta(m.pop(stack, &top))
			n := instr.Arg1

			if n == -1 {
				h.PushRoot(&target)
				args := m.pop(stack, &top)
				n = 0
				for args.Tag != cell.EmptyList {
					m.push(stack, &top, heap.Car(args))
					args = heap.Cdr(args)
					n++
				}
				h.PopRoot(&target)
			}

			switch target.Tag {
			case cell.CompiledProc, cell.CompiledSyntaxProc:
				fn = target
				pc = 0
				nArgs = n
				heap.SetCdr(env, fn.Cdr)

			case cell.PrimitiveProc:
				val, done, err := invokePrimitive(target, n)
				if err != nil {
					return nil, err
				}
				if done {
					return val, nil
				}

			default:
				return nil, errorf("callj: don't know how to invoke a %s", target.Tag)
			}

		case cell.OpFcallj:
			target := cell.UnwrapMeta(m.pop(stack, &top))
			n := instr.Arg1

			switch target.Tag {
			case cell.CompiledProc, cell.CompiledSyntaxProc:
				fn = target
				pc = 0
				nArgs = n
				newFrame := h.MakeVector(n+1, h.EmptyList)
				h.PushRoot(&newFrame)
				env = h.MakePair(newFrame, fn.Cdr)
				h.PopRoot(&newFrame)

			case cell.PrimitiveProc:
				val, done, err := invokePrimitive(target, n)
				if err != nil {
					return nil, err
				}
				if done {
					return val, nil
				}

			default:
				return nil, errorf("fcallj: don't know how to invoke a %s", target.Tag)
			}

		case cell.OpCc:
			ccEnvVec := h.MakeVector(2, h.EmptyList)
			h.PushRoot(&ccEnvVec)

			savedStack := h.MakeVector(heap.VectorSize(stack), h.EmptyList)
			h.PushRoot(&savedStack)
			for i := 0; i < top; i++ {
				heap.VectorStore(savedStack, i, heap.VectorLoad(stack, i))
			}
			heap.VectorStore(ccEnvVec, 0, savedStack)
			heap.VectorStore(ccEnvVec, 1, h.MakeFixnum(int64(top)))
			h.PopRoot(&savedStack)

			ccEnvList := h.MakePair(ccEnvVec, h.EmptyList)
			h.PopRoot(&ccEnvVec)
			h.PushRoot(&ccEnvList)

			ccFn := h.MakeCompiledProc(ccThunk, ccEnvList)
			h.PopRoot(&ccEnvList)
			m.push(stack, &top, ccFn)

		case cell.OpSetcc:
			newStack := m.pop(stack, &top)
			newTop := m.pop(stack, &top)
			stack = newStack
			top = int(newTop.Fixnum)

		default:
			return nil, errorf("vm: unknown opcode %s", instr.Op)
		}
	}
}
