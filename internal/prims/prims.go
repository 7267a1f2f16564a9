// Package prims provides a minimal set of primitive procedures —
// fixnum arithmetic and comparison, cons/car/cdr — sufficient to exercise
// the VM's primitive-call dispatch path (callj/fcallj's primitive_proc
// branch) and the demo program in cmd/brianscheme. This is explicitly
// scaffolding, not the primitive library spec.md §1 scopes out as an
// external collaborator: a real library would cover the full numeric
// tower, I/O, and the rest of a usable Scheme, none of which belongs to
// the execution core.
package prims

import (
	"fmt"

	"github.com/skeeto/brianscheme/internal/cell"
	"github.com/skeeto/brianscheme/internal/heap"
	"github.com/skeeto/brianscheme/internal/vm"
)

// args returns the argc values ending at top (exclusive) on stack, in
// call order — the calling convention every primitive below works from
// (spec.md §4.1).
func args(stack *cell.Cell, argc, top int) []*cell.Cell {
	out := make([]*cell.Cell, argc)
	for i := 0; i < argc; i++ {
		out[i] = heap.VectorLoad(stack, top-argc+i)
	}
	return out
}

func fixnum(h *heap.Heap, c *cell.Cell, name string) (int64, error) {
	if c.Tag != cell.Fixnum {
		return 0, fmt.Errorf("%s: expected a fixnum, got a %s", name, c.Tag)
	}
	return c.Fixnum, nil
}

// Register installs every primitive this package defines into g, each
// under its conventional Scheme name.
func Register(h *heap.Heap, g *vm.Globals) {
	define := func(name string, fn cell.PrimitiveFunc) {
		g.Define(h.MakeSymbol(name), h.MakePrimitiveProc(fn))
	}

	define("+", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		var sum int64
		for _, a := range args(stack, argc, top) {
			n, err := fixnum(h, a, "+")
			if err != nil {
				return nil, err
			}
			sum += n
		}
		return h.MakeFixnum(sum), nil
	})

	define("-", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		vs := args(stack, argc, top)
		if argc == 0 {
			return nil, fmt.Errorf("-: expected at least 1 argument")
		}
		first, err := fixnum(h, vs[0], "-")
		if err != nil {
			return nil, err
		}
		if argc == 1 {
			return h.MakeFixnum(-first), nil
		}
		result := first
		for _, a := range vs[1:] {
			n, err := fixnum(h, a, "-")
			if err != nil {
				return nil, err
			}
			result -= n
		}
		return h.MakeFixnum(result), nil
	})

	define("*", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		result := int64(1)
		for _, a := range args(stack, argc, top) {
			n, err := fixnum(h, a, "*")
			if err != nil {
				return nil, err
			}
			result *= n
		}
		return h.MakeFixnum(result), nil
	})

	define("=", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		vs := args(stack, argc, top)
		for i := 1; i < len(vs); i++ {
			a, err := fixnum(h, vs[i-1], "=")
			if err != nil {
				return nil, err
			}
			b, err := fixnum(h, vs[i], "=")
			if err != nil {
				return nil, err
			}
			if a != b {
				return h.MakeBoolean(false), nil
			}
		}
		return h.MakeBoolean(true), nil
	})

	define("<", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		vs := args(stack, argc, top)
		for i := 1; i < len(vs); i++ {
			a, err := fixnum(h, vs[i-1], "<")
			if err != nil {
				return nil, err
			}
			b, err := fixnum(h, vs[i], "<")
			if err != nil {
				return nil, err
			}
			if !(a < b) {
				return h.MakeBoolean(false), nil
			}
		}
		return h.MakeBoolean(true), nil
	})

	define("cons", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		if argc != 2 {
			return nil, fmt.Errorf("cons: expected 2 arguments, got %d", argc)
		}
		vs := args(stack, argc, top)
		return h.MakePair(vs[0], vs[1]), nil
	})

	define("car", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		vs := args(stack, argc, top)
		if argc != 1 || vs[0].Tag != cell.Pair {
			return nil, fmt.Errorf("car: expected a pair")
		}
		return heap.Car(vs[0]), nil
	})

	define("cdr", func(stack *cell.Cell, argc, top int) (*cell.Cell, error) {
		vs := args(stack, argc, top)
		if argc != 1 || vs[0].Tag != cell.Pair {
			return nil, fmt.Errorf("cdr: expected a pair")
		}
		return heap.Cdr(vs[0]), nil
	})
}
