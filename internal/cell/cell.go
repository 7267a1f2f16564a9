// Package cell defines the tagged heap value that every component of the
// execution core (heap, collector, VM) shares. A Cell is the fixed-size
// unit of allocation: a tag discriminator, two general pointers reused by
// several tags (car/cdr for pairs, bytecode/env for compiled procedures,
// inner/metadata for meta procedures), a payload for tags that need more
// than two pointers, and the bookkeeping fields the collector owns.
package cell

import "fmt"

// Tag discriminates the payload a Cell carries. Every new tag must be
// handled at three sites: the constructor (internal/heap), the tracer
// (internal/heap collect.go), and the finalizer (internal/heap collect.go).
type Tag uint8

const (
	EmptyList Tag = iota
	Boolean
	Fixnum
	Character
	Symbol
	String
	Pair
	Vector
	CompiledProc
	CompiledSyntaxProc
	PrimitiveProc
	MetaProc
	HashTable
)

func (t Tag) String() string {
	switch t {
	case EmptyList:
		return "empty-list"
	case Boolean:
		return "boolean"
	case Fixnum:
		return "fixnum"
	case Character:
		return "character"
	case Symbol:
		return "symbol"
	case String:
		return "string"
	case Pair:
		return "pair"
	case Vector:
		return "vector"
	case CompiledProc:
		return "compiled-procedure"
	case CompiledSyntaxProc:
		return "compiled-syntax-procedure"
	case PrimitiveProc:
		return "primitive-procedure"
	case MetaProc:
		return "meta-procedure"
	case HashTable:
		return "hash-table"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// PrimitiveFunc is the calling convention of §4.1: a primitive receives the
// operand-stack cell, the number of arguments pushed for it, and the
// current stack-top index, and returns a single value. It does not pop its
// own arguments; the VM unwinds them after the call returns.
type PrimitiveFunc func(stack *Cell, argc int, top int) (*Cell, error)

// StringBuf is the external buffer a string cell owns.
type StringBuf struct {
	Bytes []byte
}

// VectorBuf is the external buffer a vector cell owns. len(Data) is the
// vector's size (VSIZE in original_source/vm.c) — for an ordinary vector
// this is its logical length; for the operand stack it is the buffer's
// full capacity, with slots at and above the stack-top index holding the
// empty-list singleton per spec.md §3 invariant 3, and is itself what the
// collector traces.
type VectorBuf struct {
	Data []*Cell
}

// Cell is the unit of allocation and collector membership. Only the fields
// relevant to Tag are meaningful; reading the wrong field for a tag is a
// caller bug, not a recoverable condition.
type Cell struct {
	Tag Tag

	// Car/Cdr are reused across tags:
	//   Pair:                  Car, Cdr are the two cell pointers.
	//   CompiledProc/Syntax:   Cdr is the captured environment list (Car
	//                          unused; the bytecode itself lives in Code,
	//                          below, since the collector must trace
	//                          through constants an instruction embeds).
	//   MetaProc:              Car is the inner procedure, Cdr is the
	//                          metadata value.
	Car *Cell
	Cdr *Cell

	Fixnum    int64
	Character rune
	Boolean   bool
	Symbol    string // interned name; pointer-equality is what matters, not this string
	Str       *StringBuf
	Vec       *VectorBuf
	Code      Code // compiled_proc/compiled_syntax_proc bytecode
	Prim      PrimitiveFunc
	Hash      *Hashtable

	// Collector bookkeeping (spec.md §3: "every cell additionally
	// carries a colour bit... intrusive prev/next pointers... and the
	// tag"). Mutated only by internal/heap, exported because the
	// collector lives in a separate package from the data model.
	Color      uint32
	Prev, Next *Cell
}

// IsFalselike reports whether v is treated as false by conditional
// opcodes: the canonical #f, the empty list, or the symbol `nil` (spec.md
// §4.3, §6 GLOSSARY).
func IsFalselike(v *Cell) bool {
	if v == nil {
		return true
	}
	switch v.Tag {
	case Boolean:
		return !v.Boolean
	case EmptyList:
		return true
	case Symbol:
		return v.Symbol == "nil"
	default:
		return false
	}
}

// IsCallable reports whether v's tag can be a callj/fcallj target before
// meta-unwrapping.
func IsCallable(v *Cell) bool {
	switch v.Tag {
	case CompiledProc, CompiledSyntaxProc, PrimitiveProc, MetaProc:
		return true
	default:
		return false
	}
}

// UnwrapMeta follows a meta_proc to its inner procedure, per §4.3's "Meta
// unwrap" rule used by callj/fcallj.
func UnwrapMeta(v *Cell) *Cell {
	for v != nil && v.Tag == MetaProc {
		v = v.Car
	}
	return v
}
