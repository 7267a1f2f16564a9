package heap

import "github.com/skeeto/brianscheme/internal/cell"

// Car and Cdr read a pair's fields. Callers are responsible for checking
// Tag == cell.Pair first where that isn't already guaranteed by context;
// these panic on a nil pair the same way dereferencing a NULL object
// pointer would fault in the C original.
func Car(p *cell.Cell) *cell.Cell { return p.Car }
func Cdr(p *cell.Cell) *cell.Cell { return p.Cdr }

// SetCar and SetCdr mutate a pair in place.
func SetCar(p, v *cell.Cell) { p.Car = v }
func SetCdr(p, v *cell.Cell) { p.Cdr = v }

// VectorLoad and VectorStore access a vector's backing buffer by index
// with no bounds checking beyond what a slice index performs natively —
// matching VARRAY(v)[i] in the original, which is equally unchecked.
func VectorLoad(v *cell.Cell, i int) *cell.Cell  { return v.Vec.Data[i] }
func VectorStore(v *cell.Cell, i int, x *cell.Cell) { v.Vec.Data[i] = x }

// VectorSize returns a vector's current element count (VSIZE).
func VectorSize(v *cell.Cell) int { return len(v.Vec.Data) }

// HashLoad and HashStore read/write a hash_table cell's buffer.
func HashLoad(t *cell.Cell, key *cell.Cell) *cell.Cell {
	return t.Hash.Search(key)
}

func HashStore(t *cell.Cell, key, value *cell.Cell) {
	t.Hash.Insert(key, value)
}

// stackGrowthFactor is vm.c's vector_push growth factor for the operand
// stack.
const stackGrowthFactor = 1.8

// VectorPush appends thing at index top of a vector cell, growing the
// backing buffer geometrically (spec.md §3 "operand stack... grows on
// overflow, growth factor ≈ 1.8") when top has reached the current
// capacity, and initialising freshly grown slots to emptyList so tracing
// never reads an uninitialised slot (invariant 3). It mirrors vm.c's
// vector_push exactly, including growing off of the *current* size rather
// than a fixed increment.
func (h *Heap) VectorPush(vec *cell.Cell, thing *cell.Cell, top int) {
	size := len(vec.Vec.Data)
	if top == size {
		newSize := int(float64(size) * stackGrowthFactor)
		if newSize <= size {
			newSize = size + 1
		}
		grown := make([]*cell.Cell, newSize)
		copy(grown, vec.Vec.Data)
		for i := size; i < newSize; i++ {
			grown[i] = h.EmptyList
		}
		vec.Vec.Data = grown
	}
	vec.Vec.Data[top] = thing
}

// VectorPop clears and returns the value at index top-1, matching
// vector_pop (which also resets the vacated slot to the empty list so it
// satisfies invariant 3 immediately, not just after the next push).
func (h *Heap) VectorPop(vec *cell.Cell, top int) *cell.Cell {
	old := vec.Vec.Data[top-1]
	vec.Vec.Data[top-1] = h.EmptyList
	return old
}
