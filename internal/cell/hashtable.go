package cell

// Hashtable is the external buffer a hash_table cell owns (spec.md §3,
// §4.2 finalization taxonomy). It is a direct port of
// _examples/original_source/hashtab.c's open-chaining design: an array of
// buckets, each a singly-linked chain of nodes, keyed by Cell pointer
// identity (symbols are interned, so comparing *Cell pointers is exactly
// the `key == node->key` comparison hashtab.c performs on `void *`).
type hashNode struct {
	key, value *Cell
	next       *hashNode
}

type Hashtable struct {
	buckets []*hashNode
	count   int
}

const defaultHashtableSize = 16

// NewHashtable mirrors htb_init with the default hash function.
func NewHashtable() *Hashtable {
	return &Hashtable{buckets: make([]*hashNode, defaultHashtableSize)}
}

func (h *Hashtable) index(key *Cell) int {
	// htb_hash shifts the pointer value to discard alignment bits before
	// taking the modulus; Go pointers carry the same alignment guarantees
	// for word-sized allocations, so the same shift-then-mod shape applies.
	addr := uintptr(ptrAddr(key))
	return int((addr >> 4) % uintptr(len(h.buckets)))
}

// Search mirrors htb_search.
func (h *Hashtable) Search(key *Cell) *Cell {
	for n := h.buckets[h.index(key)]; n != nil; n = n.next {
		if n.key == key {
			return n.value
		}
	}
	return nil
}

// Insert mirrors htb_insert: update in place if the key already exists,
// otherwise thread the new node onto the tail of its bucket's chain, found
// by walking to the end of the chain.
func (h *Hashtable) Insert(key, value *Cell) {
	idx := h.index(key)
	var last *hashNode
	for n := h.buckets[idx]; n != nil; n = n.next {
		if n.key == key {
			n.value = value
			return
		}
		last = n
	}
	node := &hashNode{key: key, value: value}
	if last != nil {
		last.next = node
	} else {
		h.buckets[idx] = node
	}
	h.count++

	if h.count > len(h.buckets)*2 {
		h.grow()
	}
}

// Remove mirrors htb_remove.
func (h *Hashtable) Remove(key *Cell) {
	idx := h.index(key)
	var last *hashNode
	for n := h.buckets[idx]; n != nil; n = n.next {
		if n.key == key {
			if last != nil {
				last.next = n.next
			} else {
				h.buckets[idx] = n.next
			}
			h.count--
			return
		}
		last = n
	}
}

// grow mirrors htb_grow: rehash every entry into a larger table.
func (h *Hashtable) grow() {
	grown := &Hashtable{buckets: make([]*hashNode, len(h.buckets)*2)}
	h.Each(func(k, v *Cell) {
		grown.Insert(k, v)
	})
	h.buckets = grown.buckets
	h.count = grown.count
}

// Each walks every (key, value) pair, in the bucket-then-chain order
// htb_iter_init/htb_iter_inc traverse. The collector's tracer (§4.2) and
// grow's rehash both drive off this.
func (h *Hashtable) Each(fn func(key, value *Cell)) {
	for _, n := range h.buckets {
		for ; n != nil; n = n.next {
			fn(n.key, n.value)
		}
	}
}

func (h *Hashtable) Len() int { return h.count }
