package cell

import "unsafe"

// ptrAddr exposes a Cell pointer's numeric address for hashing by
// identity, the same trick hashtab.c plays by hashing `void *` directly.
func ptrAddr(c *Cell) uintptr {
	return uintptr(unsafe.Pointer(c))
}
