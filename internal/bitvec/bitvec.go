// Package bitvec provides a compact growable set of non-negative integers.
package bitvec

import "math/bits"

const wordSize = 64

// Vector is a set of non-negative indices backed by 64-bit words.
// The zero value is an empty set ready to use.
// Negative indices are ignored by all methods.
type Vector struct{ words []uint64 }

// Insert adds i to the set growing the vector by whole words if necessary.
func (v *Vector) Insert(i int) {
	if i < 0 {
		return
	}
	w := i / wordSize
	if w >= len(v.words) {
		if w < cap(v.words) {
			v.words = v.words[:w+1]
		} else {
			n := make([]uint64, w+1, (w+1)*2)
			copy(n, v.words)
			v.words = n
		}
	}
	v.words[w] |= 1 << (uint(i) % wordSize)
}

// Remove deletes i from the set.
func (v *Vector) Remove(i int) {
	if i < 0 {
		return
	}
	if w := i / wordSize; w < len(v.words) {
		v.words[w] &^= 1 << (uint(i) % wordSize)
	}
}

// Set inserts i if on is true, otherwise removes it.
func (v *Vector) Set(i int, on bool) {
	if on {
		v.Insert(i)
		return
	}
	v.Remove(i)
}

// Has returns true if i is in the set.
func (v *Vector) Has(i int) bool {
	if i < 0 {
		return false
	}
	w := i / wordSize
	return w < len(v.words) && v.words[w]&(1<<(uint(i)%wordSize)) != 0
}

// Count returns the number of indices in the set.
func (v *Vector) Count() (n int) {
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Cap returns the number of indices the vector can hold without growing.
func (v *Vector) Cap() int { return len(v.words) * wordSize }

// Clear removes all indices while keeping the allocated words.
func (v *Vector) Clear() {
	for i := range v.words {
		v.words[i] = 0
	}
}
