// Package dict implements a small ordered (key, value) string container
// whose backing array has a stable, foreign-ABI-compatible memory
// layout: a flat array of (C-string key, C-string value) records that a
// plugin loaded from a shared object can read directly.
package dict

import (
	"runtime"
	"unsafe"
)

// item mirrors the foreign-ABI record layout: two null-terminated byte
// pointers, one per field, in declaration order.
type item struct {
	key   *byte
	value *byte
}

// Dict is an ordered, case-sensitive (key, value) string dictionary.
// Field order is preserved as inserted and lookups return the first
// match. Once built its backing array is pinned for its lifetime via a
// runtime.Pinner, so a pointer obtained from Raw stays valid and
// unmoved for as long as the Dict itself is reachable.
type Dict struct {
	flags uint32
	items []item

	// keys/values hold the null-terminated byte storage that each
	// item's pointers alias; kept alongside so the Go GC sees the
	// reference and Pinner has something concrete to pin.
	keys   [][]byte
	values [][]byte

	pinner runtime.Pinner
	pinned bool
}

// New builds a Dict from an ordered slice of (key, value) pairs.
// Duplicate keys are kept in insertion order; Lookup returns the first.
func New(pairs [][2]string) *Dict {
	d := &Dict{
		items:  make([]item, len(pairs)),
		keys:   make([][]byte, len(pairs)),
		values: make([][]byte, len(pairs)),
	}
	for i, kv := range pairs {
		d.keys[i] = toCString(kv[0])
		d.values[i] = toCString(kv[1])
	}
	d.pin()
	return d
}

func toCString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// pin fixes the address of every backing byte slice and populates the
// item array's pointers. It must run exactly once, after keys/values
// are fully populated and before any pointer in items is read.
func (d *Dict) pin() {
	if d.pinned {
		return
	}
	for i := range d.items {
		d.pinner.Pin(&d.keys[i][0])
		d.pinner.Pin(&d.values[i][0])
		d.items[i] = item{key: &d.keys[i][0], value: &d.values[i][0]}
	}
	if len(d.items) > 0 {
		d.pinner.Pin(&d.items[0])
	}
	d.pinned = true
}

// Raw returns an unsafe pointer to the start of the dictionary's
// foreign-ABI-compatible item array, plus its length, for passing to a
// plugin factory's init routine. The pointer is valid for as long as
// the Dict is both reachable and not Closed.
func (d *Dict) Raw() (ptr unsafe.Pointer, n uint32) {
	if len(d.items) == 0 {
		return nil, 0
	}
	return unsafe.Pointer(&d.items[0]), uint32(len(d.items))
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.items) }

// Items returns the dictionary's entries as Go strings, in insertion
// order. Each call copies out of the pinned backing storage.
func (d *Dict) Items() [][2]string {
	out := make([][2]string, len(d.items))
	for i, it := range d.items {
		out[i] = [2]string{fromCString(it.key), fromCString(it.value)}
	}
	return out
}

func fromCString(p *byte) string {
	if p == nil {
		return ""
	}
	base := unsafe.Pointer(p)
	n := 0
	for *(*byte)(unsafe.Add(base, n)) != 0 {
		n++
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = *(*byte)(unsafe.Add(base, i))
	}
	return string(buf)
}

// Lookup returns the value for the first entry whose key equals key,
// and whether it was found. Comparison is case-sensitive.
func (d *Dict) Lookup(key string) (string, bool) {
	for i, k := range d.keys {
		if cstringEq(k, key) {
			return fromCString(d.items[i].value), true
		}
	}
	return "", false
}

func cstringEq(cstr []byte, s string) bool {
	if len(cstr) != len(s)+1 {
		return false
	}
	return string(cstr[:len(s)]) == s
}

// Close releases the pin on the backing arrays. After Close, pointers
// obtained from Raw must no longer be dereferenced. A pinned Dict must
// be closed: the pin is not released by garbage collection, and the
// runtime panics when it collects a Pinner that still holds pins.
func (d *Dict) Close() {
	if !d.pinned {
		return
	}
	d.pinner.Unpin()
	d.pinned = false
}
