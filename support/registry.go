// Package support implements the interface registry that bridges
// native, Go-side capability façades (logging, system calls, CPU
// introspection, event loop access) with the flat, foreign-ABI-visible
// array a plugin factory's init routine expects.
package support

import (
	"runtime"
	"unsafe"
)

// Well-known interface names, matching the companion native library's
// naming convention exactly; plugins look interfaces up by these
// strings.
const (
	NameLog         = "Spa:Pointer:Interface:Log"
	NameSystem      = "Spa:Pointer:Interface:System"
	NameCPU         = "Spa:Pointer:Interface:Cpu"
	NameLoop        = "Spa:Pointer:Interface:Loop"
	NameLoopControl = "Spa:Pointer:Interface:LoopControl"
	NameLoopUtils   = "Spa:Pointer:Interface:LoopUtils"
	NameThreadUtils = "Spa:Pointer:Interface:ThreadUtils"
)

// Kind tags the fixed, closed set of capability façades this registry
// understands. GetInterface does not compare Kind values: it checks the
// stored façade against the requested type with a Go type assertion.
type Kind int

const (
	KindLog Kind = iota
	KindSystem
	KindCPU
	KindLoop
	KindLoopControl
	KindLoopUtils
	KindThreadUtils
)

// Interface is implemented by every native façade that can be
// registered in a Support registry.
type Interface interface {
	// Kind identifies which capability this façade implements.
	Kind() Kind
	// NativeHandle returns a foreign-ABI-compatible pointer for this
	// façade, suitable for placing into the registry's c-visible array.
	// Implementations typically allocate this once and cache it.
	NativeHandle() unsafe.Pointer
	// Close releases the façade's native handle and any other
	// resources it owns. Called by Support.Close for every entry still
	// registered when the registry is torn down.
	Close() error
}

// cEntry mirrors the foreign-ABI (type-name, data) record layout that
// plugin factories read directly.
type cEntry struct {
	typeName *byte
	data     unsafe.Pointer
}

// Support is the interface registry. It keeps a native map from
// well-known name to façade alongside a pinned, foreign-ABI-visible
// array; AddInterface keeps both views coherent.
type Support struct {
	facades map[string]Interface
	order   []string // insertion order, for deterministic c-array rebuilds
	names   map[string][]byte

	abi    []cEntry
	pinner runtime.Pinner
	pinned bool
}

// New returns an empty registry with room enough for the seven
// well-known capabilities without needing to grow the c-visible array
// in the common case.
func New() *Support {
	return &Support{
		facades: make(map[string]Interface),
		names:   make(map[string][]byte),
		abi:     make([]cEntry, 0, 16),
	}
}

// AddInterface registers facade under name, taking ownership of it. If
// name was already registered, the previous façade is closed and
// replaced in both the native map and the foreign-ABI array; the array
// entry is updated in place so its position among other entries does
// not change.
func (s *Support) AddInterface(name string, facade Interface) {
	if old, ok := s.facades[name]; ok {
		old.Close()
		s.facades[name] = facade
		s.updateEntry(name, facade)
		return
	}

	s.facades[name] = facade
	s.order = append(s.order, name)
	cname := make([]byte, len(name)+1)
	copy(cname, name)
	s.names[name] = cname
	s.abi = append(s.abi, cEntry{})
	s.repin()
	s.updateEntry(name, facade)
}

func (s *Support) updateEntry(name string, facade Interface) {
	for i, n := range s.order {
		if n == name {
			s.abi[i] = cEntry{typeName: &s.names[name][0], data: facade.NativeHandle()}
			return
		}
	}
}

// repin re-pins every backing byte slice and the abi array header
// after AddInterface may have reallocated s.abi by growing it.
func (s *Support) repin() {
	if s.pinned {
		s.pinner.Unpin()
	}
	for _, name := range s.order {
		s.pinner.Pin(&s.names[name][0])
	}
	if len(s.abi) > 0 {
		s.pinner.Pin(&s.abi[0])
	}
	s.pinned = true
}

// GetInterface looks up name and returns it as T, or the zero value and
// false if absent or registered under a different concrete type.
func GetInterface[T Interface](s *Support, name string) (T, bool) {
	var zero T
	facade, ok := s.facades[name]
	if !ok {
		return zero, false
	}
	typed, ok := facade.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// CSupport returns a stable pointer-and-length view of the foreign-ABI
// array, for passing to a plugin factory's init routine.
func (s *Support) CSupport() (ptr unsafe.Pointer, n uint32) {
	if len(s.abi) == 0 {
		return nil, 0
	}
	return unsafe.Pointer(&s.abi[0]), uint32(len(s.abi))
}

// Close closes every registered façade and releases the pin on the
// foreign-ABI array. After Close, CSupport's previously returned
// pointer must not be dereferenced.
func (s *Support) Close() error {
	var firstErr error
	for _, name := range s.order {
		if err := s.facades[name].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.pinned {
		s.pinner.Unpin()
		s.pinned = false
	}
	s.facades = nil
	s.order = nil
	s.names = nil
	s.abi = nil
	return firstErr
}
