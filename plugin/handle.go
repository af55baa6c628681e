package plugin

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Handle is an owned native handle produced by Factory.Init. Close
// must be called exactly once to release it; a Handle left open when
// the process exits leaks native memory the same way an un-clear()'d
// spa_handle does.
type Handle struct {
	raw     *cHandle
	backing []byte
	pinner  runtime.Pinner
	closed  bool
}

// Version reports the handle's ABI version.
func (h *Handle) Version() uint32 { return h.raw.version }

// GetInterface asks the handle for its implementation of the named
// interface type (e.g. "Spa:Pointer:Interface:Log"). The returned
// pointer is only valid for the handle's lifetime.
func (h *Handle) GetInterface(typeName string) (unsafe.Pointer, error) {
	if h.closed {
		return nil, fmt.Errorf("plugin: GetInterface on closed handle")
	}
	var iface *cInterface
	name := cstr(typeName)
	ret, _, _ := purego.SyscallN(h.raw.getInterface,
		uintptr(unsafe.Pointer(h.raw)),
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(&iface)),
	)
	if int32(ret) != 0 || iface == nil {
		return nil, fmt.Errorf("plugin: interface %q not provided", typeName)
	}
	return unsafe.Pointer(iface), nil
}

// Close tears the handle down via the native clear() entry point and
// releases the pinned backing memory. Safe to call more than once.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	ret, _, _ := purego.SyscallN(h.raw.clear, uintptr(unsafe.Pointer(h.raw)))
	h.pinner.Unpin()
	h.backing = nil
	if int32(ret) != 0 {
		return fmt.Errorf("plugin: clear: native error %d", int32(ret))
	}
	return nil
}
