package plugin

import "unsafe"

// The types below mirror the companion native library's repr(C) plugin
// ABI field-for-field: a plain sequence of scalar/pointer fields with
// no further attributes lays out identically whether the struct is
// declared in C or in Go, so no manual packing directives are needed
// beyond matching field order.

type cInterfaceInfo struct {
	typ *byte
}

type cHandleFactory struct {
	version uint32
	_       uint32 // padding: the pointer field below needs 8-byte alignment
	name    *byte
	info    unsafe.Pointer

	getSize  uintptr // fn(*cHandleFactory, *Dict) uintptr
	initFn   uintptr // fn(*cHandleFactory, *cHandle, *Dict, unsafe.Pointer, uint32) int32
	enumInfo uintptr // fn(*cHandleFactory, **cInterfaceInfo, *uint32) int32
}

type cHandle struct {
	version uint32
	_       uint32

	getInterface uintptr // fn(*cHandle, *byte, **cInterface) int32
	clear        uintptr // fn(*cHandle) int32
}

type cCallbacks struct {
	funcs unsafe.Pointer
	data  unsafe.Pointer
}

type cInterface struct {
	typ     *byte
	version uint32
	_       uint32
	cb      cCallbacks
}

func cstr(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return unsafe.String(p, n)
}
