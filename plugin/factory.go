package plugin

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/aclements/go-spa/dict"
)

// Factory is a handle factory exported by a loaded Plugin: a named
// constructor for one flavor of Handle, along with the interface types
// it can produce.
type Factory struct {
	raw *cHandleFactory
}

// Version reports the factory's ABI version.
func (f *Factory) Version() uint32 { return f.raw.version }

// Name is the factory's lookup name, e.g. "support.log".
func (f *Factory) Name() string { return goString(f.raw.name) }

// InterfaceInfo enumerates the interface type names this factory's
// handles can produce, by repeatedly calling the native
// enum_interface_info entry until it reports no more entries.
func (f *Factory) InterfaceInfo() []string {
	var infos []string
	var info *cInterfaceInfo
	var index uint32

	for {
		ret, _, _ := purego.SyscallN(f.raw.enumInfo,
			uintptr(unsafe.Pointer(f.raw)),
			uintptr(unsafe.Pointer(&info)),
			uintptr(unsafe.Pointer(&index)),
		)
		if int32(ret) != 1 {
			return infos
		}
		infos = append(infos, goString(info.typ))
	}
}

// Init constructs a Handle from this factory. info carries
// construction properties (may be nil); supportPtr/supportLen is the
// foreign-ABI support array from a Support registry's CSupport method.
func (f *Factory) Init(info *dict.Dict, supportPtr unsafe.Pointer, supportLen uint32) (*Handle, error) {
	var infoPtr unsafe.Pointer
	if info != nil {
		infoPtr, _ = info.Raw()
	}

	size, _, _ := purego.SyscallN(f.raw.getSize,
		uintptr(unsafe.Pointer(f.raw)),
		uintptr(infoPtr),
	)
	if size == 0 {
		size = uintptr(unsafe.Sizeof(cHandle{}))
	}

	buf := make([]byte, size)
	raw := (*cHandle)(unsafe.Pointer(&buf[0]))

	h := &Handle{raw: raw, backing: buf}
	h.pinner.Pin(&buf[0])

	ret, _, errno := purego.SyscallN(f.raw.initFn,
		uintptr(unsafe.Pointer(f.raw)),
		uintptr(unsafe.Pointer(raw)),
		uintptr(infoPtr),
		uintptr(supportPtr),
		uintptr(supportLen),
	)
	if int32(ret) != 0 {
		h.pinner.Unpin()
		if errno != 0 {
			return nil, fmt.Errorf("plugin: init %q: %w", f.Name(), syscall.Errno(errno))
		}
		return nil, fmt.Errorf("plugin: init %q: native error %d", f.Name(), int32(ret))
	}
	return h, nil
}
