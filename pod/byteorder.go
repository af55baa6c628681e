package pod

import (
	"encoding/binary"
	"unsafe"
)

// nativeOrder is the host's byte order. The format is explicitly not
// portable across endianness (§3), so every multi-byte field is written
// and read with this order rather than a fixed one.
var nativeOrder binary.ByteOrder

func init() {
	var probe uint16 = 1
	if *(*byte)(unsafe.Pointer(&probe)) == 0 {
		nativeOrder = binary.BigEndian
	} else {
		nativeOrder = binary.LittleEndian
	}
}

// headerSize is the size of every POD's (body size, kind) header.
const headerSize = 8

func writeHeader(buf []byte, bodySize int, kind Kind) {
	nativeOrder.PutUint32(buf[0:4], uint32(bodySize))
	nativeOrder.PutUint32(buf[4:8], uint32(kind))
}

// readHeader reads and validates a POD header, returning the declared
// body size. It does not check that the buffer actually holds that many
// body bytes; callers must do that once they know the full frame length
// (size + padding) they need.
func readHeader(buf []byte, want Kind) (bodySize int, err error) {
	if len(buf) < headerSize {
		return 0, errInvalid("short header")
	}
	size := nativeOrder.Uint32(buf[0:4])
	kind := nativeOrder.Uint32(buf[4:8])
	if Kind(kind) != want {
		return 0, errInvalid("unexpected kind")
	}
	return int(size), nil
}
