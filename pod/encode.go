package pod

// EncodePrimitive writes a complete header+body+padding POD for one of
// the fixed-size primitive kinds (None is handled by EncodeNone; ID has
// its own EncodeID since it carries a type parameter that isn't in the
// Primitive set). It returns the number of bytes written, or ErrNoSpace.
func EncodePrimitive[T Primitive](buf []byte, v T) (int, error) {
	size := sizeOf[T]()
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return 0, errNoSpace("primitive")
	}
	writeHeader(buf, size, kindOf[T]())
	if size > 0 {
		encodeBody(buf[headerSize:headerSize+size], v)
	}
	clear(buf[headerSize+size : total])
	return total, nil
}

// EncodeNone writes the zero-body None POD.
func EncodeNone(buf []byte) (int, error) {
	if len(buf) < headerSize {
		return 0, errNoSpace("none")
	}
	writeHeader(buf, 0, KindNone)
	return headerSize, nil
}

// EncodeID writes an Id<T> POD: a 4-byte body holding the enumerator's
// u32 representation, followed by 4 bytes of padding to 8.
func EncodeID[T ~uint32](buf []byte, v ID[T]) (int, error) {
	const size = 4
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return 0, errNoSpace("id")
	}
	writeHeader(buf, size, KindID)
	nativeOrder.PutUint32(buf[headerSize:headerSize+size], uint32(v.Value))
	clear(buf[headerSize+size : total])
	return total, nil
}

// EncodeString writes a String POD: the UTF-8 bytes of s followed by a
// terminating zero, counted in the declared size, then padding to 8.
func EncodeString(buf []byte, s string) (int, error) {
	bodyLen := len(s) + 1
	padding := pad8(bodyLen)
	total := headerSize + bodyLen + padding
	if len(buf) < total {
		return 0, errNoSpace("string")
	}
	writeHeader(buf, bodyLen, KindString)
	copy(buf[headerSize:], s)
	buf[headerSize+len(s)] = 0
	clear(buf[headerSize+bodyLen : total])
	return total, nil
}

// EncodeBytes writes a Bytes POD: the raw bytes, no terminator, padded
// to 8.
func EncodeBytes(buf []byte, b []byte) (int, error) {
	bodyLen := len(b)
	padding := pad8(bodyLen)
	total := headerSize + bodyLen + padding
	if len(buf) < total {
		return 0, errNoSpace("bytes")
	}
	writeHeader(buf, bodyLen, KindBytes)
	copy(buf[headerSize:headerSize+bodyLen], b)
	clear(buf[headerSize+bodyLen : total])
	return total, nil
}

// pointerWordSize is the size of a native pointer on this platform, per
// §4.B: "On 32-bit machines, a 4-byte tail-padding is written."
const pointerWordSize = 4 << (^uintptr(0) >> 63)

// EncodePointer writes a Pointer POD: (pointee-kind, reserved zero,
// pointer) with a tail-padding word on 32-bit platforms so the pointer
// field itself stays naturally aligned within the body.
func EncodePointer(buf []byte, p Pointer) (int, error) {
	bodyLen := 8 + pointerWordSize
	padding := pad8(bodyLen)
	total := headerSize + bodyLen + padding
	if len(buf) < total {
		return 0, errNoSpace("pointer")
	}
	writeHeader(buf, bodyLen, KindPointer)
	nativeOrder.PutUint32(buf[headerSize:headerSize+4], uint32(p.Kind))
	nativeOrder.PutUint32(buf[headerSize+4:headerSize+8], 0)
	if pointerWordSize == 8 {
		nativeOrder.PutUint64(buf[headerSize+8:headerSize+16], uint64(p.Value))
	} else {
		nativeOrder.PutUint32(buf[headerSize+8:headerSize+12], uint32(p.Value))
	}
	clear(buf[headerSize+bodyLen : total])
	return total, nil
}

// EncodeArray writes an Array POD: a (child-size, child-kind) header
// followed by each element's raw body back to back, with no per-element
// header, then padding to 8.
func EncodeArray[T Primitive](buf []byte, values []T) (int, error) {
	childSize := sizeOf[T]()
	bodyLen := 8 + childSize*len(values)
	padding := pad8(bodyLen)
	total := headerSize + bodyLen + padding
	if len(buf) < total {
		return 0, errNoSpace("array")
	}
	writeHeader(buf, bodyLen, KindArray)
	nativeOrder.PutUint32(buf[headerSize:headerSize+4], uint32(childSize))
	nativeOrder.PutUint32(buf[headerSize+4:headerSize+8], uint32(kindOf[T]()))
	off := headerSize + 8
	for _, v := range values {
		encodeBody(buf[off:off+childSize], v)
		off += childSize
	}
	clear(buf[off:total])
	return total, nil
}

// EncodeChoice writes a Choice POD: (variant, flags, child-size,
// child-kind) followed by the variant's flattened children.
//
// The flags word in the header is unused by this format (the original
// implementation never populates it either) and is always written as
// zero.
func EncodeChoice[T Primitive](buf []byte, c Choice[T]) (int, error) {
	childSize := sizeOf[T]()
	arity := len(c.Values)
	bodyLen := 16 + childSize*arity
	padding := pad8(bodyLen)
	total := headerSize + bodyLen + padding
	if len(buf) < total {
		return 0, errNoSpace("choice")
	}
	writeHeader(buf, bodyLen, KindChoice)
	nativeOrder.PutUint32(buf[headerSize:headerSize+4], uint32(c.Variant))
	nativeOrder.PutUint32(buf[headerSize+4:headerSize+8], 0)
	nativeOrder.PutUint32(buf[headerSize+8:headerSize+12], uint32(childSize))
	nativeOrder.PutUint32(buf[headerSize+12:headerSize+16], uint32(kindOf[T]()))
	off := headerSize + 16
	for _, v := range c.Values {
		encodeBody(buf[off:off+childSize], v)
		off += childSize
	}
	clear(buf[off:total])
	return total, nil
}

// encodePropertyHeader writes a property's (key, flags) pair; the value
// POD itself is written by the caller immediately after.
func encodePropertyHeader(buf []byte, key uint32, flags PropertyFlags) {
	nativeOrder.PutUint32(buf[0:4], key)
	nativeOrder.PutUint32(buf[4:8], uint32(flags))
}

// encodeObjectHeader writes an Object body's (object-kind, param-kind)
// prefix.
func encodeObjectHeader(buf []byte, kind ObjectKind, param ParamKind) {
	nativeOrder.PutUint32(buf[0:4], uint32(kind))
	nativeOrder.PutUint32(buf[4:8], uint32(param))
}
