package pod

// DecodePrimitive reads one complete primitive POD from buf, which must
// hold the whole frame (header + body + padding); a shorter buffer is
// Invalid. Only the header and body contents are checked, not the
// padding bytes. It returns the decoded value and the number of bytes
// the frame occupies, including padding.
func DecodePrimitive[T Primitive](buf []byte) (T, int, error) {
	var zero T
	want := kindOf[T]()
	size, err := readHeader(buf, want)
	if err != nil {
		return zero, 0, err
	}
	declared := sizeOf[T]()
	if size != declared {
		return zero, 0, errInvalid("size mismatch for " + want.String())
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return zero, 0, errInvalid("short body")
	}
	return decodeBody[T](buf[headerSize : headerSize+size]), total, nil
}

// DecodeID reads an Id<T> POD. An enumerator value that doesn't round
// trip through T is not rejected here: T is a bare ~uint32 wrapper, not
// a closed enumeration, so any u32 is accepted and it's up to the caller
// to further validate the enclosed enumerator if it matters for them.
func DecodeID[T ~uint32](buf []byte) (ID[T], int, error) {
	size, err := readHeader(buf, KindID)
	if err != nil {
		return ID[T]{}, 0, err
	}
	if size != 4 {
		return ID[T]{}, 0, errInvalid("id size")
	}
	total := headerSize + size + pad8(size)
	if len(buf) < total {
		return ID[T]{}, 0, errInvalid("short id body")
	}
	v := nativeOrder.Uint32(buf[headerSize : headerSize+4])
	return ID[T]{Value: T(v)}, total, nil
}

// DecodeNone reads a None POD, whose body is always empty.
func DecodeNone(buf []byte) (int, error) {
	size, err := readHeader(buf, KindNone)
	if err != nil {
		return 0, err
	}
	if size != 0 {
		return 0, errInvalid("none size")
	}
	return headerSize, nil
}

// DecodeString reads a String POD. The body must end in a zero byte;
// that byte is required but not included in the returned string.
func DecodeString(buf []byte) (string, int, error) {
	size, err := readHeader(buf, KindString)
	if err != nil {
		return "", 0, err
	}
	if size < 1 {
		return "", 0, errInvalid("string size")
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return "", 0, errInvalid("short string body")
	}
	body := buf[headerSize : headerSize+size]
	if body[size-1] != 0 {
		return "", 0, errInvalid("missing string terminator")
	}
	return string(body[:size-1]), total, nil
}

// DecodeBytes reads a Bytes POD. The returned slice aliases buf; callers
// that need to retain it past the lifetime of buf must copy it.
func DecodeBytes(buf []byte) ([]byte, int, error) {
	size, err := readHeader(buf, KindBytes)
	if err != nil {
		return nil, 0, err
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return nil, 0, errInvalid("short bytes body")
	}
	return buf[headerSize : headerSize+size], total, nil
}

// DecodePointer reads a Pointer POD.
func DecodePointer(buf []byte) (Pointer, int, error) {
	size, err := readHeader(buf, KindPointer)
	if err != nil {
		return Pointer{}, 0, err
	}
	wantSize := 8 + pointerWordSize
	if size != wantSize {
		return Pointer{}, 0, errInvalid("pointer size")
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return Pointer{}, 0, errInvalid("short pointer body")
	}
	kind := Kind(nativeOrder.Uint32(buf[headerSize : headerSize+4]))
	var value uintptr
	if pointerWordSize == 8 {
		value = uintptr(nativeOrder.Uint64(buf[headerSize+8 : headerSize+16]))
	} else {
		value = uintptr(nativeOrder.Uint32(buf[headerSize+8 : headerSize+12]))
	}
	return Pointer{Kind: kind, Value: value}, total, nil
}

// DecodeArray reads an Array POD whose declared child-kind and
// child-size match T. The returned slice is freshly allocated; an empty
// array (size == 8, no elements) decodes to a non-nil, zero-length
// slice.
func DecodeArray[T Primitive](buf []byte) ([]T, int, error) {
	size, err := readHeader(buf, KindArray)
	if err != nil {
		return nil, 0, err
	}
	if size < 8 {
		return nil, 0, errInvalid("array header")
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return nil, 0, errInvalid("short array body")
	}
	childSize := int(nativeOrder.Uint32(buf[headerSize : headerSize+4]))
	childKind := Kind(nativeOrder.Uint32(buf[headerSize+4 : headerSize+8]))
	wantSize, wantKind := sizeOf[T](), kindOf[T]()
	if childSize != wantSize || childKind != wantKind {
		return nil, 0, errInvalid("array child type mismatch")
	}
	remaining := size - 8
	if childSize == 0 || remaining%childSize != 0 {
		return nil, 0, errInvalid("array length")
	}
	n := remaining / childSize
	out := make([]T, n)
	off := headerSize + 8
	for i := 0; i < n; i++ {
		out[i] = decodeBody[T](buf[off : off+childSize])
		off += childSize
	}
	return out, total, nil
}

// DecodeChoice reads a Choice POD, validating that the declared
// arithmetic between its header and body length is consistent for
// fixed-arity variants (None, Range, Step, Flags) and accepting any
// length consistent with "1 default + N alternatives" for Enum.
func DecodeChoice[T Primitive](buf []byte) (Choice[T], int, error) {
	size, err := readHeader(buf, KindChoice)
	if err != nil {
		return Choice[T]{}, 0, err
	}
	if size < 16 {
		return Choice[T]{}, 0, errInvalid("choice header")
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(buf) < total {
		return Choice[T]{}, 0, errInvalid("short choice body")
	}
	variant := ChoiceVariant(nativeOrder.Uint32(buf[headerSize : headerSize+4]))
	// buf[headerSize+4:headerSize+8] is the unused flags word.
	childSize := int(nativeOrder.Uint32(buf[headerSize+8 : headerSize+12]))
	childKind := Kind(nativeOrder.Uint32(buf[headerSize+12 : headerSize+16]))
	wantSize, wantKind := sizeOf[T](), kindOf[T]()
	if childSize != wantSize || childKind != wantKind {
		return Choice[T]{}, 0, errInvalid("choice child type mismatch")
	}
	remaining := size - 16
	if childSize == 0 || remaining%childSize != 0 {
		return Choice[T]{}, 0, errInvalid("choice length")
	}
	arity := remaining / childSize
	if want, fixed := fixedArity(variant); fixed {
		if arity != want {
			return Choice[T]{}, 0, errInvalid("choice arity mismatch")
		}
	} else if variant == ChoiceEnum {
		if arity < 1 {
			return Choice[T]{}, 0, errInvalid("choice enum needs a default")
		}
	} else {
		return Choice[T]{}, 0, errInvalid("unknown choice variant")
	}
	values := make([]T, arity)
	off := headerSize + 16
	for i := 0; i < arity; i++ {
		values[i] = decodeBody[T](buf[off : off+childSize])
		off += childSize
	}
	return Choice[T]{Variant: variant, Values: values}, total, nil
}

// decodePropertyHeader reads a property's (key, flags) pair. It does not
// interpret key against any specific key enumeration: per §4.C, readers
// must accept unknown keys and expose them as a raw u32.
func decodePropertyHeader(buf []byte) (key uint32, flags PropertyFlags, err error) {
	if len(buf) < 8 {
		return 0, 0, errInvalid("short property header")
	}
	key = nativeOrder.Uint32(buf[0:4])
	flags = PropertyFlags(nativeOrder.Uint32(buf[4:8]))
	return key, flags, nil
}

// decodeObjectHeader reads an Object body's (object-kind, param-kind)
// prefix.
func decodeObjectHeader(buf []byte) (kind ObjectKind, param ParamKind, err error) {
	if len(buf) < 8 {
		return 0, 0, errInvalid("short object header")
	}
	kind = ObjectKindFromU32(nativeOrder.Uint32(buf[0:4]))
	param = ParamKindFromU32(nativeOrder.Uint32(buf[4:8]))
	return kind, param, nil
}

// PeekHeader reads just the (size, kind) header at the start of buf
// without validating against an expected kind. It's used by the Parser
// to dispatch on a value's kind before deciding which Decode* to call,
// and by RawValue to frame an unparsed property value.
func PeekHeader(buf []byte) (bodySize int, kind Kind, err error) {
	if len(buf) < headerSize {
		return 0, 0, errInvalid("short header")
	}
	return int(nativeOrder.Uint32(buf[0:4])), Kind(nativeOrder.Uint32(buf[4:8])), nil
}

// FrameSize returns the total on-wire size (header + body + padding) of
// the POD starting at buf, without decoding its body.
func FrameSize(buf []byte) (int, error) {
	size, _, err := PeekHeader(buf)
	if err != nil {
		return 0, err
	}
	total := headerSize + size + pad8(size)
	if len(buf) < total {
		return 0, errInvalid("short frame")
	}
	return total, nil
}
