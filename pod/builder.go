package pod

// Builder is a single-use forward writer over a caller-supplied byte
// slice. Every Push* method returns the Builder so calls can be chained;
// once an error occurs it is sticky and every subsequent Push* becomes a
// no-op, mirroring the upstream design so callers don't have to check
// errors after every single field.
type Builder struct {
	buf []byte
	pos int
	err error
}

// NewBuilder wraps buf for writing. buf's existing contents beyond the
// final written length are left untouched; Build returns only the
// written prefix.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf}
}

// Build returns the written prefix of the buffer, or the first error
// encountered by any Push* call.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.buf[:b.pos], nil
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return b.pos }

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) advance(n int, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.pos += n
}

func (b *Builder) PushNone() *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodeNone(b.buf[b.pos:])
	b.advance(n, err)
	return b
}

func (b *Builder) PushBool(v bool) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func PushID[T ~uint32](b *Builder, v ID[T]) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodeID(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushInt(v int32) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushLong(v int64) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushFloat(v float32) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushDouble(v float64) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushFd(v Fd) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushRectangle(v Rectangle) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushFraction(v Fraction) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePrimitive(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushString(s string) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodeString(b.buf[b.pos:], s)
	b.advance(n, err)
	return b
}

func (b *Builder) PushBytes(v []byte) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodeBytes(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func (b *Builder) PushPointer(v Pointer) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodePointer(b.buf[b.pos:], v)
	b.advance(n, err)
	return b
}

func PushArray[T Primitive](b *Builder, values []T) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodeArray(b.buf[b.pos:], values)
	b.advance(n, err)
	return b
}

func PushChoice[T Primitive](b *Builder, c Choice[T]) *Builder {
	if b.err != nil {
		return b
	}
	n, err := EncodeChoice(b.buf[b.pos:], c)
	b.advance(n, err)
	return b
}

// PushStruct opens a Struct scope. The outer builder reserves header
// space, runs fn against a fresh sub-Builder over the remaining buffer,
// then patches the reserved header with the scope's body size once fn
// returns.
func (b *Builder) PushStruct(fn func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.buf)-b.pos < headerSize {
		return b.fail(errNoSpace("struct header"))
	}
	headerAt := b.pos
	b.pos += headerSize

	inner := &Builder{buf: b.buf[:], pos: b.pos}
	fn(inner)
	if inner.err != nil {
		return b.fail(inner.err)
	}

	size := inner.pos - headerAt - headerSize
	writeHeader(b.buf[headerAt:], size, KindStruct)
	b.pos = inner.pos
	return b
}

// PushObject opens an Object scope. The parameter kind is recorded in
// the header the moment the scope opens, as required by §4.C; fn then
// appends (key, flags, value) properties via ObjectBuilder.
func (b *Builder) PushObject(kind ObjectKind, param ParamKind, fn func(*ObjectBuilder)) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.buf)-b.pos < headerSize+8 {
		return b.fail(errNoSpace("object header"))
	}
	headerAt := b.pos
	encodeObjectHeader(b.buf[headerAt+headerSize:], kind, param)
	b.pos += headerSize + 8

	inner := &Builder{buf: b.buf[:], pos: b.pos}
	fn(&ObjectBuilder{b: inner})
	if inner.err != nil {
		return b.fail(inner.err)
	}

	size := inner.pos - headerAt - headerSize
	writeHeader(b.buf[headerAt:], size, KindObject)
	b.pos = inner.pos
	return b
}

// ObjectBuilder appends properties to an open Object scope.
type ObjectBuilder struct {
	b *Builder
}

// PushProperty appends one (key, flags, value) triple. The value is
// written by the encodeValue callback, which pushes exactly one POD onto
// the Builder it is given; callers typically go through the
// PushProperty* convenience wrappers below instead of this directly.
func (o *ObjectBuilder) PushProperty(key uint32, flags PropertyFlags, encodeValue func(*Builder)) *ObjectBuilder {
	if o.b.err != nil {
		return o
	}
	if len(o.b.buf)-o.b.pos < 8 {
		o.b.fail(errNoSpace("property header"))
		return o
	}
	headerAt := o.b.pos
	o.b.pos += 8

	encodeValue(o.b)
	if o.b.err != nil {
		return o
	}
	encodePropertyHeader(o.b.buf[headerAt:headerAt+8], key, flags)
	return o
}

func PushPropertyBool[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v bool) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushBool(v) })
}

func PushPropertyInt[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v int32) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushInt(v) })
}

func PushPropertyLong[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v int64) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushLong(v) })
}

func PushPropertyFloat[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v float32) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushFloat(v) })
}

func PushPropertyDouble[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v float64) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushDouble(v) })
}

func PushPropertyString[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v string) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushString(v) })
}

func PushPropertyRectangle[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v Rectangle) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushRectangle(v) })
}

func PushPropertyFraction[K ~uint32](o *ObjectBuilder, key K, flags PropertyFlags, v Fraction) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { b.PushFraction(v) })
}

func PushPropertyChoice[K ~uint32, T Primitive](o *ObjectBuilder, key K, flags PropertyFlags, v Choice[T]) *ObjectBuilder {
	return o.PushProperty(uint32(key), flags, func(b *Builder) { PushChoice(b, v) })
}
