package pod

// Parser is the forward reader analogue of Builder: it holds an
// immutable slice and a cursor, and each Pop* call advances past exactly
// one complete POD (header + body + padding).
type Parser struct {
	buf []byte
	pos int
}

// NewParser wraps buf for reading from the start.
func NewParser(buf []byte) *Parser {
	return &Parser{buf: buf}
}

// Remaining returns the unconsumed tail of the buffer.
func (p *Parser) Remaining() []byte { return p.buf[p.pos:] }

// Done reports whether the parser has consumed the entire buffer.
func (p *Parser) Done() bool { return p.pos >= len(p.buf) }

// PeekKind reports the kind of the next POD without consuming it, for
// callers that dispatch on kind before choosing which Pop* to call.
func (p *Parser) PeekKind() (Kind, error) {
	_, kind, err := PeekHeader(p.buf[p.pos:])
	return kind, err
}

func (p *Parser) PopNone() error {
	n, err := DecodeNone(p.buf[p.pos:])
	if err != nil {
		return err
	}
	p.pos += n
	return nil
}

func (p *Parser) PopBool() (bool, error) {
	v, n, err := DecodePrimitive[bool](p.buf[p.pos:])
	if err != nil {
		return false, err
	}
	p.pos += n
	return v, nil
}

func PopID[T ~uint32](p *Parser) (ID[T], error) {
	v, n, err := DecodeID[T](p.buf[p.pos:])
	if err != nil {
		return ID[T]{}, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopInt() (int32, error) {
	v, n, err := DecodePrimitive[int32](p.buf[p.pos:])
	if err != nil {
		return 0, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopLong() (int64, error) {
	v, n, err := DecodePrimitive[int64](p.buf[p.pos:])
	if err != nil {
		return 0, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopFloat() (float32, error) {
	v, n, err := DecodePrimitive[float32](p.buf[p.pos:])
	if err != nil {
		return 0, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopDouble() (float64, error) {
	v, n, err := DecodePrimitive[float64](p.buf[p.pos:])
	if err != nil {
		return 0, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopFd() (Fd, error) {
	v, n, err := DecodePrimitive[Fd](p.buf[p.pos:])
	if err != nil {
		return 0, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopRectangle() (Rectangle, error) {
	v, n, err := DecodePrimitive[Rectangle](p.buf[p.pos:])
	if err != nil {
		return Rectangle{}, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopFraction() (Fraction, error) {
	v, n, err := DecodePrimitive[Fraction](p.buf[p.pos:])
	if err != nil {
		return Fraction{}, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopString() (string, error) {
	v, n, err := DecodeString(p.buf[p.pos:])
	if err != nil {
		return "", err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopBytes() ([]byte, error) {
	v, n, err := DecodeBytes(p.buf[p.pos:])
	if err != nil {
		return nil, err
	}
	p.pos += n
	return v, nil
}

func (p *Parser) PopPointer() (Pointer, error) {
	v, n, err := DecodePointer(p.buf[p.pos:])
	if err != nil {
		return Pointer{}, err
	}
	p.pos += n
	return v, nil
}

func PopArray[T Primitive](p *Parser) ([]T, error) {
	v, n, err := DecodeArray[T](p.buf[p.pos:])
	if err != nil {
		return nil, err
	}
	p.pos += n
	return v, nil
}

func PopChoice[T Primitive](p *Parser) (Choice[T], error) {
	v, n, err := DecodeChoice[T](p.buf[p.pos:])
	if err != nil {
		return Choice[T]{}, err
	}
	p.pos += n
	return v, nil
}

// PopStruct reserves a sub-slice of exactly the declared body length and
// hands a sub-Parser to fn. After fn returns, the outer cursor jumps to
// end-of-scope regardless of whether fn consumed every field, so trailing
// unknown fields are tolerated the same way unknown object properties
// are.
func (p *Parser) PopStruct(fn func(*Parser)) error {
	size, err := readHeader(p.buf[p.pos:], KindStruct)
	if err != nil {
		return err
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(p.buf)-p.pos < total {
		return errInvalid("short struct body")
	}
	bodyStart := p.pos + headerSize
	inner := &Parser{buf: p.buf[bodyStart : bodyStart+size]}
	fn(inner)
	p.pos += total
	return nil
}

// PopObject reserves a sub-slice of exactly the declared body length
// (minus the object/param-kind prefix), cross-checks the declared object
// kind against want, and hands an ObjectParser and the decoded param kind
// to fn.
func (p *Parser) PopObject(want ObjectKind, fn func(*ObjectParser, ParamKind)) error {
	size, err := readHeader(p.buf[p.pos:], KindObject)
	if err != nil {
		return err
	}
	if size < 8 {
		return errInvalid("object header")
	}
	padding := pad8(size)
	total := headerSize + size + padding
	if len(p.buf)-p.pos < total {
		return errInvalid("short object body")
	}
	bodyStart := p.pos + headerSize
	kind, param, err := decodeObjectHeader(p.buf[bodyStart : bodyStart+8])
	if err != nil {
		return err
	}
	if kind != want {
		return errInvalid("object kind mismatch")
	}
	inner := &ObjectParser{buf: p.buf[bodyStart+8 : bodyStart+size]}
	fn(inner, param)
	p.pos += total
	return nil
}

// ObjectParser iterates the (key, flags, value) properties of an open
// Object scope.
type ObjectParser struct {
	buf []byte
	pos int
}

// PopProperty returns the next property, or ok==false at end of scope.
// The value is returned as a RawValue rather than eagerly decoded, so an
// unknown key never prevents the parser from skipping cleanly to the
// next property (§9, "Object sub-parsing").
func (o *ObjectParser) PopProperty() (key uint32, flags PropertyFlags, value RawValue, ok bool, err error) {
	if o.pos >= len(o.buf) {
		return 0, 0, RawValue{}, false, nil
	}
	if len(o.buf)-o.pos < 8 {
		return 0, 0, RawValue{}, false, errInvalid("short property")
	}
	key, flags, err = decodePropertyHeader(o.buf[o.pos:])
	if err != nil {
		return 0, 0, RawValue{}, false, err
	}
	o.pos += 8
	n, err := FrameSize(o.buf[o.pos:])
	if err != nil {
		return 0, 0, RawValue{}, false, err
	}
	value = RawValue{buf: o.buf[o.pos : o.pos+n]}
	o.pos += n
	return key, flags, value, true, nil
}

// RawValue is a length-validated, not-yet-decoded view over a single
// POD. It lets callers dispatch on Kind before choosing which Decode*
// call to make against the value, without requiring the object parser to
// know every value kind up front.
type RawValue struct {
	buf []byte
}

// Bytes returns the raw encoded frame (header + body + padding).
func (v RawValue) Bytes() []byte { return v.buf }

// Kind returns the wire kind of the value without decoding its body.
func (v RawValue) Kind() (Kind, error) {
	_, kind, err := PeekHeader(v.buf)
	return kind, err
}

// DecodeRawPrimitive fully decodes the value as primitive type T (one
// of DecodePrimitive's Primitive instantiations; use the package's other Decode*
// helpers, called directly against v.Bytes() for String/Bytes/Array/
// Choice/Pointer/ID/Struct/Object values).
func DecodeRawPrimitive[T Primitive](v RawValue) (T, error) {
	val, _, err := DecodePrimitive[T](v.buf)
	return val, err
}

func DecodeRawString(v RawValue) (string, error) {
	val, _, err := DecodeString(v.buf)
	return val, err
}

func DecodeRawBytes(v RawValue) ([]byte, error) {
	val, _, err := DecodeBytes(v.buf)
	return val, err
}

func DecodeRawArray[T Primitive](v RawValue) ([]T, error) {
	val, _, err := DecodeArray[T](v.buf)
	return val, err
}

func DecodeRawChoice[T Primitive](v RawValue) (Choice[T], error) {
	val, _, err := DecodeChoice[T](v.buf)
	return val, err
}

func DecodeRawPointer(v RawValue) (Pointer, error) {
	val, _, err := DecodePointer(v.buf)
	return val, err
}

func DecodeRawID[T ~uint32](v RawValue) (ID[T], error) {
	val, _, err := DecodeID[T](v.buf)
	return val, err
}

// DecodeRawStruct hands a sub-Parser over v's body to fn, the same way
// Parser.PopStruct does for an inline struct field.
func DecodeRawStruct(v RawValue, fn func(*Parser)) error {
	p := NewParser(v.buf)
	return p.PopStruct(fn)
}

// DecodeRawObject hands an ObjectParser over v's body to fn, the same
// way Parser.PopObject does for an inline object field.
func DecodeRawObject(v RawValue, want ObjectKind, fn func(*ObjectParser, ParamKind)) error {
	p := NewParser(v.buf)
	return p.PopObject(want, fn)
}
