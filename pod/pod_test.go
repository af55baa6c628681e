package pod

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTripPrimitives(t *testing.T) {
	buf := make([]byte, 256)

	t.Run("bool", func(t *testing.T) {
		n, err := EncodePrimitive(buf, true)
		if err != nil {
			t.Fatal(err)
		}
		if n%8 != 0 {
			t.Fatalf("size %d not 8-aligned", n)
		}
		v, consumed, err := DecodePrimitive[bool](buf)
		if err != nil {
			t.Fatal(err)
		}
		if v != true || consumed != n {
			t.Fatalf("got %v/%d want true/%d", v, consumed, n)
		}
	})

	t.Run("int", func(t *testing.T) {
		n, err := EncodePrimitive(buf, int32(-42))
		if err != nil {
			t.Fatal(err)
		}
		v, consumed, err := DecodePrimitive[int32](buf)
		if err != nil || v != -42 || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})

	t.Run("long", func(t *testing.T) {
		n, _ := EncodePrimitive(buf, int64(1)<<40)
		v, consumed, err := DecodePrimitive[int64](buf)
		if err != nil || v != 1<<40 || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})

	t.Run("float", func(t *testing.T) {
		n, _ := EncodePrimitive(buf, float32(3.5))
		v, consumed, err := DecodePrimitive[float32](buf)
		if err != nil || v != 3.5 || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})

	t.Run("double", func(t *testing.T) {
		n, _ := EncodePrimitive(buf, 2.71828)
		v, consumed, err := DecodePrimitive[float64](buf)
		if err != nil || v != 2.71828 || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})

	t.Run("fd", func(t *testing.T) {
		n, _ := EncodePrimitive(buf, Fd(7))
		v, consumed, err := DecodePrimitive[Fd](buf)
		if err != nil || v != 7 || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})

	t.Run("rectangle", func(t *testing.T) {
		r := Rectangle{Width: 3840, Height: 2160}
		n, _ := EncodePrimitive(buf, r)
		v, consumed, err := DecodePrimitive[Rectangle](buf)
		if err != nil || v != r || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})

	t.Run("fraction", func(t *testing.T) {
		f := Fraction{Num: 30000, Denom: 1001}
		n, _ := EncodePrimitive(buf, f)
		v, consumed, err := DecodePrimitive[Fraction](buf)
		if err != nil || v != f || consumed != n {
			t.Fatalf("got %v/%v/%d", v, err, consumed)
		}
	})
}

func TestAlignmentAndHeader(t *testing.T) {
	buf := make([]byte, 256)
	cases := []func() (int, error){
		func() (int, error) { return EncodeNone(buf) },
		func() (int, error) { return EncodePrimitive(buf, true) },
		func() (int, error) { return EncodeString(buf, "hello world") },
		func() (int, error) { return EncodeBytes(buf, []byte{1, 2, 3}) },
		func() (int, error) { return EncodeArray(buf, []int32{1, 2, 3}) },
	}
	wantHeaders := []struct {
		size int
		kind Kind
	}{
		{0, KindNone},
		{4, KindBool},
		{12, KindString},
		{3, KindBytes},
		{20, KindArray},
	}
	for i, f := range cases {
		n, err := f()
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if n%8 != 0 {
			t.Errorf("case %d: size %d not 8-aligned", i, n)
		}
		size, kind, err := PeekHeader(buf)
		if err != nil {
			t.Fatalf("case %d: peek: %v", i, err)
		}
		if int(size) != wantHeaders[i].size || kind != wantHeaders[i].kind {
			t.Errorf("case %d: header = (%d, %v), want (%d, %v)", i, size, kind, wantHeaders[i].size, wantHeaders[i].kind)
		}
	}
}

func TestStringLayout(t *testing.T) {
	buf := make([]byte, 32)
	n, err := EncodeString(buf, "hello")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x06, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00,
		'h', 'e', 'l', 'l', 'o', 0x00,
		0x00, 0x00,
	}
	if n != 16 {
		t.Fatalf("size = %d, want 16", n)
	}
	if diff := cmp.Diff(want, buf[:16]); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	s, consumed, err := DecodeString(buf)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" || consumed != 16 {
		t.Fatalf("got %q/%d", s, consumed)
	}
}

func TestEmptyArrayOfBool(t *testing.T) {
	buf := make([]byte, 32)
	n, err := EncodeArray[bool](buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x08, 0x00, 0x00, 0x00,
		0x0D, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
	}
	if n != 16 {
		t.Fatalf("size = %d, want 16", n)
	}
	if diff := cmp.Diff(want, buf[:16]); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	v, consumed, err := DecodeArray[bool](buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 0 || consumed != 16 {
		t.Fatalf("got %v/%d", v, consumed)
	}
}

func TestEmptyStringIsOneZeroByte(t *testing.T) {
	buf := make([]byte, 16)
	n, err := EncodeString(buf, "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Fatalf("size = %d, want 16 (8-byte header + 1 body byte + 7 padding)", n)
	}
	size, kind, _ := PeekHeader(buf)
	if size != 1 || kind != KindString {
		t.Fatalf("size=%d kind=%v", size, kind)
	}
	s, _, err := DecodeString(buf)
	if err != nil || s != "" {
		t.Fatalf("got %q/%v", s, err)
	}
}

func TestArrayUniformity(t *testing.T) {
	values := []int32{1, 2, 3, 4, 5}
	buf := make([]byte, 128)
	n, err := EncodeArray(buf, values)
	if err != nil {
		t.Fatal(err)
	}
	got, consumed, err := DecodeArray[int32](buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != n {
		t.Fatalf("consumed %d != written %d", consumed, n)
	}
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	size, _, _ := PeekHeader(buf)
	if len(got)*4+8 != size {
		t.Errorf("len*childSize+8 = %d != declared size %d", len(got)*4+8, size)
	}
}

func TestChoiceVariants(t *testing.T) {
	buf := make([]byte, 128)

	rangeChoice := Choice[int32]{Variant: ChoiceRange, Values: []int32{5, 0, 10}}
	n, err := EncodeChoice(buf, rangeChoice)
	if err != nil {
		t.Fatal(err)
	}
	got, consumed, err := DecodeChoice[int32](buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != n {
		t.Fatalf("consumed %d != %d", consumed, n)
	}
	if diff := cmp.Diff(rangeChoice, got); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}

	flagsChoice := Choice[int32]{Variant: ChoiceFlags, Values: []int32{1, 3}}
	n, err = EncodeChoice(buf, flagsChoice)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err = DecodeChoice[int32](buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(flagsChoice, got); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}

	enumChoice := Choice[int32]{Variant: ChoiceEnum, Values: []int32{1, 1, 2, 3, 5}}
	n, err = EncodeChoice(buf, enumChoice)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err = DecodeChoice[int32](buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(enumChoice, got); diff != "" {
		t.Errorf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestChoiceSizeDiscipline(t *testing.T) {
	// Hand-craft a Range choice body with a wrong declared body size
	// (claims 4 children instead of 3) and confirm decode rejects it.
	buf := make([]byte, 64)
	n, err := EncodeChoice(buf, Choice[int32]{Variant: ChoiceRange, Values: []int32{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	_ = n
	// Corrupt the declared size to claim one extra child (16 + 4*4 = 32)
	// without actually supplying it.
	nativeOrder.PutUint32(buf[0:4], 32)
	if _, _, err := DecodeChoice[int32](buf); err == nil {
		t.Fatal("expected Invalid for malformed Range arity")
	}

	n, err = EncodeChoice(buf, Choice[int32]{Variant: ChoiceFlags, Values: []int32{1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	_ = n
	nativeOrder.PutUint32(buf[0:4], 28) // claims 3 children for a Flags choice
	if _, _, err := DecodeChoice[int32](buf); err == nil {
		t.Fatal("expected Invalid for malformed Flags arity")
	}
}

func TestPaddingIdempotence(t *testing.T) {
	buf := make([]byte, 64)
	n, err := EncodeString(buf, "hi")
	if err != nil {
		t.Fatal(err)
	}
	for _, extra := range []int{0, 1, 8, 40} {
		padded := make([]byte, n+extra)
		copy(padded, buf[:n])
		s, consumed, err := DecodeString(padded)
		if err != nil {
			t.Fatalf("extra=%d: %v", extra, err)
		}
		if s != "hi" || consumed != n {
			t.Fatalf("extra=%d: got %q/%d", extra, s, consumed)
		}
	}
}

func TestPointerRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	p := Pointer{Kind: KindStruct, Value: 0xdeadbeef}
	n, err := EncodePointer(buf, p)
	if err != nil {
		t.Fatal(err)
	}
	got, consumed, err := DecodePointer(buf)
	if err != nil {
		t.Fatal(err)
	}
	if consumed != n || got != p {
		t.Fatalf("got %+v/%d want %+v/%d", got, consumed, p, n)
	}
}

func TestIDRoundTrip(t *testing.T) {
	type mediaType uint32
	buf := make([]byte, 16)
	n, err := EncodeID(buf, ID[mediaType]{Value: 7})
	if err != nil {
		t.Fatal(err)
	}
	got, consumed, err := DecodeID[mediaType](buf)
	if err != nil || consumed != n || got.Value != 7 {
		t.Fatalf("got %+v/%v/%d", got, err, consumed)
	}
}

func TestBuilderParserNestedStruct(t *testing.T) {
	b := NewBuilder(make([]byte, 256))
	b.PushStruct(func(outer *Builder) {
		outer.PushInt(1)
		outer.PushStruct(func(inner *Builder) {
			inner.PushString("nested")
			inner.PushLong(42)
		})
		outer.PushBool(true)
	})
	buf, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	p := NewParser(buf)
	var gotOuterInt int32
	var gotInnerString string
	var gotInnerLong int64
	var gotBool bool
	err = p.PopStruct(func(outer *Parser) {
		gotOuterInt, _ = outer.PopInt()
		outer.PopStruct(func(inner *Parser) {
			gotInnerString, _ = inner.PopString()
			gotInnerLong, _ = inner.PopLong()
		})
		gotBool, _ = outer.PopBool()
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Done() {
		t.Errorf("parser has %d unconsumed bytes", len(p.Remaining()))
	}
	if gotOuterInt != 1 || gotInnerString != "nested" || gotInnerLong != 42 || !gotBool {
		t.Fatalf("got (%d, %q, %d, %v), want (1, \"nested\", 42, true)",
			gotOuterInt, gotInnerString, gotInnerLong, gotBool)
	}
}

type testPropKey uint32

const (
	testPropName testPropKey = iota + 1
	testPropCount
	testPropRatio
)

func TestBuilderParserObjectProperties(t *testing.T) {
	b := NewBuilder(make([]byte, 256))
	b.PushObject(ObjectKindProps, ParamKindProps, func(o *ObjectBuilder) {
		PushPropertyString(o, testPropName, FlagReadOnly, "volume")
		PushPropertyInt(o, testPropCount, 0, 3)
		PushPropertyDouble(o, testPropRatio, 0, 0.5)
	})
	buf, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	p := NewParser(buf)
	var gotName string
	var gotFlags PropertyFlags
	var gotCount int32
	var gotRatio float64
	var gotParam ParamKind
	props := 0
	err = p.PopObject(ObjectKindProps, func(o *ObjectParser, param ParamKind) {
		gotParam = param
		for {
			key, flags, value, ok, perr := o.PopProperty()
			if perr != nil {
				t.Fatal(perr)
			}
			if !ok {
				return
			}
			props++
			switch testPropKey(key) {
			case testPropName:
				gotFlags = flags
				gotName, _ = DecodeRawString(value)
			case testPropCount:
				gotCount, _ = DecodeRawPrimitive[int32](value)
			case testPropRatio:
				gotRatio, _ = DecodeRawPrimitive[float64](value)
			default:
				t.Fatalf("unexpected property key %d", key)
			}
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Done() {
		t.Errorf("parser has %d unconsumed bytes", len(p.Remaining()))
	}
	if gotParam != ParamKindProps {
		t.Fatalf("param = %v, want %v", gotParam, ParamKindProps)
	}
	if props != 3 {
		t.Fatalf("got %d properties, want 3", props)
	}
	if gotName != "volume" || gotFlags != FlagReadOnly || gotCount != 3 || gotRatio != 0.5 {
		t.Fatalf("got (%q, %v, %d, %v), want (\"volume\", ReadOnly, 3, 0.5)",
			gotName, gotFlags, gotCount, gotRatio)
	}
}

func TestParserPopObjectKindMismatch(t *testing.T) {
	b := NewBuilder(make([]byte, 64))
	b.PushObject(ObjectKindProps, ParamKindProps, func(o *ObjectBuilder) {})
	buf, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	p := NewParser(buf)
	err = p.PopObject(ObjectKindFormat, func(o *ObjectParser, param ParamKind) {})
	if err == nil {
		t.Fatal("expected an object-kind mismatch error")
	}
}

func TestInvalidDecodesDoNotPanic(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{1, 0, 0, 0},
		{1, 0, 0, 0, 8, 0, 0, 0}, // String kind but size=1 without body
	}
	for i, buf := range cases {
		if _, _, err := DecodeString(buf); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
