package pod

import "math"

// Primitive is the set of Go types that can appear as the element type
// of an Array or Choice POD, and as a Property value decoded directly
// (as opposed to one requiring a nested Parser/Builder scope, like
// String, Bytes, Struct, or Object).
type Primitive interface {
	bool | int32 | int64 | float32 | float64 | Fd | Rectangle | Fraction
}

// kindOf returns the wire Kind for a Primitive instantiation, determined
// from a zero value via a type switch. This mirrors the teacher's
// bufDecoder style of concrete, inspectable dispatch rather than
// reflection: the switch is exhaustive over Primitive's type set, so an
// unmatched type is a bug in this package, not a user error.
func kindOf[T Primitive]() Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return KindBool
	case int32:
		return KindInt
	case int64:
		return KindLong
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	case Fd:
		return KindFd
	case Rectangle:
		return KindRectangle
	case Fraction:
		return KindFraction
	default:
		return KindNone
	}
}

func sizeOf[T Primitive]() int {
	size, _ := primitiveSize(kindOf[T]())
	return size
}

// encodeBody writes v's raw body (no header, no padding) into buf, which
// must be at least sizeOf[T]() bytes.
func encodeBody[T Primitive](buf []byte, v T) {
	switch x := any(v).(type) {
	case bool:
		var u uint32
		if x {
			u = 1
		}
		nativeOrder.PutUint32(buf, u)
	case int32:
		nativeOrder.PutUint32(buf, uint32(x))
	case int64:
		nativeOrder.PutUint64(buf, uint64(x))
	case float32:
		nativeOrder.PutUint32(buf, math.Float32bits(x))
	case float64:
		nativeOrder.PutUint64(buf, math.Float64bits(x))
	case Fd:
		nativeOrder.PutUint64(buf, uint64(int64(x)))
	case Rectangle:
		nativeOrder.PutUint32(buf[0:4], x.Width)
		nativeOrder.PutUint32(buf[4:8], x.Height)
	case Fraction:
		nativeOrder.PutUint32(buf[0:4], x.Num)
		nativeOrder.PutUint32(buf[4:8], x.Denom)
	}
}

// decodeBody reads a raw body of the appropriate fixed size from buf.
func decodeBody[T Primitive](buf []byte) T {
	var zero T
	switch any(zero).(type) {
	case bool:
		v := nativeOrder.Uint32(buf) != 0
		return any(v).(T)
	case int32:
		v := int32(nativeOrder.Uint32(buf))
		return any(v).(T)
	case int64:
		v := int64(nativeOrder.Uint64(buf))
		return any(v).(T)
	case float32:
		v := math.Float32frombits(nativeOrder.Uint32(buf))
		return any(v).(T)
	case float64:
		v := math.Float64frombits(nativeOrder.Uint64(buf))
		return any(v).(T)
	case Fd:
		v := Fd(int64(nativeOrder.Uint64(buf)))
		return any(v).(T)
	case Rectangle:
		v := Rectangle{Width: nativeOrder.Uint32(buf[0:4]), Height: nativeOrder.Uint32(buf[4:8])}
		return any(v).(T)
	case Fraction:
		v := Fraction{Num: nativeOrder.Uint32(buf[0:4]), Denom: nativeOrder.Uint32(buf[4:8])}
		return any(v).(T)
	}
	return zero
}
