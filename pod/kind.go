// Package pod implements the self-describing, length-prefixed, 8-byte
// aligned binary codec used for all structured data passed between the
// runtime and its support plugins: properties, format negotiations, and
// command parameters.
//
// Every encoded value (a "POD") starts with an 8-byte header of (body
// size, kind) followed by the body and enough zero padding to bring the
// total size to a multiple of 8. All multi-byte fields are encoded in
// the host's native byte order; the format does not attempt to be
// portable across endianness.
package pod

import "strconv"

// Kind identifies the shape of a POD's body. The numeric values are
// part of the wire format and must never be renumbered.
type Kind uint32

const (
	KindStart Kind = iota
	KindNone
	KindBool
	KindID
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindRectangle
	KindFraction
	KindBitmap
	KindArray
	KindStruct
	KindObject
	KindSequence
	KindPointer
	KindFd
	KindChoice
	KindPod
)

var kindNames = [...]string{
	KindStart:     "Start",
	KindNone:      "None",
	KindBool:      "Bool",
	KindID:        "Id",
	KindInt:       "Int",
	KindLong:      "Long",
	KindFloat:     "Float",
	KindDouble:    "Double",
	KindString:    "String",
	KindBytes:     "Bytes",
	KindRectangle: "Rectangle",
	KindFraction:  "Fraction",
	KindBitmap:    "Bitmap",
	KindArray:     "Array",
	KindStruct:    "Struct",
	KindObject:    "Object",
	KindSequence:  "Sequence",
	KindPointer:   "Pointer",
	KindFd:        "Fd",
	KindChoice:    "Choice",
	KindPod:       "Pod",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	if k == KindStart {
		return "Start"
	}
	return "Invalid(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// KindFromU32 converts a raw wire value into a Kind. It reports false
// for any value above KindPod, that is, for every value that is not one
// of the known kinds.
func KindFromU32(v uint32) (Kind, bool) {
	if v > uint32(KindPod) {
		return 0, false
	}
	return Kind(v), true
}

// primitiveSize returns the fixed body size of k, and whether k is a
// fixed-size primitive kind at all (as opposed to a variable-length or
// structural kind like String, Bytes, Array, Struct, Object, Choice,
// Sequence, Bitmap).
func primitiveSize(k Kind) (int, bool) {
	switch k {
	case KindNone:
		return 0, true
	case KindBool, KindID, KindInt, KindFloat:
		return 4, true
	case KindLong, KindDouble, KindFd:
		return 8, true
	case KindRectangle, KindFraction:
		return 8, true
	default:
		return 0, false
	}
}

// ObjectKind identifies the schema of an Object POD's body. Numeric
// assignments start at 0x40000 and are part of the wire format.
type ObjectKind uint32

const (
	ObjectKindStart ObjectKind = 0x40000 + iota
	ObjectKindPropInfo
	ObjectKindProps
	ObjectKindFormat
	ObjectKindParamBuffers
	ObjectKindParamMeta
	ObjectKindParamIO
	ObjectKindParamProfile
	ObjectKindParamPortConfig
	ObjectKindParamRoute
	ObjectKindProfiler
	ObjectKindParamLatency
	ObjectKindParamProcessLatency
	ObjectKindParamTag
)

var objectKindNames = map[ObjectKind]string{
	ObjectKindStart:               "Start",
	ObjectKindPropInfo:            "PropInfo",
	ObjectKindProps:               "Props",
	ObjectKindFormat:              "Format",
	ObjectKindParamBuffers:        "ParamBuffers",
	ObjectKindParamMeta:           "ParamMeta",
	ObjectKindParamIO:             "ParamIO",
	ObjectKindParamProfile:        "ParamProfile",
	ObjectKindParamPortConfig:     "ParamPortConfig",
	ObjectKindParamRoute:          "ParamRoute",
	ObjectKindProfiler:            "Profiler",
	ObjectKindParamLatency:        "ParamLatency",
	ObjectKindParamProcessLatency: "ParamProcessLatency",
	ObjectKindParamTag:            "ParamTag",
}

func (k ObjectKind) String() string {
	if name, ok := objectKindNames[k]; ok {
		return name
	}
	return "Invalid(0x" + strconv.FormatUint(uint64(k), 16) + ")"
}

// ObjectKindFromU32 is the total, fallible conversion from a wire value
// to an ObjectKind. Unlike Kind, unrecognized object kinds are common in
// practice (a newer plugin may introduce param schemas an older reader
// doesn't know about) and decode to a value whose String method reports
// "Invalid(...)" rather than being rejected outright; callers that need
// strict validation compare against a specific expected kind instead.
func ObjectKindFromU32(v uint32) ObjectKind {
	return ObjectKind(v)
}

// ParamKind is the second header word of an Object POD, identifying
// which parameter schema the object's properties should be interpreted
// against.
type ParamKind uint32

const (
	ParamKindInvalid ParamKind = iota
	ParamKindPropInfo
	ParamKindProps
	ParamKindEnumFormat
	ParamKindFormat
	ParamKindBuffers
	ParamKindMeta
	ParamKindIO
	ParamKindEnumProfile
	ParamKindProfile
	ParamKindEnumPortConfig
	ParamKindPortConfig
	ParamKindEnumRoute
	ParamKindRoute
	ParamKindControl
	ParamKindLatency
	ParamKindProcessLatency
	ParamKindTag
)

var paramKindNames = [...]string{
	ParamKindInvalid:        "Invalid",
	ParamKindPropInfo:       "PropInfo",
	ParamKindProps:          "Props",
	ParamKindEnumFormat:     "EnumFormat",
	ParamKindFormat:         "Format",
	ParamKindBuffers:        "Buffers",
	ParamKindMeta:           "Meta",
	ParamKindIO:             "IO",
	ParamKindEnumProfile:    "EnumProfile",
	ParamKindProfile:        "Profile",
	ParamKindEnumPortConfig: "EnumPortConfig",
	ParamKindPortConfig:     "PortConfig",
	ParamKindEnumRoute:      "EnumRoute",
	ParamKindRoute:          "Route",
	ParamKindControl:        "Control",
	ParamKindLatency:        "Latency",
	ParamKindProcessLatency: "ProcessLatency",
	ParamKindTag:            "Tag",
}

func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return "Invalid(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// ParamKindFromU32 is the total, fallible conversion for ParamKind.
// Object bodies routinely carry parameter kinds a given reader doesn't
// recognize (forward compatibility), so this never fails; it's provided
// for symmetry with the other Kind-family conversions.
func ParamKindFromU32(v uint32) ParamKind {
	return ParamKind(v)
}

// ChoiceVariant is the first field of a Choice POD's body, selecting
// which of the five Choice shapes the remaining children represent.
type ChoiceVariant uint32

const (
	ChoiceNone ChoiceVariant = iota
	ChoiceRange
	ChoiceStep
	ChoiceEnum
	ChoiceFlags
)

func (v ChoiceVariant) String() string {
	switch v {
	case ChoiceNone:
		return "None"
	case ChoiceRange:
		return "Range"
	case ChoiceStep:
		return "Step"
	case ChoiceEnum:
		return "Enum"
	case ChoiceFlags:
		return "Flags"
	default:
		return "Invalid(" + strconv.FormatUint(uint64(v), 10) + ")"
	}
}

// fixedArity reports the number of T-sized children a Choice variant
// carries, for every variant except Enum, whose arity is 1 plus however
// many alternatives were encoded. The source's Flags variant is a single
// (default, flags) pair, not a default plus a variable-length flag list:
// "flags" here is one bitmask-shaped T, matching original source's
// `Flags { default: T, flags: T }`, and the spec's own Variant-to-count
// table (Flags -> 2).
func fixedArity(v ChoiceVariant) (int, bool) {
	switch v {
	case ChoiceNone:
		return 1, true
	case ChoiceRange:
		return 3, true
	case ChoiceStep:
		return 4, true
	case ChoiceFlags:
		return 2, true
	default:
		return 0, false
	}
}
