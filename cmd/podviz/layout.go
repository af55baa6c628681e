package main

import (
	"encoding/binary"
	"fmt"

	"github.com/aclements/go-spa/pod"
)

// headerBytes is the wire format's fixed (body size, kind) header,
// mirroring pod's own internal layout constant; it's part of the
// documented wire format (see pod's package doc) so re-stating it here
// to walk raw bytes doesn't risk drifting from the codec itself.
const headerBytes = 8

func pad8(n int) int {
	if r := n % 8; r != 0 {
		return 8 - r
	}
	return 0
}

// span is one labeled box in the rendered diagram: a byte range tagged
// with what it is, plus any nested spans found inside its body.
type span struct {
	Offset   int
	Length   int
	Label    string
	Detail   string
	Children []span
	Padding  int
}

// layoutBuffer walks a complete, byte-aligned sequence of top-level
// PODs (as many as fit in buf) and returns one span per one. base is
// added to every reported offset so nested calls report positions
// absolute within the original top-level buffer.
func layoutBuffer(buf []byte, base int) ([]span, error) {
	var spans []span
	offset := 0
	for offset < len(buf) {
		s, n, err := layoutOne(buf[offset:], base+offset)
		if err != nil {
			return spans, fmt.Errorf("at offset %d: %w", base+offset, err)
		}
		spans = append(spans, s)
		offset += n
	}
	return spans, nil
}

// layoutFile is the entry point used by main: it walks buf from the
// start, reporting absolute offsets.
func layoutFile(buf []byte) ([]span, error) {
	return layoutBuffer(buf, 0)
}

func layoutOne(buf []byte, base int) (span, int, error) {
	bodySize, kind, err := pod.PeekHeader(buf)
	if err != nil {
		return span{}, 0, err
	}
	padding := pad8(bodySize)
	total := headerBytes + bodySize + padding
	if total > len(buf) {
		return span{}, 0, fmt.Errorf("declared size %d exceeds remaining buffer %d", total, len(buf))
	}
	body := buf[headerBytes : headerBytes+bodySize]

	s := span{
		Offset:  base,
		Length:  total,
		Label:   kind.String(),
		Padding: padding,
	}

	switch kind {
	case pod.KindStruct:
		children, err := layoutBuffer(body, base+headerBytes)
		if err == nil {
			s.Children = children
		}
	case pod.KindObject:
		s.Children = layoutObjectBody(body, base+headerBytes)
	case pod.KindArray:
		s.Children = layoutArrayBody(body, base+headerBytes)
	case pod.KindChoice:
		s.Children = layoutChoiceBody(body, base+headerBytes)
	default:
		s.Detail = fmt.Sprintf("%d bytes", bodySize)
	}

	return s, total, nil
}

// layoutObjectBody walks an Object body: an 8-byte (kind, param)
// prefix followed by a sequence of (key, flags, value) properties.
func layoutObjectBody(body []byte, base int) []span {
	if len(body) < 8 {
		return nil
	}
	spans := []span{{
		Offset: base,
		Length: 8,
		Label:  "object header",
		Detail: fmt.Sprintf("kind=%d param=%d", binary.NativeEndian.Uint32(body[0:4]), binary.NativeEndian.Uint32(body[4:8])),
	}}

	offset := 8
	for offset+8 <= len(body) {
		key := binary.NativeEndian.Uint32(body[offset : offset+4])
		flags := binary.NativeEndian.Uint32(body[offset+4 : offset+8])
		propStart := offset
		offset += 8

		if offset >= len(body) {
			break
		}
		valueSpan, n, err := layoutOne(body[offset:], base+offset)
		if err != nil {
			break
		}

		spans = append(spans, span{
			Offset: base + propStart,
			Length: 8 + n,
			Label:  "property",
			Detail: fmt.Sprintf("key=%d flags=%#x", key, flags),
			Children: []span{
				{Offset: base + propStart, Length: 8, Label: "property header"},
				valueSpan,
			},
		})
		offset += n
	}
	return spans
}

// layoutArrayBody walks an Array body: a (child_size, child_kind)
// prefix followed by N fixed-size elements with no per-element header.
func layoutArrayBody(body []byte, base int) []span {
	if len(body) < 8 {
		return nil
	}
	childSize := int(binary.NativeEndian.Uint32(body[0:4]))
	childKind := pod.Kind(binary.NativeEndian.Uint32(body[4:8]))

	spans := []span{{
		Offset: base,
		Length: 8,
		Label:  "array header",
		Detail: fmt.Sprintf("element=%s size=%d", childKind, childSize),
	}}

	if childSize <= 0 {
		return spans
	}
	offset := 8
	index := 0
	for offset+childSize <= len(body) {
		spans = append(spans, span{
			Offset: base + offset,
			Length: childSize,
			Label:  fmt.Sprintf("[%d]", index),
			Detail: childKind.String(),
		})
		offset += childSize
		index++
	}
	return spans
}

// layoutChoiceBody walks a Choice body: a (variant, flags, child_size,
// child_kind) prefix followed by N fixed-size elements, the same flat
// element layout as Array.
func layoutChoiceBody(body []byte, base int) []span {
	if len(body) < 16 {
		return nil
	}
	variant := binary.NativeEndian.Uint32(body[0:4])
	childSize := int(binary.NativeEndian.Uint32(body[8:12]))
	childKind := pod.Kind(binary.NativeEndian.Uint32(body[12:16]))

	spans := []span{{
		Offset: base,
		Length: 16,
		Label:  "choice header",
		Detail: fmt.Sprintf("variant=%d element=%s size=%d", variant, childKind, childSize),
	}}

	if childSize <= 0 {
		return spans
	}
	offset := 16
	index := 0
	for offset+childSize <= len(body) {
		spans = append(spans, span{
			Offset: base + offset,
			Length: childSize,
			Label:  fmt.Sprintf("#%d", index),
			Detail: childKind.String(),
		})
		offset += childSize
		index++
	}
	return spans
}
