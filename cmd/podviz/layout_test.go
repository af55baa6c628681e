package main

import (
	"testing"

	"github.com/aclements/go-spa/pod"
)

func TestLayoutFilePrimitive(t *testing.T) {
	buf := make([]byte, 64)
	n, err := pod.EncodePrimitive(buf, int32(7))
	if err != nil {
		t.Fatal(err)
	}
	spans, err := layoutFile(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Label != "Int" {
		t.Fatalf("label = %q, want Int", spans[0].Label)
	}
	if spans[0].Length != n {
		t.Fatalf("length = %d, want %d", spans[0].Length, n)
	}
}

func TestLayoutFileStruct(t *testing.T) {
	b := pod.NewBuilder(make([]byte, 256))
	b.PushStruct(func(inner *pod.Builder) {
		inner.PushInt(1)
		inner.PushLong(2)
	})
	buf, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	spans, err := layoutFile(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 1 || spans[0].Label != "Struct" {
		t.Fatalf("got %+v", spans)
	}
	if len(spans[0].Children) != 2 {
		t.Fatalf("got %d children, want 2", len(spans[0].Children))
	}
	if spans[0].Children[0].Label != "Int" || spans[0].Children[1].Label != "Long" {
		t.Fatalf("children = %+v", spans[0].Children)
	}
	// Children offsets must be absolute within the top-level buffer,
	// not relative to the struct's own body.
	if spans[0].Children[0].Offset != spans[0].Offset+8 {
		t.Fatalf("child offset = %d, want %d", spans[0].Children[0].Offset, spans[0].Offset+8)
	}
}

func TestLayoutFileMultipleTopLevelPods(t *testing.T) {
	b := pod.NewBuilder(make([]byte, 256))
	b.PushInt(1)
	b.PushInt(2)
	buf, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	spans, err := layoutFile(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[1].Offset != spans[0].Length {
		t.Fatalf("second span offset = %d, want %d", spans[1].Offset, spans[0].Length)
	}
}

func TestPad8(t *testing.T) {
	cases := map[int]int{0: 0, 1: 7, 4: 4, 8: 0, 9: 7}
	for n, want := range cases {
		if got := pad8(n); got != want {
			t.Fatalf("pad8(%d) = %d, want %d", n, got, want)
		}
	}
}
