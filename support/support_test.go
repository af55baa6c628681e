package support

import (
	"errors"
	"testing"
	"unsafe"
)

type fakeFacade struct {
	kind   Kind
	handle int
	closed bool
	err    error
}

func (f *fakeFacade) Kind() Kind                   { return f.kind }
func (f *fakeFacade) NativeHandle() unsafe.Pointer { return unsafe.Pointer(&f.handle) }
func (f *fakeFacade) Close() error                 { f.closed = true; return f.err }

func TestAddAndGetInterface(t *testing.T) {
	s := New()
	defer s.Close()

	log := &fakeFacade{kind: KindLog}
	s.AddInterface(NameLog, log)

	got, ok := GetInterface[*fakeFacade](s, NameLog)
	if !ok {
		t.Fatal("GetInterface(NameLog) not found")
	}
	if got != log {
		t.Fatalf("GetInterface(NameLog) = %p, want %p", got, log)
	}
}

func TestGetInterfaceMissingName(t *testing.T) {
	s := New()
	defer s.Close()

	_, ok := GetInterface[*fakeFacade](s, NameCPU)
	if ok {
		t.Fatal("GetInterface(NameCPU) found on an empty registry")
	}
}

func TestGetInterfaceTypeMismatch(t *testing.T) {
	type otherFacade struct{ fakeFacade }

	s := New()
	defer s.Close()
	s.AddInterface(NameSystem, &fakeFacade{kind: KindSystem})

	_, ok := GetInterface[*otherFacade](s, NameSystem)
	if ok {
		t.Fatal("GetInterface with a mismatched concrete type unexpectedly succeeded")
	}
}

func TestAddInterfaceReplaceClosesPrevious(t *testing.T) {
	s := New()
	defer s.Close()

	first := &fakeFacade{kind: KindLoop}
	second := &fakeFacade{kind: KindLoop}
	s.AddInterface(NameLoop, first)
	s.AddInterface(NameLoop, second)

	if !first.closed {
		t.Error("replaced façade was not closed")
	}
	got, ok := GetInterface[*fakeFacade](s, NameLoop)
	if !ok || got != second {
		t.Fatalf("GetInterface(NameLoop) = %p, %v, want %p, true", got, ok, second)
	}
}

func TestAddInterfaceReplacePreservesArrayPosition(t *testing.T) {
	s := New()
	defer s.Close()

	s.AddInterface(NameLog, &fakeFacade{kind: KindLog, handle: 1})
	s.AddInterface(NameSystem, &fakeFacade{kind: KindSystem, handle: 2})
	s.AddInterface(NameCPU, &fakeFacade{kind: KindCPU, handle: 3})

	ptrBefore, n := s.CSupport()
	if n != 3 {
		t.Fatalf("CSupport length = %d, want 3", n)
	}

	replacement := &fakeFacade{kind: KindSystem, handle: 4}
	s.AddInterface(NameSystem, replacement)

	ptrAfter, nAfter := s.CSupport()
	if nAfter != 3 {
		t.Fatalf("CSupport length after replace = %d, want 3", nAfter)
	}
	if ptrBefore != ptrAfter {
		t.Fatalf("CSupport base pointer changed on in-place replace: %p != %p", ptrBefore, ptrAfter)
	}

	entries := unsafe.Slice((*cEntry)(ptrAfter), nAfter)
	if entries[1].data != replacement.NativeHandle() {
		t.Errorf("entry at NameSystem's original position was not updated in place")
	}
}

func TestCSupportEmptyRegistry(t *testing.T) {
	s := New()
	defer s.Close()

	ptr, n := s.CSupport()
	if ptr != nil || n != 0 {
		t.Fatalf("CSupport() on empty registry = %p, %d, want nil, 0", ptr, n)
	}
}

func TestCloseClosesAllFacadesAndReturnsFirstError(t *testing.T) {
	s := New()

	wantErr := errors.New("boom")
	a := &fakeFacade{kind: KindLog}
	b := &fakeFacade{kind: KindSystem, err: wantErr}
	c := &fakeFacade{kind: KindCPU}
	s.AddInterface(NameLog, a)
	s.AddInterface(NameSystem, b)
	s.AddInterface(NameCPU, c)

	err := s.Close()
	if !errors.Is(err, wantErr) {
		t.Fatalf("Close() err = %v, want %v", err, wantErr)
	}
	for _, f := range []*fakeFacade{a, b, c} {
		if !f.closed {
			t.Errorf("facade %+v was not closed", f)
		}
	}
}

func TestCloseAfterEmptyIsSafe(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() on empty registry = %v, want nil", err)
	}
}
