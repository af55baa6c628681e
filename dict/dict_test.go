package dict

import (
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

func TestOrderPreserved(t *testing.T) {
	pairs := [][2]string{
		{"media.class", "Audio/Sink"},
		{"node.name", "speaker"},
		{"object.path", "alsa:front:0"},
	}
	d := New(pairs)
	defer d.Close()

	if d.Len() != len(pairs) {
		t.Fatalf("Len() = %d, want %d", d.Len(), len(pairs))
	}
	if diff := cmp.Diff(pairs, d.Items()); diff != "" {
		t.Errorf("Items() order mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupFirstMatchCaseSensitive(t *testing.T) {
	d := New([][2]string{
		{"Key", "first"},
		{"key", "second"},
		{"Key", "third"},
	})
	defer d.Close()

	v, ok := d.Lookup("Key")
	if !ok || v != "first" {
		t.Fatalf("Lookup(Key) = %q, %v; want first, true", v, ok)
	}
	v, ok = d.Lookup("key")
	if !ok || v != "second" {
		t.Fatalf("Lookup(key) = %q, %v; want second, true", v, ok)
	}
	if _, ok := d.Lookup("KEY"); ok {
		t.Fatal("Lookup(KEY) unexpectedly found a match")
	}
}

func TestLookupMiss(t *testing.T) {
	d := New([][2]string{{"a", "1"}})
	defer d.Close()
	if _, ok := d.Lookup("b"); ok {
		t.Fatal("expected miss")
	}
}

func TestEmptyDict(t *testing.T) {
	d := New(nil)
	defer d.Close()
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}
	ptr, n := d.Raw()
	if ptr != nil || n != 0 {
		t.Fatalf("Raw() = %v, %d; want nil, 0", ptr, n)
	}
}

func TestRawLayoutMatchesCStringPairs(t *testing.T) {
	d := New([][2]string{{"x", "1"}, {"yy", "22"}})
	defer d.Close()

	ptr, n := d.Raw()
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	type rawItem struct {
		key   *byte
		value *byte
	}
	items := unsafe.Slice((*rawItem)(ptr), int(n))
	if got := cStringToGo(items[0].key); got != "x" {
		t.Errorf("item 0 key = %q, want x", got)
	}
	if got := cStringToGo(items[1].value); got != "22" {
		t.Errorf("item 1 value = %q, want 22", got)
	}
}

func cStringToGo(p *byte) string {
	return fromCString(p)
}
