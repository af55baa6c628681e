package plugin

import "testing"

func TestCstrGoStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "support.log", "Spa:Pointer:Interface:Log"} {
		got := goString(cstr(s))
		if got != s {
			t.Fatalf("round trip %q got %q", s, got)
		}
	}
}

func TestGoStringNilPointer(t *testing.T) {
	if got := goString(nil); got != "" {
		t.Fatalf("goString(nil) = %q, want empty", got)
	}
}
