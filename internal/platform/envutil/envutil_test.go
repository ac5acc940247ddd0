package envutil

import "testing"

func TestLookups(t *testing.T) {
	t.Setenv("ENVUTIL_BAD_FLOAT", "x")
	t.Setenv("ENVUTIL_FLOAT", "0.25")
	t.Setenv("ENVUTIL_BOOL", "on")
	t.Setenv("ENVUTIL_STR", "  hi ")

	if got := Float("ENVUTIL_BAD_FLOAT", 1); got != 1 {
		t.Fatalf("Float fallback = %v", got)
	}
	if got := Float("ENVUTIL_FLOAT", 0); got != 0.25 {
		t.Fatalf("Float = %v", got)
	}
	if !Bool("ENVUTIL_BOOL", false) || !Bool("ENVUTIL_MISSING", true) {
		t.Fatalf("Bool mismatch")
	}
	if got := String("ENVUTIL_STR", "d"); got != "hi" {
		t.Fatalf("String = %q", got)
	}
}
