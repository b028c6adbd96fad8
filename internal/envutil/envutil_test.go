package envutil

import "testing"

func getenvFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestString(t *testing.T) {
	env := getenvFrom(map[string]string{"A": "  x  ", "B": "   "})

	if got := String(env, "A", "def"); got != "x" {
		t.Fatalf("got %q", got)
	}
	if got := String(env, "B", "def"); got != "def" {
		t.Fatalf("got %q", got)
	}
	if got := String(env, "MISSING", "def"); got != "def" {
		t.Fatalf("got %q", got)
	}
}

func TestBool(t *testing.T) {
	env := getenvFrom(map[string]string{
		"T1": "1", "T2": "Yes", "T3": "on",
		"F1": "0", "F2": "No", "F3": "off",
		"X": "maybe",
	})

	for _, k := range []string{"T1", "T2", "T3"} {
		if !Bool(env, k, false) {
			t.Fatalf("%s: expected true", k)
		}
	}
	for _, k := range []string{"F1", "F2", "F3"} {
		if Bool(env, k, true) {
			t.Fatalf("%s: expected false", k)
		}
	}
	if !Bool(env, "X", true) || Bool(env, "X", false) {
		t.Fatalf("unknown value should fall back to default")
	}
}
