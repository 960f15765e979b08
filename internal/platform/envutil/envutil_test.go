package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TODO_TEST_INT", "nope")
	if got := Int("TODO_TEST_INT", 42, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	t.Setenv("TODO_TEST_INT", " 7 ")
	if got := Int("TODO_TEST_INT", 42, nil); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("TODO_TEST_BOOL", "yes")
	if !Bool("TODO_TEST_BOOL", false, nil) {
		t.Fatalf("Bool: expected true")
	}
	t.Setenv("TODO_TEST_BOOL", "off")
	if Bool("TODO_TEST_BOOL", true, nil) {
		t.Fatalf("Bool: expected false")
	}
	if !Bool("TODO_TEST_BOOL_UNSET", true, nil) {
		t.Fatalf("Bool: expected default")
	}
}

func TestStringBlankUsesDefault(t *testing.T) {
	t.Setenv("TODO_TEST_STRING", "   ")
	if got := String("TODO_TEST_STRING", "def", nil); got != "def" {
		t.Fatalf("String: want=def got=%q", got)
	}
}

func TestSecondsAndCSV(t *testing.T) {
	t.Setenv("TODO_TEST_SECONDS", "15")
	if got := Seconds("TODO_TEST_SECONDS", time.Second, nil); got != 15*time.Second {
		t.Fatalf("Seconds: got=%s", got)
	}
	t.Setenv("TODO_TEST_CSV", "a, b,,c")
	got := CSV("TODO_TEST_CSV", nil, nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("CSV: got=%v", got)
	}
}
