// Package assert contains the helpers used by the binlog tests to check
// results and stop the test on the first mismatch.
package assert

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/exp/constraints"
)

func OK(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatal("error:", err)
	}
}

func Error(t testing.TB, got, want error) {
	if !errors.Is(got, want) {
		t.Helper()
		t.Fatalf("error mismatch\nwant = %s\ngot  = %s", want, got)
	}
}

// ErrorAs checks that err wraps an error of type T and returns it.
func ErrorAs[T error](t testing.TB, err error) T {
	var target T
	if !errors.As(err, &target) {
		t.Helper()
		t.Fatalf("error type mismatch\nwant = %T\ngot  = %v (%T)", target, err, err)
	}
	return target
}

func True(t testing.TB, value bool, msg string) {
	if !value {
		t.Helper()
		t.Fatal(msg)
	}
}

func Equal[T comparable](t testing.TB, got, want T) {
	if got != want {
		t.Helper()
		t.Fatalf("value mismatch\nwant = %#v\ngot  = %#v", want, got)
	}
}

func NotEqual[T comparable](t testing.TB, got, want T) {
	if got == want {
		t.Helper()
		t.Fatalf("value must not be equal to %#v", want)
	}
}

func EqualAll[T comparable](t testing.TB, got, want []T) {
	if len(got) != len(want) {
		t.Helper()
		t.Fatalf("number of values mismatch\nwant = %#v\ngot  = %#v", want, got)
	}

	for i, value := range want {
		if value != got[i] {
			t.Helper()
			t.Fatalf("value at index %d/%d mismatch\nwant = %#v\ngot  = %#v", i, len(want), value, got[i])
		}
	}
}

func Less[T constraints.Ordered](t testing.TB, less, more T) {
	if less >= more {
		t.Helper()
		t.Fatalf("value is too large: %v >= %v", less, more)
	}
}

func DeepEqual(t testing.TB, got, want any) {
	if !reflect.DeepEqual(got, want) {
		t.Helper()
		t.Fatalf("value mismatch\nwant = %#v\ngot  = %#v", want, got)
	}
}

func HasPrefix(t testing.TB, got, prefix string) {
	if !strings.HasPrefix(got, prefix) {
		t.Helper()
		t.Fatalf("prefix mismatch\nwant = %q\ngot  = %q", prefix, got)
	}
}

func Contains(t testing.TB, got, substr string) {
	if !strings.Contains(got, substr) {
		t.Helper()
		t.Fatalf("%q not found in\n%s", substr, got)
	}
}
