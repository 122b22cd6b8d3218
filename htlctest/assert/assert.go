package assert

import (
	"reflect"

	"github.com/iov-one/htlc/errors"
)

// Tester is the part of testing.TB the helpers report through.
type Tester interface {
	Helper()
	Fatalf(string, ...interface{})
}

// Nil fails the test unless value is nil or a nil slice, map, pointer or
// interface.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if value == nil {
		return
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		if v.IsNil() {
			return
		}
	}
	// %+v prints the stack of a wrapped error.
	t.Fatalf("want nil, got %+v", value)
}

// Equal fails the test unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %T %v\n got %T %v", want, want, got, got)
	}
}

// IsErr fails the test unless got is want or wraps the registered error want.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(*errors.Error); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
