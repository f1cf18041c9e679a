package reflect

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type testInterface interface {
	DoSomething()
}

type testStruct struct {
	Name string
}

func (t *testStruct) DoSomething() {}

func TestTypeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typeFunc func() string
		want     string
	}{
		{name: "int", typeFunc: TypeKey[int], want: "int"},
		{name: "string", typeFunc: TypeKey[string], want: "string"},
		{
			name:     "pointer to struct",
			typeFunc: TypeKey[*testStruct],
			want:     "*github.com/hookkit/probe/internal/reflect.testStruct",
		},
		{name: "slice", typeFunc: TypeKey[[]string], want: "[]string"},
		{name: "array", typeFunc: TypeKey[[16]byte], want: "[16]uint8"},
		{name: "map", typeFunc: TypeKey[map[string]int], want: "map[string]int"},
		{
			name:     "interface",
			typeFunc: TypeKey[testInterface],
			want:     "github.com/hookkit/probe/internal/reflect.testInterface",
		},
		{name: "context.Context", typeFunc: TypeKey[context.Context], want: "context.Context"},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				if got := tt.typeFunc(); got != tt.want {
					t.Errorf("TypeKey = %q, want %q", got, tt.want)
				}
			},
		)
	}
}

func TestTypeKeyUnique(t *testing.T) {
	t.Parallel()

	keys := map[string]bool{}
	testCases := []func() string{
		TypeKey[int],
		TypeKey[int32],
		TypeKey[int64],
		TypeKey[string],
		TypeKey[*string],
		TypeKey[[]string],
		TypeKey[[2]string],
		TypeKey[[3]string],
		TypeKey[map[string]int],
		TypeKey[testStruct],
		TypeKey[*testStruct],
	}

	for _, tc := range testCases {
		key := tc()
		if keys[key] {
			t.Errorf("duplicate key: %s", key)
		}
		keys[key] = true
	}
}

func TestShortName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"github.com/hookkit/probe/internal/reflect.testStruct":  "testStruct",
		"*github.com/hookkit/probe/internal/reflect.testStruct": "*testStruct",
		"context.Context": "Context",
		"int":             "int",
	}

	for in, want := range tests {
		if got := ShortName(in); got != want {
			t.Errorf("ShortName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var nilPtr *testStruct
	var nilSlice []string
	var nilFunc func()

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"nil pointer", nilPtr, true},
		{"nil slice", nilSlice, true},
		{"nil func", nilFunc, true},
		{"value", 42, false},
		{"pointer", &testStruct{}, false},
	}

	for _, tt := range tests {
		if got := IsNil(tt.v); got != tt.want {
			t.Errorf("%s: IsNil = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()

	got := Signature([]reflect.Type{TypeOf[int](), TypeOf[string](), nil})
	if got != "(int, string, <nil>)" {
		t.Errorf("unexpected signature %q", got)
	}

	if Signature(nil) != "()" {
		t.Errorf("empty signature should render as ()")
	}
}

func TestMatchesParams(t *testing.T) {
	t.Parallel()

	fn := reflect.TypeOf(func(*testStruct, int, string) {})
	params := []reflect.Type{TypeOf[int](), TypeOf[string]()}

	if !MatchesParams(fn, 1, params) {
		t.Error("expected exact match after skipping receiver")
	}
	if MatchesParams(fn, 0, params) {
		t.Error("receiver must not be ignored without skip")
	}
	if MatchesParams(fn, 1, []reflect.Type{TypeOf[int64](), TypeOf[string]()}) {
		t.Error("int64 must not match int")
	}
	if MatchesParams(TypeOf[int](), 0, nil) {
		t.Error("non-func types never match")
	}
}

func TestReturnsError(t *testing.T) {
	t.Parallel()

	if !ReturnsError(reflect.TypeOf(func() (int, error) { return 0, errors.New("x") })) {
		t.Error("expected trailing error to be detected")
	}
	if ReturnsError(reflect.TypeOf(func() int { return 0 })) {
		t.Error("int result is not an error")
	}
	if ReturnsError(reflect.TypeOf(func() {})) {
		t.Error("no results means no error")
	}
}
