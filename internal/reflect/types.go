package reflect

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var typeKeyCache sync.Map

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func TypeKey[T any]() string {
	return KeyOf(TypeOf[T]())
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func KeyOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}

// ShortName strips the package path from a type key.
func ShortName(key string) string {
	prefix := ""
	for strings.HasPrefix(key, "*") {
		prefix += "*"
		key = key[1:]
	}
	if idx := strings.LastIndex(key, "/"); idx != -1 {
		key = key[idx+1:]
	}
	if idx := strings.LastIndex(key, "."); idx != -1 {
		key = key[idx+1:]
	}
	return prefix + key
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Signature renders parameter types as "(int, string)".
func Signature(params []reflect.Type) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p == nil {
			b.WriteString("<nil>")
			continue
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

// MatchesParams reports whether fn's inputs, after skipping the first skip
// parameters, are exactly params.
func MatchesParams(fn reflect.Type, skip int, params []reflect.Type) bool {
	if fn == nil || fn.Kind() != reflect.Func {
		return false
	}
	if fn.NumIn()-skip != len(params) {
		return false
	}
	for i, p := range params {
		if fn.In(i+skip) != p {
			return false
		}
	}
	return true
}

// ReturnsError reports whether the last result of fn is the error interface.
func ReturnsError(fn reflect.Type) bool {
	n := fn.NumOut()
	return n > 0 && fn.Out(n-1) == errorType
}
