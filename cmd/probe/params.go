package main

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// paramTypes are the parameter types that can be named on the command line.
var paramTypes = map[string]reflect.Type{
	"bool":          reflect.TypeOf(false),
	"int":           reflect.TypeOf(0),
	"int8":          reflect.TypeOf(int8(0)),
	"int16":         reflect.TypeOf(int16(0)),
	"int32":         reflect.TypeOf(int32(0)),
	"int64":         reflect.TypeOf(int64(0)),
	"uint":          reflect.TypeOf(uint(0)),
	"uint8":         reflect.TypeOf(uint8(0)),
	"uint16":        reflect.TypeOf(uint16(0)),
	"uint32":        reflect.TypeOf(uint32(0)),
	"uint64":        reflect.TypeOf(uint64(0)),
	"float32":       reflect.TypeOf(float32(0)),
	"float64":       reflect.TypeOf(float64(0)),
	"string":        reflect.TypeOf(""),
	"[]byte":        reflect.TypeOf([]byte(nil)),
	"[]string":      reflect.TypeOf([]string(nil)),
	"time.Duration": reflect.TypeOf(time.Duration(0)),
	"error":         reflect.TypeOf((*error)(nil)).Elem(),
	"any":           reflect.TypeOf((*any)(nil)).Elem(),
}

func parseParams(names []string) ([]reflect.Type, error) {
	params := make([]reflect.Type, len(names))
	for i, name := range names {
		t, ok := paramTypes[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unsupported parameter type %q", name)
		}
		params[i] = t
	}
	return params, nil
}

// parseArg converts a command-line value to t.
func parseArg(t reflect.Type, raw string) (any, error) {
	if t == reflect.TypeOf(time.Duration(0)) {
		return time.ParseDuration(raw)
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(f)
	case reflect.String:
		v.SetString(raw)
	case reflect.Slice:
		switch t.Elem().Kind() {
		case reflect.Uint8:
			return []byte(raw), nil
		case reflect.String:
			if raw == "" {
				return []string{}, nil
			}
			return strings.Split(raw, ","), nil
		}
		return nil, fmt.Errorf("cannot parse %s from the command line", t)
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return raw, nil
		}
		return nil, fmt.Errorf("cannot parse %s from the command line", t)
	default:
		return nil, fmt.Errorf("cannot parse %s from the command line", t)
	}
	return v.Interface(), nil
}

func parseArgs(params []reflect.Type, raw []string) ([]any, error) {
	if len(raw) != len(params) {
		return nil, fmt.Errorf("want %d arguments, got %d", len(params), len(raw))
	}
	args := make([]any, len(raw))
	for i, r := range raw {
		a, err := parseArg(params[i], r)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args[i] = a
	}
	return args, nil
}
