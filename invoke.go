package probe

import (
	"context"
	"fmt"
	reflectPkg "reflect"
	"time"
	"unsafe"

	"github.com/hookkit/probe/internal/reflect"
)

// Result holds what a successful invocation returned, minus a trailing nil
// error. An empty Result is a successful call that produced no value.
type Result struct {
	values []any
}

func (r Result) Empty() bool {
	return len(r.values) == 0
}

func (r Result) Len() int {
	return len(r.values)
}

// Value returns the first returned value, or nil for an empty Result.
func (r Result) Value() any {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[0]
}

func (r Result) Index(i int) any {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

func (r Result) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

func (p *Prober) Invoke(m *Member, receiver any, args ...any) Outcome[Result] {
	return p.InvokeCtx(context.Background(), m, receiver, args...)
}

// InvokeCtx calls m. receiver is ignored for statics. A panic in the callee
// or a non-nil trailing error makes the outcome Absent; a nil or zero-value
// member is reported without attempting a call.
func (p *Prober) InvokeCtx(ctx context.Context, m *Member, receiver any, args ...any) Outcome[Result] {
	start := time.Now()
	rec := Record{Operation: OpInvoke}
	target := "<nil>"
	if m.valid() {
		rec.Type = m.owner.name
		rec.Member = m.name
		rec.Signature = m.Signature()
		rec.Declared = m.declared
		target = m.String()
	}

	res, err := absorb(target, func() (Result, error) {
		if !m.valid() {
			return Result{}, errInvalidHandle("member")
		}
		fn, err := m.bind(target, receiver)
		if err != nil {
			return Result{}, err
		}
		in, spread, err := m.arguments(target, args)
		if err != nil {
			return Result{}, err
		}
		var out []reflectPkg.Value
		if spread {
			out = fn.CallSlice(in)
		} else {
			out = fn.Call(in)
		}
		return m.collect(target, out)
	})

	p.finish(ctx, rec, start, err)
	if err != nil {
		return Absent[Result](err)
	}
	return Found(res)
}

func (m *Member) bind(target string, receiver any) (reflectPkg.Value, error) {
	switch m.kind {
	case MemberStatic:
		return m.static, nil
	case MemberMethod:
		return m.bindMethod(target, receiver)
	case MemberField:
		return m.bindField(target, receiver)
	default:
		return reflectPkg.Value{}, errInvalidHandle("member")
	}
}

func (m *Member) bindMethod(target string, receiver any) (reflectPkg.Value, error) {
	rv := reflectPkg.ValueOf(receiver)
	if !rv.IsValid() || reflect.IsNil(receiver) {
		return reflectPkg.Value{}, errReceiverMismatch(target, "nil receiver")
	}

	rt := rv.Type()
	switch {
	case m.recvType.Kind() == reflectPkg.Interface:
		if !rt.Implements(m.recvType) {
			return reflectPkg.Value{}, errReceiverMismatch(target, fmt.Sprintf("%s does not implement %s", rt, m.recvType))
		}
	case rt == m.recvType:
	case m.recvType.Kind() == reflectPkg.Ptr && rt == m.recvType.Elem():
		// pointer method on a value: call on a copy
		ptr := reflectPkg.New(rt)
		ptr.Elem().Set(rv)
		rv = ptr
	case m.recvType.Kind() != reflectPkg.Ptr && rt == reflectPkg.PointerTo(m.recvType):
	default:
		return reflectPkg.Value{}, errReceiverMismatch(target, fmt.Sprintf("receiver %s is not %s", rt, m.recvType))
	}

	fn := rv.MethodByName(m.name)
	if !fn.IsValid() {
		return reflectPkg.Value{}, errReceiverMismatch(target, fmt.Sprintf("%s has no method %s", rv.Type(), m.name))
	}
	return fn, nil
}

func (m *Member) bindField(target string, receiver any) (reflectPkg.Value, error) {
	rv := reflectPkg.ValueOf(receiver)
	if !rv.IsValid() || reflect.IsNil(receiver) {
		return reflectPkg.Value{}, errReceiverMismatch(target, "nil receiver")
	}
	if rv.Kind() == reflectPkg.Ptr {
		rv = rv.Elem()
	}
	if rv.Type() != m.recvType {
		return reflectPkg.Value{}, errReceiverMismatch(target, fmt.Sprintf("receiver %s is not %s", rv.Type(), m.recvType))
	}
	if !rv.CanAddr() {
		tmp := reflectPkg.New(rv.Type()).Elem()
		tmp.Set(rv)
		rv = tmp
	}

	field := rv.FieldByIndex(m.fieldIndex)
	if !field.CanInterface() {
		field = reflectPkg.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem() //nolint:gosec // declared member access
	}
	if field.IsNil() {
		return reflectPkg.Value{}, newError(ErrCodeInvalidHandle, "func field is nil", nil).WithTarget(target)
	}
	return field, nil
}

// arguments converts args to call values. spread is set when the final
// argument is already the variadic slice.
func (m *Member) arguments(target string, args []any) ([]reflectPkg.Value, bool, error) {
	ft := m.fnType
	n := ft.NumIn()
	variadic := ft.IsVariadic()

	if variadic && len(args) == n && n > 0 {
		last := args[n-1]
		if last != nil && reflectPkg.TypeOf(last).AssignableTo(ft.In(n-1)) {
			in, err := convertArgs(target, args, func(i int) reflectPkg.Type { return ft.In(i) })
			return in, true, err
		}
	}

	if (!variadic && len(args) != n) || (variadic && len(args) < n-1) {
		return nil, false, errArgumentMismatch(target, fmt.Sprintf("want %d arguments, got %d", n, len(args)))
	}

	in, err := convertArgs(target, args, func(i int) reflectPkg.Type {
		if variadic && i >= n-1 {
			return ft.In(n - 1).Elem()
		}
		return ft.In(i)
	})
	return in, false, err
}

func convertArgs(target string, args []any, paramType func(int) reflectPkg.Type) ([]reflectPkg.Value, error) {
	in := make([]reflectPkg.Value, len(args))
	for i, a := range args {
		pt := paramType(i)
		if a == nil {
			in[i] = reflectPkg.Zero(pt)
			continue
		}
		v := reflectPkg.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, errArgumentMismatch(target, fmt.Sprintf("argument %d: %s is not assignable to %s", i, v.Type(), pt))
		}
		in[i] = v
	}
	return in, nil
}

func (m *Member) collect(target string, out []reflectPkg.Value) (Result, error) {
	if reflect.ReturnsError(m.fnType) && len(out) > 0 {
		last := out[len(out)-1]
		if !last.IsNil() {
			return Result{}, errInvocationFailed(target, last.Interface().(error))
		}
		out = out[:len(out)-1]
	}

	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return Result{values: values}, nil
}

// As narrows an invocation outcome to its first value. Empty results, nil
// values and values of another type are Absent.
func As[T any](o Outcome[Result]) Outcome[T] {
	res, ok := o.Get()
	if !ok {
		return Absent[T](o.Cause())
	}
	if res.Empty() {
		return Absent[T](errResultMismatch("call returned no value"))
	}
	v := res.Value()
	if reflect.IsNil(v) {
		return Absent[T](errResultMismatch("call returned nil"))
	}
	typed, ok := v.(T)
	if !ok {
		return Absent[T](errResultMismatch(fmt.Sprintf("result is %T, not %s", v, reflect.TypeOf[T]())))
	}
	return Found(typed)
}

// Call invokes m and narrows its first result to T.
func Call[T any](p *Prober, m *Member, receiver any, args ...any) Outcome[T] {
	return As[T](p.Invoke(m, receiver, args...))
}
