package probe

// Outcome is the result of a probe: Found with a usable value, or Absent with
// the cause. An Absent outcome never carries a value.
type Outcome[T any] struct {
	value   T
	present bool
	cause   error
}

func Found[T any](value T) Outcome[T] {
	return Outcome[T]{value: value, present: true}
}

func Absent[T any](cause error) Outcome[T] {
	return Outcome[T]{cause: cause}
}

func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Outcome[T]) Value() T {
	return o.value
}

func (o Outcome[T]) Present() bool {
	return o.present
}

// Cause is nil for Found outcomes and may be nil for Absent ones when the
// probe never started.
func (o Outcome[T]) Cause() error {
	return o.cause
}

func (o Outcome[T]) OrElse(defaultValue T) T {
	if o.present {
		return o.value
	}
	return defaultValue
}

func (o Outcome[T]) OrElseFunc(fn func() T) T {
	if o.present {
		return o.value
	}
	return fn()
}

func (o Outcome[T]) String() string {
	if o.present {
		return "Found"
	}
	if o.cause != nil {
		return "Absent(" + o.cause.Error() + ")"
	}
	return "Absent"
}

// Map applies fn to a Found value. A failing fn turns the outcome Absent.
func Map[T, U any](o Outcome[T], fn func(T) (U, error)) Outcome[U] {
	if !o.present {
		return Absent[U](o.cause)
	}
	u, err := absorb("map", func() (U, error) { return fn(o.value) })
	if err != nil {
		return Absent[U](err)
	}
	return Found(u)
}
