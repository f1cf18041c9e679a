package probe

import (
	"fmt"
	reflectPkg "reflect"
	"sort"

	"github.com/hookkit/probe/internal/reflect"
)

// Type is a resolved type handle: the reflect.Type plus the static functions
// its loader declared for it.
type Type struct {
	name    string
	rtype   reflectPkg.Type
	statics map[string]reflectPkg.Value
	origin  string
}

// Static declares a package-level function as a member of a type.
type Static struct {
	Name string
	Fn   any
}

func Func(name string, fn any) Static {
	return Static{Name: name, Fn: fn}
}

// NewType builds a type handle. Loader implementations outside this package
// use it to hand types back to the prober.
func NewType(name string, rtype reflectPkg.Type, origin string, statics ...Static) (*Type, error) {
	if rtype == nil {
		return nil, errInvalidDefinition(name, "nil reflect.Type")
	}
	if name == "" {
		name = reflect.KeyOf(rtype)
	}

	t := &Type{
		name:   name,
		rtype:  rtype,
		origin: origin,
	}

	if len(statics) > 0 {
		t.statics = make(map[string]reflectPkg.Value, len(statics))
		for _, s := range statics {
			if s.Name == "" {
				return nil, errInvalidDefinition(name, "static with empty name")
			}
			fn := reflectPkg.ValueOf(s.Fn)
			if fn.Kind() != reflectPkg.Func || fn.IsNil() {
				return nil, errInvalidDefinition(name, fmt.Sprintf("static %s is not a function", s.Name))
			}
			if _, dup := t.statics[s.Name]; dup {
				return nil, errInvalidDefinition(name, fmt.Sprintf("static %s declared twice", s.Name))
			}
			t.statics[s.Name] = fn
		}
	}

	return t, nil
}

func (t *Type) Name() string {
	return t.name
}

func (t *Type) Reflect() reflectPkg.Type {
	return t.rtype
}

// Origin names the loading context the type came from.
func (t *Type) Origin() string {
	return t.origin
}

func (t *Type) Statics() []string {
	names := make([]string, 0, len(t.statics))
	for name := range t.statics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a pointer to a zero value of the type, or nil for interfaces.
func (t *Type) New() any {
	if t.rtype.Kind() == reflectPkg.Interface {
		return nil
	}
	return reflectPkg.New(t.rtype).Interface()
}

func (t *Type) String() string {
	return t.name
}
