package probe

import (
	"fmt"
	reflectPkg "reflect"

	"github.com/hookkit/probe/internal/reflect"
	"github.com/hookkit/probe/internal/registry"
)

// Loader is a loading context: the scope type names are resolved in.
type Loader interface {
	LoadType(name string) (*Type, error)
	String() string
}

// Registry is the in-process loading context. Types are defined up front or
// lazily; lookups consult the parent first.
type Registry struct {
	name    string
	parent  Loader
	entries *registry.Registry
}

var defaultRegistry = NewRegistry("default", nil)

// DefaultRegistry is the loading context used when no loader is given.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func NewRegistry(name string, parent Loader) *Registry {
	return &Registry{
		name:    name,
		parent:  parent,
		entries: registry.New(),
	}
}

func (r *Registry) String() string {
	if r.parent != nil {
		return r.name + "<-" + r.parent.String()
	}
	return r.name
}

func (r *Registry) Parent() Loader {
	return r.parent
}

// Define adds a type under name. An empty name uses the type key.
func (r *Registry) Define(name string, rtype reflectPkg.Type, statics ...Static) error {
	if name == "" {
		name = reflect.KeyOf(rtype)
	}
	t, err := NewType(name, rtype, r.name, statics...)
	if err != nil {
		return err
	}
	if err := r.entries.RegisterValue(name, t); err != nil {
		return errDuplicateDefinition(name)
	}
	return nil
}

// DefineLazy adds a type whose definition runs on first lookup. A failing or
// panicking definition makes the type unresolvable until it succeeds.
func (r *Registry) DefineLazy(name string, define func() (reflectPkg.Type, []Static, error)) error {
	if define == nil {
		return errInvalidDefinition(name, "nil definition")
	}
	err := r.entries.Register(name, func() (any, error) {
		rtype, statics, err := define()
		if err != nil {
			return nil, err
		}
		return NewType(name, rtype, r.name, statics...)
	})
	if err != nil {
		return errDuplicateDefinition(name)
	}
	return nil
}

func (r *Registry) Undefine(name string) {
	r.entries.Remove(name)
}

func (r *Registry) Names() []string {
	return r.entries.Keys()
}

func (r *Registry) LoadType(name string) (*Type, error) {
	if r.parent != nil {
		if t, err := r.parent.LoadType(name); err == nil && t != nil {
			return t, nil
		}
	}

	v, found, err := r.entries.Get(name)
	if !found {
		return nil, errTypeNotFound(name, nil)
	}
	if err != nil {
		return nil, errTypeNotFound(name, err)
	}

	t, ok := v.(*Type)
	if !ok || t == nil {
		return nil, errTypeNotFound(name, fmt.Errorf("definition produced %T", v))
	}
	return t, nil
}

func Define[T any](r *Registry, statics ...Static) error {
	return r.Define(reflect.TypeKey[T](), reflect.TypeOf[T](), statics...)
}

func DefineNamed[T any](r *Registry, name string, statics ...Static) error {
	return r.Define(name, reflect.TypeOf[T](), statics...)
}

// TypeKey is the fully-qualified name a type is defined under by Define.
func TypeKey[T any]() string {
	return reflect.TypeKey[T]()
}
