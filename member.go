package probe

import (
	"context"
	"go/token"
	reflectPkg "reflect"
	"time"

	"github.com/hookkit/probe/internal/reflect"
)

type MemberKind uint8

const (
	// MemberMethod is a method in the type's (or its pointer's) method set.
	MemberMethod MemberKind = iota + 1
	// MemberStatic is a function the loader declared on the type.
	MemberStatic
	// MemberField is a func-typed struct field. Exported fields reached
	// through exported embeddings resolve in the public tier; any other
	// field is declared.
	MemberField
)

func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberStatic:
		return "static"
	case MemberField:
		return "field"
	default:
		return "unknown"
	}
}

// Member is a resolved callable handle.
type Member struct {
	owner      *Type
	name       string
	kind       MemberKind
	params     []reflectPkg.Type
	fnType     reflectPkg.Type
	recvType   reflectPkg.Type
	static     reflectPkg.Value
	fieldIndex []int
	declared   bool
}

func (m *Member) Name() string {
	return m.name
}

func (m *Member) Owner() *Type {
	return m.owner
}

func (m *Member) Kind() MemberKind {
	return m.kind
}

// Declared reports whether the member was reached through the non-public
// fallback and had its access overridden.
func (m *Member) Declared() bool {
	return m.declared
}

// Func returns the member's function type without a receiver.
func (m *Member) Func() reflectPkg.Type {
	return m.fnType
}

func (m *Member) Signature() string {
	return reflect.Signature(m.params)
}

func (m *Member) String() string {
	if !m.valid() {
		return "<invalid member>"
	}
	return m.owner.name + "#" + m.name + m.Signature()
}

// valid reports whether m came from ResolveMember rather than a zero value.
func (m *Member) valid() bool {
	return m != nil && m.owner != nil && m.fnType != nil
}

func (p *Prober) ResolveMember(t *Type, name string, params ...reflectPkg.Type) Outcome[*Member] {
	return p.ResolveMemberCtx(context.Background(), t, name, params...)
}

// ResolveMemberCtx finds the member of t with exactly this name and parameter
// list. Public members are tried first; unexported statics and func fields
// are the fallback. A near miss on the signature is reported absent.
func (p *Prober) ResolveMemberCtx(ctx context.Context, t *Type, name string, params ...reflectPkg.Type) Outcome[*Member] {
	start := time.Now()
	rec := Record{
		Operation: OpResolveMember,
		Member:    name,
		Signature: reflect.Signature(params),
	}
	if t != nil {
		rec.Type = t.name
	}

	m, err := absorb(rec.Type+"#"+name, func() (*Member, error) {
		if t == nil || t.rtype == nil {
			return nil, errInvalidHandle("type")
		}
		if m := publicMember(t, name, params); m != nil {
			return m, nil
		}
		if m := declaredMember(t, name, params); m != nil {
			return m, nil
		}
		return nil, errMemberNotFound(t.name, name, rec.Signature)
	})

	if m != nil {
		rec.Declared = m.declared
	}
	p.finish(ctx, rec, start, err)
	if err != nil {
		return Absent[*Member](err)
	}
	return Found(m)
}

func publicMember(t *Type, name string, params []reflectPkg.Type) *Member {
	if !token.IsExported(name) {
		return nil
	}

	rt := t.rtype
	if rt.Kind() == reflectPkg.Interface {
		if method, ok := rt.MethodByName(name); ok && reflect.MatchesParams(method.Type, 0, params) {
			return newMember(t, name, MemberMethod, params, method.Type, rt)
		}
	} else {
		for _, recv := range receiverTypes(rt) {
			method, ok := recv.MethodByName(name)
			if !ok || !reflect.MatchesParams(method.Type, 1, params) {
				continue
			}
			return newMember(t, name, MemberMethod, params, withoutReceiver(method.Type), recv)
		}
	}

	if fn, ok := t.statics[name]; ok && reflect.MatchesParams(fn.Type(), 0, params) {
		m := newMember(t, name, MemberStatic, params, fn.Type(), nil)
		m.static = fn
		return m
	}

	if m := fieldMember(t, name, params); m != nil && exportedPath(t.rtype, m.fieldIndex) {
		return m
	}

	return nil
}

func declaredMember(t *Type, name string, params []reflectPkg.Type) *Member {
	if fn, ok := t.statics[name]; ok && !token.IsExported(name) && reflect.MatchesParams(fn.Type(), 0, params) {
		m := newMember(t, name, MemberStatic, params, fn.Type(), nil)
		m.static = fn
		m.declared = true
		return m
	}

	m := fieldMember(t, name, params)
	if m == nil {
		return nil
	}
	m.declared = true
	return m
}

func structType(rt reflectPkg.Type) reflectPkg.Type {
	if rt.Kind() == reflectPkg.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflectPkg.Struct {
		return nil
	}
	return rt
}

func fieldMember(t *Type, name string, params []reflectPkg.Type) *Member {
	st := structType(t.rtype)
	if st == nil {
		return nil
	}

	field, ok := st.FieldByName(name)
	if !ok || field.Type.Kind() != reflectPkg.Func || !reflect.MatchesParams(field.Type, 0, params) {
		return nil
	}

	m := newMember(t, name, MemberField, params, field.Type, st)
	m.fieldIndex = field.Index
	return m
}

// exportedPath reports whether every field along index is exported, so the
// field is reachable without an access override.
func exportedPath(rt reflectPkg.Type, index []int) bool {
	st := structType(rt)
	for _, i := range index {
		if st == nil {
			return false
		}
		f := st.Field(i)
		if !f.IsExported() {
			return false
		}
		st = structType(f.Type)
	}
	return true
}

func newMember(t *Type, name string, kind MemberKind, params []reflectPkg.Type, fn, recv reflectPkg.Type) *Member {
	ps := make([]reflectPkg.Type, len(params))
	copy(ps, params)
	return &Member{
		owner:    t,
		name:     name,
		kind:     kind,
		params:   ps,
		fnType:   fn,
		recvType: recv,
	}
}

// receiverTypes lists T then *T, or just *T when rt is already a pointer.
func receiverTypes(rt reflectPkg.Type) []reflectPkg.Type {
	if rt.Kind() == reflectPkg.Ptr {
		return []reflectPkg.Type{rt}
	}
	return []reflectPkg.Type{rt, reflectPkg.PointerTo(rt)}
}

func withoutReceiver(fn reflectPkg.Type) reflectPkg.Type {
	in := make([]reflectPkg.Type, 0, fn.NumIn()-1)
	for i := 1; i < fn.NumIn(); i++ {
		in = append(in, fn.In(i))
	}
	out := make([]reflectPkg.Type, 0, fn.NumOut())
	for i := range fn.NumOut() {
		out = append(out, fn.Out(i))
	}
	return reflectPkg.FuncOf(in, out, fn.IsVariadic())
}
