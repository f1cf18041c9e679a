package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"plugin"
	reflectPkg "reflect"
	"strings"
	"time"

	"github.com/hookkit/probe/internal/reflect"
)

// LoaderFactory builds an isolated loading context rooted at locator.
type LoaderFactory func(locator string, parent Loader) (Loader, error)

func (p *Prober) LoadExternalType(locator, typeName string, parent Loader) Outcome[*Type] {
	return p.LoadExternalTypeCtx(context.Background(), locator, typeName, parent)
}

// LoadExternalTypeCtx resolves typeName inside the code unit at locator. The
// locator is checked before any loader is built; building the loader and
// resolving the type fail with distinct codes.
func (p *Prober) LoadExternalTypeCtx(ctx context.Context, locator, typeName string, parent Loader) Outcome[*Type] {
	start := time.Now()
	rec := Record{
		Operation: OpLoadExternalType,
		Type:      typeName,
		Locator:   locator,
	}

	t, err := absorb(locator, func() (*Type, error) {
		if _, err := os.Stat(locator); err != nil {
			return nil, errLocatorUnreachable(locator, err)
		}

		if parent == nil || reflect.IsNil(parent) {
			parent = p.config.loader
		}

		loader, err := absorb(locator, func() (Loader, error) {
			return p.config.loaderFactory(locator, parent)
		})
		if err == nil && (loader == nil || reflect.IsNil(loader)) {
			err = errors.New("factory returned no loader")
		}
		if err != nil {
			return nil, errLoaderFailed(locator, err)
		}

		t, err := absorb(typeName, func() (*Type, error) {
			return p.loadType(typeName, loader)
		})
		if IsPanic(err) {
			return nil, errTypeNotFound(typeName, err)
		}
		return t, err
	})

	p.finish(ctx, rec, start, err)
	if err != nil {
		return Absent[*Type](err)
	}
	return Found(t)
}

// PluginLoader resolves types from a Go plugin. A type name maps to the
// plugin symbol named after its last path element: an exported variable
// yields its type, an exported function yields its first result type and is
// attached as a static of the same name.
type PluginLoader struct {
	locator string
	plugin  *plugin.Plugin
	parent  Loader
}

// PluginLoaderFactory is the default LoaderFactory.
func PluginLoaderFactory(locator string, parent Loader) (Loader, error) {
	p, err := plugin.Open(locator)
	if err != nil {
		return nil, err
	}
	return &PluginLoader{locator: locator, plugin: p, parent: parent}, nil
}

func (l *PluginLoader) String() string {
	return "plugin:" + l.locator
}

func (l *PluginLoader) LoadType(name string) (*Type, error) {
	if l.parent != nil {
		if t, err := l.parent.LoadType(name); err == nil && t != nil {
			return t, nil
		}
	}

	symName := SymbolName(name)
	sym, err := l.plugin.Lookup(symName)
	if err != nil {
		return nil, errTypeNotFound(name, err)
	}

	sv := reflectPkg.ValueOf(sym)
	switch sv.Kind() {
	case reflectPkg.Ptr:
		return NewType(name, sv.Type().Elem(), l.String())
	case reflectPkg.Func:
		if sv.Type().NumOut() == 0 {
			return nil, errTypeNotFound(name, fmt.Errorf("symbol %s returns nothing", symName))
		}
		return NewType(name, sv.Type().Out(0), l.String(), Func(symName, sym))
	default:
		return nil, errTypeNotFound(name, fmt.Errorf("symbol %s is %T", symName, sym))
	}
}

// SymbolName is the plugin symbol a fully-qualified type name maps to.
func SymbolName(typeName string) string {
	return strings.TrimLeft(reflect.ShortName(typeName), "*")
}
