package probe_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hookkit/probe"
)

type Display struct {
	vsync

	Width   int
	Height  int
	OnFrame func(int) int
	resize  func(int, int) error
}

type vsync struct {
	OnVsync func() int
}

func (d *Display) Resize(w, h int) error {
	if w < 0 || h < 0 {
		return errors.New("negative size")
	}
	d.Width, d.Height = w, h
	return nil
}

func (d Display) Area() int {
	return d.Width * d.Height
}

func (d *Display) Reset() {
	d.Width, d.Height = 0, 0
}

func (d *Display) Crash() {
	panic("display crashed")
}

func (d *Display) Label(prefix string, parts ...string) string {
	return prefix + strings.Join(parts, ",")
}

type Surface interface {
	Area() int
}

func NewDisplay(w, h int) *Display {
	return &Display{Width: w, Height: h}
}

func newHiddenDisplay(w, h int) *Display {
	d := NewDisplay(w, h)
	d.resize = d.Resize
	return d
}

// panickingLoader fails the way a unit with a broken initializer does.
type panickingLoader struct{}

func (panickingLoader) LoadType(string) (*probe.Type, error) {
	panic("unit initializer failed")
}

func (panickingLoader) String() string {
	return "panicking"
}

var (
	intType    = reflect.TypeOf(0)
	stringType = reflect.TypeOf("")
)

// writeUnit creates a file that exists but is not a loadable plugin.
func writeUnit(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "unit.so")
	if err := os.WriteFile(path, []byte("not a plugin"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}
