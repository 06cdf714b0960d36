package platform

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var rawModels []byte

var models []*Model

var ErrUnknownModel = errors.New("unknown data model")

// TypeNames lists every C type a model must describe.
var TypeNames = []string{
	"char", "schar", "uchar", "bool",
	"short", "ushort", "int", "uint",
	"long", "ulong", "longlong", "ulonglong",
	"float", "double", "ssize", "size", "ptr",
}

type TypeInfo struct {
	Size  int `yaml:"size"`
	Align int `yaml:"align"`
}

// Model is a C data model: the size and struct-member alignment of every
// primitive type on a family of targets.
type Model struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Targets     []string            `yaml:"targets"`
	Types       map[string]TypeInfo `yaml:"types"`
}

// Info returns the size and alignment of the named C type.
func (m *Model) Info(typeName string) (TypeInfo, bool) {
	info, ok := m.Types[typeName]
	return info, ok
}

// PointerSize is the width of ptr, size and ssize on this model.
func (m *Model) PointerSize() int {
	return m.Types["ptr"].Size
}

func (m *Model) String() string {
	return m.Name
}

// All returns every known model in table order.
func All() []*Model {
	return slices.Clone(models)
}

// Names returns the model names, sorted.
func Names() []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	slices.Sort(names)
	return names
}

// Lookup finds a model by name, case-insensitively.
func Lookup(name string) (*Model, error) {
	name = strings.ToLower(name)
	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// ForTarget finds the model used on goos/goarch.
func ForTarget(goos, goarch string) (*Model, error) {
	target := goos + "/" + goarch
	for _, m := range models {
		if slices.Contains(m.Targets, target) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: no model for %s", ErrUnknownModel, target)
}

var host *Model

// Host returns the model of the running process. Targets missing from the
// table fall back to a model derived from the Go toolchain's pointer size.
func Host() *Model {
	return host
}

func hostModel() *Model {
	if m, err := ForTarget(runtime.GOOS, runtime.GOARCH); err == nil {
		return m
	}
	fallback := "ilp32"
	if unsafe.Sizeof(uintptr(0)) == 8 {
		fallback = "lp64"
	}
	m, err := Lookup(fallback)
	if err != nil {
		panic(err)
	}
	return m
}

func validate(m *Model) error {
	if m.Name == "" {
		return errors.New("model without name")
	}
	for _, name := range TypeNames {
		info, ok := m.Types[name]
		if !ok {
			return fmt.Errorf("model %s: missing type %s", m.Name, name)
		}
		if info.Size <= 0 || info.Align <= 0 || info.Align&(info.Align-1) != 0 {
			return fmt.Errorf("model %s: bad layout for %s: %+v", m.Name, name, info)
		}
	}
	return nil
}

func init() {
	var t struct {
		Models []*Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(rawModels, &t); err != nil {
		panic(err)
	}
	for _, m := range t.Models {
		if err := validate(m); err != nil {
			panic(err)
		}
	}

	models = t.Models
	host = hostModel()
}
