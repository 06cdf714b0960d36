package record

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/wippyai/cstruct/platform"
)

// ByteOrder selects the byte order of multi-byte primitives.
type ByteOrder uint8

const (
	NativeOrder ByteOrder = iota
	BigEndian
	LittleEndian
)

func (o ByteOrder) String() string {
	switch o {
	case NativeOrder:
		return "native"
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	default:
		return fmt.Sprintf("ByteOrder(%d)", uint8(o))
	}
}

// Marker is the format string prefix for the order.
func (o ByteOrder) Marker() byte {
	switch o {
	case BigEndian:
		return '>'
	case LittleEndian:
		return '<'
	default:
		return '='
	}
}

func (o ByteOrder) binary() binary.ByteOrder {
	switch o {
	case BigEndian:
		return binary.BigEndian
	case LittleEndian:
		return binary.LittleEndian
	default:
		return binary.NativeEndian
	}
}

// ParseByteOrder accepts a name ("native", "big", "little", "network") or
// a format marker ("=", ">", "<", "!").
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "=":
		return NativeOrder, nil
	case "big", "big-endian", "bigendian", "network", ">", "!":
		return BigEndian, nil
	case "little", "little-endian", "littleendian", "<":
		return LittleEndian, nil
	}
	return NativeOrder, fmt.Errorf("unknown byte order %q", s)
}

// WidthMode selects how primitive sizes and alignment are determined.
type WidthMode uint8

const (
	// StandardWidth uses fixed sizes and no padding.
	StandardWidth WidthMode = iota
	// NativeWidth uses the sizes and alignment of a C data model.
	NativeWidth
)

func (w WidthMode) String() string {
	switch w {
	case StandardWidth:
		return "standard"
	case NativeWidth:
		return "native"
	default:
		return fmt.Sprintf("WidthMode(%d)", uint8(w))
	}
}

// ParseWidthMode accepts "standard", "native" or the "@" marker.
func ParseWidthMode(s string) (WidthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "std":
		return StandardWidth, nil
	case "native", "@":
		return NativeWidth, nil
	}
	return StandardWidth, fmt.Errorf("unknown width mode %q", s)
}

type config struct {
	order     ByteOrder
	width     WidthMode
	model     *platform.Model
	validator func(*Instance) bool
	compiler  *Compiler
}

func defaultConfig() config {
	return config{
		order:    NativeOrder,
		width:    StandardWidth,
		compiler: defaultCompiler,
	}
}

// Option configures a record definition.
type Option func(*config)

func WithByteOrder(o ByteOrder) Option {
	return func(c *config) { c.order = o }
}

func WithWidth(w WidthMode) Option {
	return func(c *config) { c.width = w }
}

// WithPlatform selects the data model for native widths. The host model is
// used when unset.
func WithPlatform(m *platform.Model) Option {
	return func(c *config) { c.model = m }
}

// WithValidator installs a check run on every decoded or constructed
// instance. Returning false rejects the instance with a validation error.
func WithValidator(fn func(*Instance) bool) Option {
	return func(c *config) { c.validator = fn }
}

// WithCompiler compiles the record with c instead of the shared compiler.
func WithCompiler(c *Compiler) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.compiler = c
		}
	}
}
