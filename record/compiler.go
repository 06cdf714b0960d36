package record

import (
	"strconv"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record/internal/abi"
	"github.com/wippyai/cstruct/record/internal/layout"
	"github.com/wippyai/cstruct/record/internal/types"
)

// maxTokens bounds the flattened token stream; arrays of records repeat
// the element's tokens once per element.
const maxTokens = 1 << 22

var defaultCompiler = NewCompiler()

// Compiler turns record definitions into layouts. Each record is compiled
// once; the result is cached and shared. Safe for concurrent use.
type Compiler struct {
	cache sync.Map // *Record -> *Layout
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// DefaultCompiler is the compiler used by records defined without WithCompiler.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// Cached returns the layout previously compiled for r.
func (c *Compiler) Cached(r *Record) (*Layout, bool) {
	if v, ok := c.cache.Load(r); ok {
		return v.(*Layout), true
	}
	return nil, false
}

// Compile returns the layout of r, compiling it on first use.
func (c *Compiler) Compile(r *Record) (*Layout, error) {
	if r == nil {
		return nil, errors.Configuration(nil, "record is nil")
	}
	if cached, ok := c.Cached(r); ok {
		return cached, nil
	}
	if r.state.Load() == stateDeclared {
		return nil, errors.Configuration([]string{r.name}, "record %s is declared but not defined", r.name)
	}

	l, err := c.compile(r)
	if err != nil {
		return nil, err
	}

	actual, _ := c.cache.LoadOrStore(r, l)
	return actual.(*Layout), nil
}

type flatType struct {
	info   layout.Info
	tokens []Token
}

func (c *Compiler) compile(r *Record) (*Layout, error) {
	cfg := r.cfg
	native := cfg.width == NativeWidth

	var errs error
	if r.name == "" {
		errs = multierr.Append(errs, errors.Configuration(nil, "record name is empty"))
	}
	if native && cfg.order != NativeOrder {
		errs = multierr.Append(errs, errors.Configuration([]string{r.name},
			"native widths require native byte order, got %s", cfg.order))
	}

	calc := layout.NewCalculator(cfg.model, native)
	members := make([]layout.Info, 0, len(r.fields))
	flats := make([]flatType, 0, len(r.fields))
	seen := make(map[string]bool, len(r.fields))

	for _, f := range r.fields {
		path := []string{r.name, f.Name}
		if f.Name == "" {
			errs = multierr.Append(errs, errors.Configuration([]string{r.name}, "field name is empty"))
			continue
		}
		if seen[f.Name] {
			errs = multierr.Append(errs, errors.Configuration(path, "duplicate field name"))
			continue
		}
		seen[f.Name] = true

		ft, err := c.flatten(calc, r, f.Type, f.Name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		members = append(members, ft.info)
		flats = append(flats, ft)
	}

	if errs != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindConfiguration).
			Path(r.name).
			Detail("invalid definition of %s", r.name).
			Cause(errs).
			Build()
	}

	info, offsets, err := calc.Record(members)
	if err != nil {
		return nil, errors.Configuration([]string{r.name}, "%v", err)
	}

	l := &Layout{
		Name:     r.name,
		Fields:   make([]FieldLayout, len(r.fields)),
		Size:     info.Size,
		Align:    info.Align,
		Order:    cfg.order,
		Width:    cfg.width,
		Platform: calc.Model(),
		index:    make(map[string]int, len(r.fields)),
	}

	var tokens []Token
	for i, f := range r.fields {
		l.Fields[i] = FieldLayout{
			Name:   f.Name,
			Type:   f.Type,
			Offset: offsets[i],
			Size:   flats[i].info.Size,
			Align:  flats[i].info.Align,
		}
		l.index[f.Name] = i
		for _, tok := range flats[i].tokens {
			tok.Offset += offsets[i]
			tokens = append(tokens, tok)
		}
	}
	l.Tokens = layout.Pad(tokens, l.Size)
	l.format = buildFormat(l)

	return l, nil
}

// flatten computes the layout of one field type and its token stream with
// offsets relative to the start of the field.
func (c *Compiler) flatten(calc *layout.Calculator, owner *Record, t Type, path string) (flatType, error) {
	switch tt := t.(type) {
	case nil:
		return flatType{}, errors.Configuration([]string{owner.name, path}, "field type is nil")

	case Scalar:
		if tt.desc == nil {
			return flatType{}, errors.Configuration([]string{owner.name, path}, "invalid scalar type")
		}
		return c.flattenPrimitive(calc, owner, tt.desc.Kind, 1, path)

	case *Pointer:
		return c.flattenPrimitive(calc, owner, types.KindPointer, 1, path)

	case *Array:
		return c.flattenArray(calc, owner, tt, path)

	case *Record:
		l, err := c.embedded(calc, owner, tt, path)
		if err != nil {
			return flatType{}, err
		}
		return flatType{
			info:   layout.Info{Size: l.Size, Align: l.Align},
			tokens: rebase(l.Tokens, path+".", 0),
		}, nil

	default:
		return flatType{}, errors.Configuration([]string{owner.name, path}, "unsupported field type %T", t)
	}
}

func (c *Compiler) flattenPrimitive(calc *layout.Calculator, owner *Record, k types.Kind, count int, path string) (flatType, error) {
	elem, err := calc.Scalar(k)
	if err != nil {
		return flatType{}, errors.Configuration([]string{owner.name, path}, "%v", err)
	}
	info, err := calc.Array(elem, count)
	if err != nil {
		return flatType{}, errors.Configuration([]string{owner.name, path}, "%v", err)
	}
	return flatType{
		info: info,
		tokens: []Token{{
			Path:  path,
			Kind:  k,
			Count: count,
			Width: elem.Size,
		}},
	}, nil
}

func (c *Compiler) flattenArray(calc *layout.Calculator, owner *Record, a *Array, path string) (flatType, error) {
	total := a.Len()
	switch base := a.Base().(type) {
	case Scalar:
		if base.desc == nil {
			return flatType{}, errors.Configuration([]string{owner.name, path}, "invalid scalar type")
		}
		return c.flattenPrimitive(calc, owner, base.desc.Kind, total, path)

	case *Pointer:
		return c.flattenPrimitive(calc, owner, types.KindPointer, total, path)

	case *Record:
		l, err := c.embedded(calc, owner, base, path)
		if err != nil {
			return flatType{}, err
		}
		info, err := calc.Array(layout.Info{Size: l.Size, Align: l.Align}, total)
		if err != nil {
			return flatType{}, errors.Configuration([]string{owner.name, path}, "%v", err)
		}
		n, ok := abi.SafeMul(len(l.Tokens), total)
		if !ok || n > maxTokens {
			return flatType{}, errors.Configuration([]string{owner.name, path}, "array of %s flattens to too many primitives", base.name)
		}
		dims := a.Dimensions()
		tokens := make([]Token, 0, n)
		for k := 0; k < total; k++ {
			prefix := path + indexPath(dims, k) + "."
			tokens = append(tokens, rebase(l.Tokens, prefix, k*l.Size)...)
		}
		return flatType{info: info, tokens: tokens}, nil

	default:
		return flatType{}, errors.Configuration([]string{owner.name, path}, "unsupported array element %s", a.Base())
	}
}

// embedded resolves the layout of a record used by value inside owner.
func (c *Compiler) embedded(calc *layout.Calculator, owner, nested *Record, path string) (*Layout, error) {
	p := []string{owner.name, path}
	switch nested.state.Load() {
	case stateCompiling:
		if nested == owner {
			return nil, errors.Configuration(p, "record %s embeds itself", owner.name)
		}
		return nil, errors.Configuration(p, "record %s is still being defined (cyclic embedding)", nested.name)
	case stateDeclared:
		return nil, errors.Configuration(p, "record %s is declared but not defined", nested.name)
	}

	l := nested.Layout()
	if l == nil {
		return nil, errors.Configuration(p, "record %s has no layout", nested.name)
	}

	if l.Order != owner.cfg.order || l.Width != owner.cfg.width {
		return nil, errors.Configuration(p, "record %s uses %s order and %s widths, %s uses %s and %s",
			nested.name, l.Order, l.Width, owner.name, owner.cfg.order, owner.cfg.width)
	}
	if l.Width == NativeWidth && l.Platform.Name != calc.Model().Name {
		return nil, errors.Configuration(p, "record %s targets %s, %s targets %s",
			nested.name, l.Platform.Name, owner.name, calc.Model().Name)
	}
	return l, nil
}

func rebase(tokens []Token, prefix string, offset int) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		if !tok.Pad {
			tok.Path = prefix + tok.Path
		}
		tok.Offset += offset
		out[i] = tok
	}
	return out
}

// indexPath renders flat element index k of an array with dims as "[i][j]".
func indexPath(dims []int, k int) string {
	idx := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		idx[i] = k % dims[i]
		k /= dims[i]
	}
	var b strings.Builder
	for _, i := range idx {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(']')
	}
	return b.String()
}
