package record

import (
	"strconv"

	"github.com/wippyai/cstruct/errors"
)

// cursor walks a layout's token stream in step with the field types,
// skipping pads. Scalar arrays of any depth are a single token, consumed
// one innermost row at a time.
type cursor struct {
	tokens []Token
	pos    int
	elem   int
}

// take consumes n elements of the current token and returns the token and
// the byte offset of the first element.
func (c *cursor) take(n int, phase errors.Phase, path []string) (Token, int, error) {
	for c.pos < len(c.tokens) && c.tokens[c.pos].Pad {
		c.pos++
	}
	if c.pos >= len(c.tokens) {
		return Token{}, 0, errors.New(phase, errors.KindInvalidInput).
			Path(path...).
			Detail("layout has no primitive left").
			Build()
	}
	tok := c.tokens[c.pos]
	if c.elem+n > tok.Count {
		return Token{}, 0, errors.New(phase, errors.KindInvalidInput).
			Path(path...).
			Detail("token %s has %d elements left, need %d", tok.Format(), tok.Count-c.elem, n).
			Build()
	}
	off := tok.Offset + c.elem*tok.Width
	c.elem += n
	if c.elem == tok.Count {
		c.pos++
		c.elem = 0
	}
	return tok, off, nil
}

func childPath(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

// indexed appends [i] to the last path element.
func indexed(path []string, i int) []string {
	out := make([]string, len(path))
	copy(out, path)
	suffix := "[" + strconv.Itoa(i) + "]"
	if len(out) == 0 {
		return []string{suffix}
	}
	out[len(out)-1] += suffix
	return out
}
