package types

import "strconv"

// Token is one run of identical primitives in a flattened layout. Pad
// tokens cover alignment gaps and carry no values.
type Token struct {
	Path   string
	Count  int
	Offset int
	Width  int
	Kind   Kind
	Pad    bool
}

// Size is the number of bytes the token spans.
func (t Token) Size() int {
	if t.Pad {
		return t.Count
	}
	return t.Count * t.Width
}

// End is the offset just past the token.
func (t Token) End() int {
	return t.Offset + t.Size()
}

// Format renders the token as <count><code>.
func (t Token) Format() string {
	if t.Pad {
		return strconv.Itoa(t.Count) + "x"
	}
	return strconv.Itoa(t.Count) + string(descriptors[t.Kind].Code)
}
