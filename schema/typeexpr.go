package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/cstruct/record"
)

// Resolver maps a record name used in a type expression to its type.
type Resolver func(name string) (*record.Record, bool)

// ParseType parses a C-like type expression:
//
//	int16            primitive (any C or fixed-width spelling)
//	uint64[2][3]     multidimensional array
//	Point, struct P  record by name
//	ptr              void pointer
//	ptr>double       pointer annotated with its pointee
//	ptr[4]>Node      array of pointers
//	ptr>int[2]       pointer to an array
func ParseType(expr string, resolve Resolver) (record.Type, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, fmt.Errorf("empty type expression")
	}

	if isPointer(s) {
		return parsePointer(s, resolve)
	}

	base, dims, err := splitDims(s)
	if err != nil {
		return nil, err
	}
	t, err := parseBase(base, resolve)
	if err != nil {
		return nil, err
	}
	return withDims(t, dims)
}

func isPointer(s string) bool {
	if !strings.HasPrefix(s, "ptr") {
		return false
	}
	rest := s[len("ptr"):]
	return rest == "" || rest[0] == '[' || rest[0] == '>' || rest[0] == ' '
}

func parsePointer(s string, resolve Resolver) (record.Type, error) {
	rest := strings.TrimSpace(s[len("ptr"):])

	head, pointee, hasPointee := strings.Cut(rest, ">")
	_, dims, err := splitDims("ptr" + strings.TrimSpace(head))
	if err != nil {
		return nil, err
	}

	var target record.Type
	if hasPointee {
		target, err = ParseType(pointee, resolve)
		if err != nil {
			return nil, fmt.Errorf("pointee of %q: %w", s, err)
		}
	}
	return withDims(record.PointerTo(target), dims)
}

// splitDims separates "name[a][b]" into "name" and [a b].
func splitDims(s string) (string, []int, error) {
	i := strings.IndexByte(s, '[')
	if i < 0 {
		return strings.TrimSpace(s), nil, nil
	}
	base := strings.TrimSpace(s[:i])
	rest := s[i:]

	var dims []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected %q in %q", rest, s)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, fmt.Errorf("unterminated dimension in %q", s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
		if err != nil {
			return "", nil, fmt.Errorf("bad dimension %q in %q", rest[1:end], s)
		}
		dims = append(dims, n)
		rest = strings.TrimSpace(rest[end+1:])
	}
	return base, dims, nil
}

func parseBase(name string, resolve Resolver) (record.Type, error) {
	if strings.HasPrefix(name, "struct ") {
		name = strings.TrimSpace(strings.TrimPrefix(name, "struct "))
	} else if s, ok := record.ScalarOf(name); ok {
		return s, nil
	}
	if resolve != nil {
		if r, ok := resolve(name); ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

func withDims(t record.Type, dims []int) (record.Type, error) {
	if len(dims) == 0 {
		return t, nil
	}
	a, err := record.Dims(t, dims...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// references lists the record names a type expression embeds by value.
// Names behind a pointer are not dependencies.
func references(expr string) []string {
	s := strings.TrimSpace(expr)
	if s == "" || isPointer(s) {
		return nil
	}
	base, _, err := splitDims(s)
	if err != nil {
		return nil
	}
	if strings.HasPrefix(base, "struct ") {
		return []string{strings.TrimSpace(strings.TrimPrefix(base, "struct "))}
	}
	if _, ok := record.ScalarOf(base); ok {
		return nil
	}
	return []string{base}
}
