package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeKind discriminates the value type model.
type TypeKind uint8

const (
	TypeVoid TypeKind = iota
	TypeInt
	TypeFloat
)

// Type describes a scalar or vector value type. Lanes is zero for scalars.
type Type struct {
	Kind  TypeKind
	Bits  int
	Lanes int
}

func Void() Type          { return Type{Kind: TypeVoid} }
func Int(bits int) Type   { return Type{Kind: TypeInt, Bits: bits} }
func Float(bits int) Type { return Type{Kind: TypeFloat, Bits: bits} }

// Vec returns the vector form of elem with the given lane count.
func Vec(elem Type, lanes int) Type {
	elem.Lanes = lanes
	return elem
}

// Scalar reports whether t has no vector lanes.
func (t Type) Scalar() bool { return t.Lanes == 0 }

// Elem returns the element type of a vector, or t itself for scalars.
func (t Type) Elem() Type {
	t.Lanes = 0
	return t
}

// SizeInBytes returns the storage size of the whole value.
func (t Type) SizeInBytes() int {
	if t.Kind == TypeVoid {
		return 0
	}
	lanes := t.Lanes
	if lanes == 0 {
		lanes = 1
	}
	return lanes * t.Bits / 8
}

func (t Type) String() string {
	var elem string
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeInt:
		elem = "i" + strconv.Itoa(t.Bits)
	case TypeFloat:
		elem = "f" + strconv.Itoa(t.Bits)
	default:
		elem = "?"
	}
	if t.Lanes > 0 {
		return fmt.Sprintf("<%d x %s>", t.Lanes, elem)
	}
	return elem
}

// ParseType parses the textual type spelling produced by Type.String.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "void" {
		return Void(), nil
	}
	if strings.HasPrefix(s, "<") {
		inner, ok := strings.CutSuffix(strings.TrimPrefix(s, "<"), ">")
		if !ok {
			return Type{}, fmt.Errorf("malformed vector type %q", s)
		}
		lanesStr, elemStr, ok := strings.Cut(inner, " x ")
		if !ok {
			return Type{}, fmt.Errorf("malformed vector type %q", s)
		}
		lanes, err := strconv.Atoi(strings.TrimSpace(lanesStr))
		if err != nil || lanes <= 0 {
			return Type{}, fmt.Errorf("bad lane count in type %q", s)
		}
		elem, err := ParseType(elemStr)
		if err != nil {
			return Type{}, err
		}
		if elem.Kind == TypeVoid || elem.Lanes > 0 {
			return Type{}, fmt.Errorf("bad vector element in type %q", s)
		}
		return Vec(elem, lanes), nil
	}
	if len(s) < 2 {
		return Type{}, fmt.Errorf("unknown type %q", s)
	}
	var kind TypeKind
	switch s[0] {
	case 'i':
		kind = TypeInt
	case 'f':
		kind = TypeFloat
	default:
		return Type{}, fmt.Errorf("unknown type %q", s)
	}
	bits, err := strconv.Atoi(s[1:])
	if err != nil || bits <= 0 {
		return Type{}, fmt.Errorf("bad bit width in type %q", s)
	}
	return Type{Kind: kind, Bits: bits}, nil
}
