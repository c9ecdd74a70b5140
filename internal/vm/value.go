package vm

import (
	"strconv"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	// VKNil is the value of an unassigned global.
	VKNil ValueKind = iota
	// VKInt represents a signed integer value.
	VKInt
	// VKBool represents a boolean value.
	VKBool
	// VKString represents a string value.
	VKString
)

// String returns a human-readable name for the value kind.
func (k ValueKind) String() string {
	switch k {
	case VKNil:
		return "nil"
	case VKInt:
		return "int"
	case VKBool:
		return "bool"
	case VKString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a runtime value.
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	Str  string
}

// MakeInt creates an integer value.
func MakeInt(n int64) Value { return Value{Kind: VKInt, Int: n} }

// MakeBool creates a boolean value.
func MakeBool(b bool) Value { return Value{Kind: VKBool, Bool: b} }

// MakeString creates a string value.
func MakeString(s string) Value { return Value{Kind: VKString, Str: s} }

// String renders the value the way `print` and watch reports show it:
// nil is empty, strings are unquoted.
func (v Value) String() string {
	switch v.Kind {
	case VKInt:
		return strconv.FormatInt(v.Int, 10)
	case VKBool:
		return strconv.FormatBool(v.Bool)
	case VKString:
		return v.Str
	default:
		return ""
	}
}

// Inspect renders the value as a literal: nil is "nil", strings are quoted.
func (v Value) Inspect() string {
	switch v.Kind {
	case VKNil:
		return "nil"
	case VKString:
		return strconv.Quote(v.Str)
	default:
		return v.String()
	}
}

// Truthy reports whether the value counts as true. Only nil and false are falsy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case VKNil:
		return false
	case VKBool:
		return v.Bool
	default:
		return true
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VKInt:
		return v.Int == o.Int
	case VKBool:
		return v.Bool == o.Bool
	case VKString:
		return v.Str == o.Str
	default:
		return true
	}
}
