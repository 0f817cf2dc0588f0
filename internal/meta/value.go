package meta

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Errors
var (
	ErrUnsupportedType = errors.New("unsupported metadata value type")
	ErrCorruptHeader   = errors.New("corrupt metadata")
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindInt ValueKind = iota + 1
	KindFloat
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is one metadata scalar.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

// Int, Float and String construct values of each kind.
func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind reports which variant v holds. The zero Value has kind 0.
func (v Value) Kind() ValueKind { return v.kind }

// Int returns the integer payload and whether v is an Int.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload and whether v is a Float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Str returns the string payload and whether v is a String.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Interface returns the payload as int64, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	}
	return "<invalid>"
}

// Equal compares kind and payload. Floats compare by value, so NaN never
// equals itself; NaN cannot be stored in a file anyway.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	}
	return true
}

// ValueOf converts a Go scalar to a Value.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		if t.kind == 0 {
			return Value{}, fmt.Errorf("%w: zero Value", ErrUnsupportedType)
		}
		return t, nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return uintValue(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return uintValue(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, x)
}

func uintValue(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, u)
	}
	return Int(int64(u)), nil
}
