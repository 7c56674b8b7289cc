package core

import (
	"fmt"
	"math"
	"strconv"
)

// RealEpsilon is the tolerance used when testing real values for equality.
const RealEpsilon = 1e-5

// Value is one typed cell. Only the field matching Type is meaningful.
// Values are plain data: copying a Value copies its contents, and strings
// are immutable, so a Value handed out by any accessor is owned by the caller.
type Value struct {
	Type ColumnType

	Int  int64   // for IntType
	Real float64 // for RealType
	Str  string  // for StringType
}

func IntValue(v int64) Value {
	return Value{Type: IntType, Int: v}
}

func RealValue(v float64) Value {
	return Value{Type: RealType, Real: v}
}

func StringValue(v string) Value {
	return Value{Type: StringType, Str: v}
}

// ZeroValue returns the zero value of the given column type.
func ZeroValue(t ColumnType) Value {
	return Value{Type: t}
}

func (v Value) IsNumeric() bool {
	return v.Type.IsNumeric()
}

// Float returns the numeric value as a float64. Strings yield 0.
func (v Value) Float() float64 {
	switch v.Type {
	case IntType:
		return float64(v.Int)
	case RealType:
		return v.Real
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Type {
	case IntType:
		return strconv.FormatInt(v.Int, 10)
	case RealType:
		return FormatReal(v.Real)
	case StringType:
		return v.Str
	default:
		return ""
	}
}

// FormatReal renders a real with at least one fractional digit.
func FormatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'N' || s[i] == 'I' {
			return s
		}
	}
	return s + ".0"
}

// Convert returns v as a value of type t. Ints widen to reals; every other
// cross-type conversion is an error.
func (v Value) Convert(t ColumnType) (Value, error) {
	if v.Type == t {
		return v, nil
	}
	if v.Type == IntType && t == RealType {
		return RealValue(float64(v.Int)), nil
	}
	return Value{}, fmt.Errorf("cannot use %s value %q as %s", v.Type, v.String(), t)
}

// Compare orders two values. Numeric values compare numerically regardless of
// int/real mix; strings compare case-insensitively. Mixed string/numeric
// values order numbers first.
func Compare(a, b Value) int {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		if a.Type == IntType && b.Type == IntType {
			switch {
			case a.Int < b.Int:
				return -1
			case a.Int > b.Int:
				return 1
			}
			return 0
		}
		af, bf := a.Float(), b.Float()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case a.Type == StringType && b.Type == StringType:
		return CompareFold(a.Str, b.Str)
	case a.IsNumeric():
		return -1
	default:
		return 1
	}
}

// Equal reports equality: reals within RealEpsilon, strings case-insensitively.
func Equal(a, b Value) bool {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		if a.Type == IntType && b.Type == IntType {
			return a.Int == b.Int
		}
		return math.Abs(a.Float()-b.Float()) <= RealEpsilon
	case a.Type == StringType && b.Type == StringType:
		return EqualFold(a.Str, b.Str)
	default:
		return false
	}
}
