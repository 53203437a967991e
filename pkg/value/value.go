// Package value defines the variant cell type shared by tables, columns and
// the diff engine, together with the total ordering used for sorting and
// deterministic diff output.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "opaque"
	}
}

// Value is a tagged union over null, bool, int64, float64, string and
// anything else (opaque). The zero Value is Null.
type Value struct {
	Kind Kind
	V    any
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{Kind: KindBool, V: b} }

func Int(i int64) Value { return Value{Kind: KindInt, V: i} }

func Float(f float64) Value { return Value{Kind: KindFloat, V: f} }

func Text(s string) Value { return Value{Kind: KindText, V: s} }

func Opaque(v any) Value { return Value{Kind: KindOpaque, V: v} }

// FromAny maps native Go values onto the variant. Untyped nil becomes Null,
// integer and float widths are widened, and anything unrecognized is wrapped
// as Opaque. A Value passes through unchanged.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	default:
		return Opaque(v)
	}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsBlank reports whether the value is Null or empty text.
func (v Value) IsBlank() bool {
	if v.Kind == KindNull {
		return true
	}
	return v.Kind == KindText && v.V.(string) == ""
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		if v.V.(bool) {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.V.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.V.(float64), 'f', -1, 64)
	case KindText:
		return v.V.(string)
	default:
		return fmt.Sprintf("%v", v.V)
	}
}

// Float64 returns the numeric reading of the value. Only Int and Float
// values are numeric.
func (v Value) Float64() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.V.(int64)), true
	case KindFloat:
		return v.V.(float64), true
	default:
		return 0, false
	}
}

// rank positions the non-null kinds for cross-kind comparison. Int and Float
// share a rank; they are compared numerically instead.
func rank(k Kind) int {
	switch k {
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindText:
		return 3
	default:
		return 4
	}
}

// Compare imposes a total order on values:
//
//   - Null orders below every non-null value.
//   - Int and Float compare numerically with each other.
//   - Same-kind values compare naturally (false < true, byte-wise text,
//     opaque by string form).
//   - Remaining cross-kind pairs order by kind rank:
//     Bool < Int/Float < Text < Opaque.
func Compare(a, b Value) int {
	if a.Kind == KindNull || b.Kind == KindNull {
		if a.Kind == b.Kind {
			return 0
		}
		if a.Kind == KindNull {
			return -1
		}
		return 1
	}
	ra, rb := rank(a.Kind), rank(b.Kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindBool:
		ab, bb := a.V.(bool), b.V.(bool)
		if ab == bb {
			return 0
		}
		if !ab {
			return -1
		}
		return 1
	case KindInt:
		if b.Kind == KindInt {
			ai, bi := a.V.(int64), b.V.(int64)
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	case KindFloat, KindText, KindOpaque:
	}
	if ra == 2 {
		af, _ := a.Float64()
		bf, _ := b.Float64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, bs := a.String(), b.String()
	return strings.Compare(as, bs)
}

// Equal reports whether two values compare as equal under the total order.
// Note that Int(1) and Float(1) are equal by this definition.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// Key renders a tuple of values as a collision-free string, usable as a hash
// key for bucketing. Each value is length-prefixed and tagged so that values
// containing separator characters cannot collide. Int and Float share one
// numeric tag and a canonical decimal form, keeping Key consistent with
// Equal: numerically equal values hash identically.
func Key(vals ...Value) string {
	var b strings.Builder
	for _, v := range vals {
		tag, s := keyPart(v)
		b.WriteByte(tag)
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
		b.WriteByte('\x1f')
	}
	return b.String()
}

func keyPart(v Value) (byte, string) {
	switch v.Kind {
	case KindInt:
		return 'n', strconv.FormatInt(v.V.(int64), 10)
	case KindFloat:
		f := v.V.(float64)
		if f == math.Trunc(f) && math.Abs(f) < 1<<62 {
			return 'n', strconv.FormatInt(int64(f), 10)
		}
		return 'n', strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return byte('0' + v.Kind), v.String()
	}
}
