package value

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tag identifies which alternative of the Value variant is populated.
type Tag int

const (
	// Null is the tag of a Value holding no data.
	Null Tag = iota
	// Integer holds a 32-bit signed integer.
	Integer
	// LongInt holds a 64-bit signed integer.
	LongInt
	// String holds UTF-8 text.
	String
	// Decimal holds an arbitrary-precision fixed-point number.
	Decimal
	// DateTime holds a timestamp.
	DateTime
	// Float holds a 64-bit IEEE-754 float.
	Float
	// Blob holds an opaque byte slice.
	Blob
)

// String returns the canonical tag name, as used by schema XML "type=" attributes.
func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Integer:
		return "integer"
	case LongInt:
		return "longint"
	case String:
		return "string"
	case Decimal:
		return "decimal"
	case DateTime:
		return "datetime"
	case Float:
		return "float"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// ParseTag resolves a canonical tag name (as found in a schema XML file)
// into its Tag. Lookup is case-insensitive.
func ParseTag(name string) (Tag, error) {
	switch strings.ToLower(name) {
	case "integer":
		return Integer, nil
	case "longint":
		return LongInt, nil
	case "string":
		return String, nil
	case "decimal":
		return Decimal, nil
	case "datetime":
		return DateTime, nil
	case "float":
		return Float, nil
	case "blob":
		return Blob, nil
	}
	return Null, &BadCastError{Message: fmt.Sprintf("unknown value type name %q", name)}
}

// Value is a tagged union over the eight scalar alternatives the ORM's
// columns, expressions, and rows can carry. The zero Value is null.
// Value is a small value type: copying it is cheap and never aliases
// mutable state (strings and decimals are immutable; blobs are treated
// as immutable once wrapped).
type Value struct {
	tag Tag
	i   int64
	f   float64
	s   string
	d   decimal.Decimal
	t   time.Time
	b   []byte
}

// Nil is the null Value, equivalent to the zero value but spelled out
// for readability at call sites (mirrors the YB_NULL macro).
var Nil = Value{}

// NewInteger returns an Integer-tagged Value.
func NewInteger(v int32) Value { return Value{tag: Integer, i: int64(v)} }

// NewLongInt returns a LongInt-tagged Value.
func NewLongInt(v int64) Value { return Value{tag: LongInt, i: v} }

// NewString returns a String-tagged Value.
func NewString(v string) Value { return Value{tag: String, s: v} }

// NewDecimal returns a Decimal-tagged Value.
func NewDecimal(v decimal.Decimal) Value { return Value{tag: Decimal, d: v} }

// NewDateTime returns a DateTime-tagged Value.
func NewDateTime(v time.Time) Value { return Value{tag: DateTime, t: v} }

// NewFloat returns a Float-tagged Value.
func NewFloat(v float64) Value { return Value{tag: Float, f: v} }

// NewBlob returns a Blob-tagged Value. The slice is retained, not copied.
func NewBlob(v []byte) Value { return Value{tag: Blob, b: v} }

// IsNull reports whether v holds no data.
func (v Value) IsNull() bool { return v.tag == Null }

// Tag returns the variant's discriminator.
func (v Value) Tag() Tag { return v.tag }

// Swap exchanges the contents of v and other in place, mirroring the
// C++ original's cheap swap() used to avoid copies during row assembly.
func (v *Value) Swap(other *Value) { *v, *other = *other, *v }

// BadCastError reports an invalid Value tag coercion or a null dereference.
type BadCastError struct {
	From, To Tag
	Message  string
}

func (e *BadCastError) Error() string {
	if e.Message != "" {
		return "value: " + e.Message
	}
	return fmt.Sprintf("value: cannot cast %s to %s", e.From, e.To)
}

// NullDereferenceError is returned by the As* accessors when called on a
// null Value and no default/nvl has been applied.
type NullDereferenceError struct{}

func (*NullDereferenceError) Error() string { return "value: null dereference" }

// AsInteger coerces v to int32. Non-null, non-Integer tags are converted
// losslessly when they fit, otherwise truncated (the "fix type" cast).
func (v Value) AsInteger() (int32, error) {
	switch v.tag {
	case Null:
		return 0, &NullDereferenceError{}
	case Integer:
		return int32(v.i), nil
	case LongInt:
		return int32(v.i), nil
	case Float:
		return int32(v.f), nil
	case Decimal:
		return int32(v.d.IntPart()), nil
	case String:
		var out int64
		if _, err := fmt.Sscanf(v.s, "%d", &out); err != nil {
			return 0, &BadCastError{From: v.tag, To: Integer}
		}
		return int32(out), nil
	default:
		return 0, &BadCastError{From: v.tag, To: Integer}
	}
}

// AsLongInt coerces v to int64.
func (v Value) AsLongInt() (int64, error) {
	switch v.tag {
	case Null:
		return 0, &NullDereferenceError{}
	case Integer, LongInt:
		return v.i, nil
	case Float:
		return int64(v.f), nil
	case Decimal:
		return v.d.IntPart(), nil
	case String:
		var out int64
		if _, err := fmt.Sscanf(v.s, "%d", &out); err != nil {
			return 0, &BadCastError{From: v.tag, To: LongInt}
		}
		return out, nil
	default:
		return 0, &BadCastError{From: v.tag, To: LongInt}
	}
}

// AsFloat coerces v to float64.
func (v Value) AsFloat() (float64, error) {
	switch v.tag {
	case Null:
		return 0, &NullDereferenceError{}
	case Integer, LongInt:
		return float64(v.i), nil
	case Float:
		return v.f, nil
	case Decimal:
		f, _ := v.d.Float64()
		return f, nil
	case String:
		var out float64
		if _, err := fmt.Sscanf(v.s, "%g", &out); err != nil {
			return 0, &BadCastError{From: v.tag, To: Float}
		}
		return out, nil
	default:
		return 0, &BadCastError{From: v.tag, To: Float}
	}
}

// AsDecimal coerces v to an arbitrary-precision Decimal.
func (v Value) AsDecimal() (decimal.Decimal, error) {
	switch v.tag {
	case Null:
		return decimal.Decimal{}, &NullDereferenceError{}
	case Decimal:
		return v.d, nil
	case Integer, LongInt:
		return decimal.NewFromInt(v.i), nil
	case Float:
		return decimal.NewFromFloat(v.f), nil
	case String:
		d, err := decimal.NewFromString(v.s)
		if err != nil {
			return decimal.Decimal{}, &BadCastError{From: v.tag, To: Decimal}
		}
		return d, nil
	default:
		return decimal.Decimal{}, &BadCastError{From: v.tag, To: Decimal}
	}
}

// AsString renders v as text. Unlike SQLLiteral, this is the "value as
// string" accessor, not a SQL-escaped literal.
func (v Value) AsString() (string, error) {
	switch v.tag {
	case Null:
		return "", &NullDereferenceError{}
	case String:
		return v.s, nil
	case Integer, LongInt:
		return fmt.Sprintf("%d", v.i), nil
	case Float:
		return strconvFloat(v.f), nil
	case Decimal:
		return v.d.String(), nil
	case DateTime:
		return FormatDateTime(v.t), nil
	case Blob:
		return string(v.b), nil
	default:
		return "", &BadCastError{From: v.tag, To: String}
	}
}

// AsDateTime coerces v to a time.Time, accepting both
// "YYYY-MM-DD HH:MM:SS" and "YYYY-MM-DDTHH:MM:SS" forms (optionally with
// ".mmm" milliseconds) when the source is a String.
func (v Value) AsDateTime() (time.Time, error) {
	switch v.tag {
	case Null:
		return time.Time{}, &NullDereferenceError{}
	case DateTime:
		return v.t, nil
	case String:
		t, err := ParseDateTime(v.s)
		if err != nil {
			return time.Time{}, &BadCastError{From: v.tag, To: DateTime, Message: err.Error()}
		}
		return t, nil
	default:
		return time.Time{}, &BadCastError{From: v.tag, To: DateTime}
	}
}

// AsBlob coerces v to a byte slice.
func (v Value) AsBlob() ([]byte, error) {
	switch v.tag {
	case Null:
		return nil, &NullDereferenceError{}
	case Blob:
		return v.b, nil
	case String:
		return []byte(v.s), nil
	default:
		return nil, &BadCastError{From: v.tag, To: Blob}
	}
}

// NVL returns v if it is non-null, otherwise def.
func (v Value) NVL(def Value) Value {
	if v.IsNull() {
		return def
	}
	return v
}

// FixType performs a lossy coercion of v to the target tag, the
// "fix_type" operation from the original variant: the payload is
// reinterpreted best-effort rather than rejected.
func (v Value) FixType(to Tag) (Value, error) {
	if v.tag == to {
		return v, nil
	}
	if v.IsNull() {
		return Nil, nil
	}
	switch to {
	case Integer:
		i, err := v.AsInteger()
		if err != nil {
			return Value{}, err
		}
		return NewInteger(i), nil
	case LongInt:
		i, err := v.AsLongInt()
		if err != nil {
			return Value{}, err
		}
		return NewLongInt(i), nil
	case Float:
		f, err := v.AsFloat()
		if err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	case Decimal:
		d, err := v.AsDecimal()
		if err != nil {
			return Value{}, err
		}
		return NewDecimal(d), nil
	case String:
		s, err := v.AsString()
		if err != nil {
			return Value{}, err
		}
		return NewString(s), nil
	case DateTime:
		t, err := v.AsDateTime()
		if err != nil {
			return Value{}, err
		}
		return NewDateTime(t), nil
	case Blob:
		b, err := v.AsBlob()
		if err != nil {
			return Value{}, err
		}
		return NewBlob(b), nil
	default:
		return Value{}, &BadCastError{From: v.tag, To: to}
	}
}

// Cmp implements a total order over Value: null sorts before any
// non-null Value; two non-null Values compare first by tag then by
// payload. This mirrors Yb::Value::cmp in the original library.
func (v Value) Cmp(o Value) int {
	if v.IsNull() && o.IsNull() {
		return 0
	}
	if v.IsNull() {
		return -1
	}
	if o.IsNull() {
		return 1
	}
	if v.tag != o.tag {
		if v.tag < o.tag {
			return -1
		}
		return 1
	}
	switch v.tag {
	case Integer, LongInt:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		default:
			return 0
		}
	case Float:
		switch {
		case v.f < o.f:
			return -1
		case v.f > o.f:
			return 1
		default:
			return 0
		}
	case String:
		switch {
		case v.s < o.s:
			return -1
		case v.s > o.s:
			return 1
		default:
			return 0
		}
	case Decimal:
		return v.d.Cmp(o.d)
	case DateTime:
		switch {
		case v.t.Before(o.t):
			return -1
		case v.t.After(o.t):
			return 1
		default:
			return 0
		}
	case Blob:
		switch {
		case string(v.b) < string(o.b):
			return -1
		case string(v.b) > string(o.b):
			return 1
		default:
			return 0
		}
	}
	return 0
}

// Equal reports whether v and o compare equal under Cmp.
func (v Value) Equal(o Value) bool { return v.Cmp(o) == 0 }

// Less reports whether v sorts before o under Cmp.
func (v Value) Less(o Value) bool { return v.Cmp(o) < 0 }

func strconvFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Sprintf("%v", f)
	}
	return fmt.Sprintf("%g", f)
}
