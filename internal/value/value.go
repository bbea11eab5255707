package value

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind tags which variant of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindBoolean
	KindDouble
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a portable column value. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	b    bool
	f    float64
	s    string
}

func Null() Value              { return Value{} }
func Integer(v int64) Value    { return Value{kind: KindInteger, i: v} }
func Boolean(v bool) Value     { return Value{kind: KindBoolean, b: v} }
func Double(v float64) Value   { return Value{kind: KindDouble, f: v} }
func String(v string) Value    { return Value{kind: KindString, s: v} }
func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Int() int64     { return v.i }
func (v Value) Bool() bool     { return v.b }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string    { return v.s }

// Interface returns the value as nil, int64, bool, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindBoolean:
		return v.b
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String renders the value for display; Null prints as NULL.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return "NULL"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindBoolean:
		return strconv.AppendBool(nil, v.b), nil
	case KindDouble:
		// JSON has no NaN or infinities.
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}
