package condition

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// Kind is the closed set of value categories conditions understand.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindTime
	KindText
	KindBool
	KindOther
)

var kindNames = [...]string{"null", "integer", "float", "time", "text", "bool", "other"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a loosely typed input classified once into a Kind.
// A typed nil pointer keeps the kind of its element but is absent.
type Value struct {
	kind  Kind
	valid bool
	i     int64
	f     float64
	t     time.Time
	s     string
	b     bool
	raw   any
	typ   reflect.Type
}

var timeType = reflect.TypeOf(time.Time{})

// ValueOf classifies v. Pointers are dereferenced and named types fall back
// to their underlying kind.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
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
		return uintValue(uint64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return uintValue(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int(n)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return Text(x.String())
	case time.Time:
		return Time(x)
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	}
	return reflectValue(reflect.ValueOf(v))
}

func reflectValue(rv reflect.Value) Value {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			elem := rv.Type()
			for elem.Kind() == reflect.Pointer {
				elem = elem.Elem()
			}
			return Value{kind: kindOfType(elem), typ: elem}
		}
		return ValueOf(rv.Elem().Interface())
	}

	typ := rv.Type()
	out := Value{kind: kindOfType(typ), valid: true, raw: rv.Interface(), typ: typ}
	switch out.kind {
	case KindInteger:
		if rv.CanInt() {
			out.i = rv.Int()
		} else {
			u := rv.Uint()
			if u > math.MaxInt64 {
				out.kind, out.f = KindFloat, float64(u)
			} else {
				out.i = int64(u)
			}
		}
	case KindFloat:
		out.f = rv.Float()
	case KindTime:
		out.t = rv.Convert(timeType).Interface().(time.Time)
	case KindText:
		out.s = rv.String()
	case KindBool:
		out.b = rv.Bool()
	}
	return out
}

func kindOfType(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindText
	case reflect.Bool:
		return KindBool
	case reflect.Struct:
		if t == timeType || t.ConvertibleTo(timeType) {
			return KindTime
		}
	}
	return KindOther
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInteger, valid: true, i: i, raw: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, valid: true, f: f, raw: f} }

// Time returns a date-time value.
func Time(t time.Time) Value { return Value{kind: KindTime, valid: true, t: t, raw: t} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, valid: true, s: s, raw: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, valid: true, b: b, raw: b} }

// Absent returns a value of kind k that carries no data.
func Absent(k Kind) Value { return Value{kind: k} }

// Kind reports the value category.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return !v.valid }

// Int64 returns integer values as is and truncates floats.
func (v Value) Int64() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}
	return v.i
}

// Float64 returns numeric values as float64.
func (v Value) Float64() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

// Time returns the date-time payload.
func (v Value) Time() time.Time { return v.t }

// String returns the text payload, or a printable form for other kinds.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindNull:
		return "<nil>"
	}
	if !v.valid {
		return "<absent " + v.kind.String() + ">"
	}
	return fmt.Sprint(v.Interface())
}

// Interface returns the payload normalized to int64, float64, time.Time,
// string, bool or the original value.
func (v Value) Interface() any {
	if !v.valid {
		return nil
	}
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindTime:
		return v.t
	case KindText:
		return v.s
	case KindBool:
		return v.b
	}
	return v.raw
}

// TypeName names the Go type the value was built from.
func (v Value) TypeName() string {
	switch {
	case v.typ != nil:
		return v.typ.String()
	case v.raw != nil:
		return fmt.Sprintf("%T", v.raw)
	}
	return "<nil>"
}

func (v Value) fieldValue() types.FieldValue {
	if v.kind == KindTime {
		return formatTime(v.t)
	}
	return v.Interface()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
