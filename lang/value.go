package lang

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
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
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON-like value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array value holding elems.
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Object returns an object value holding fields.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}

	return Value{kind: KindObject, obj: fields}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v.
func (v Value) Bool() bool { return v.b }

// Int returns the number held by v as an integer.
func (v Value) Int() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}

	return v.i
}

// Float returns the number held by v as a float.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}

	return v.f
}

// IsNumber reports whether v holds an integer or float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// Array returns the elements of an array value.
func (v Value) Array() []Value { return v.arr }

// Len returns the number of elements, fields or bytes in v.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// Get returns the field key of an object value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}

	f, ok := v.obj[key]

	return f, ok
}

// Keys returns the field names of an object value in sorted order.
func (v Value) Keys() []string {
	return slices.Sorted(maps.Keys(v.obj))
}

// Fields returns the fields of an object value. The map must not be
// modified.
func (v Value) Fields() map[string]Value { return v.obj }

// String renders v as template output: null is empty, numbers are decimal,
// arrays concatenate their elements and objects concatenate their values in
// key order.
func (v Value) String() string {
	var b strings.Builder

	v.write(&b)

	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'f', -1, 64))
	case KindString:
		b.WriteString(v.s)
	case KindArray:
		for _, e := range v.arr {
			e.write(b)
		}
	case KindObject:
		for _, k := range v.Keys() {
			v.obj[k].write(b)
		}
	}
}

// Truthy reports whether v counts as true in a condition. Null, false, zero,
// and empty strings, arrays and objects are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0 && !math.IsNaN(v.f)
	case KindString, KindArray, KindObject:
		return v.Len() > 0
	default:
		return false
	}
}

// Any converts v to plain Go values: nil, bool, int64, float64, string,
// []any and map[string]any.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Any()
		}

		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Any()
		}

		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Any()) }

// UnmarshalJSON implements json.Unmarshaler. Integers that fit in int64 stay
// integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	val, err := FromAny(raw)
	if err != nil {
		return err
	}

	*v = val

	return nil
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value { return slog.AnyValue(v.Any()) }

// FromAny converts decoded JSON or YAML data to a Value. Maps must have
// string keys, or keys that format cleanly as strings.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}

		f, err := t.Float64()
		if err != nil {
			return Null(), ErrInvalidVariables.Wrap(err)
		}

		return Float(f), nil
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
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []any:
		elems := make([]Value, len(t))

		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Null(), err
			}

			elems[i] = v
		}

		return Array(elems...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))

		for k, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Null(), err
			}

			fields[k] = v
		}

		return Object(fields), nil
	case map[any]any:
		fields := make(map[string]Value, len(t))

		for k, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Null(), err
			}

			fields[fmt.Sprint(k)] = v
		}

		return Object(fields), nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}

	return Int(int64(u))
}

// fromReflect handles typed slices and maps such as []string or
// map[string]int produced by expression evaluation.
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())

		for i := range rv.Len() {
			v, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Null(), err
			}

			elems[i] = v
		}

		return Array(elems...), nil

	case reflect.Map:
		fields := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			v, err := FromAny(iter.Value().Interface())
			if err != nil {
				return Null(), err
			}

			fields[fmt.Sprint(iter.Key().Interface())] = v
		}

		return Object(fields), nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}

		return FromAny(rv.Elem().Interface())
	}

	return Null(), ErrInvalidVariables.With(
		slog.String("type", rv.Type().String()),
	).Wrap(NewError("unsupported type " + rv.Type().String()))
}

// Scope maps variable names to values for one component invocation.
type Scope map[string]Value

// ScopeOf returns the root scope for v, which must be an object or null.
func ScopeOf(v Value) (Scope, error) {
	switch v.kind {
	case KindNull:
		return Scope{}, nil
	case KindObject:
		return Scope(v.obj), nil
	default:
		return nil, ErrInvalidVariables.With(slog.String("kind", v.kind.String()))
	}
}

// Lookup walks the dotted path through nested objects. It reports false if
// any segment is missing or crosses a non-object.
func (s Scope) Lookup(path string) (Value, bool) {
	head, rest, dotted := strings.Cut(path, ".")

	v, ok := s[head]

	for ok && dotted {
		head, rest, dotted = strings.Cut(rest, ".")
		v, ok = v.Get(head)
	}

	return v, ok
}

// Resolve looks up path for interpolation. A missing single name is null,
// but every segment before the last of a dotted path must be an object.
func (s Scope) Resolve(path string) (Value, error) {
	segs := strings.Split(path, ".")

	v, ok := s[segs[0]]
	if len(segs) == 1 {
		return v, nil
	}

	for i, seg := range segs[1:] {
		if !ok || v.kind != KindObject {
			prefix := strings.Join(segs[:i+1], ".")

			kind := "missing"
			if ok {
				kind = v.kind.String()
			}

			return Null(), &RenderError{
				Kind: RenderNotAnObjectOrNull,
				Name: path,
				Err:  NewError(prefix + " is " + kind),
			}
		}

		v, ok = v.Get(seg)
	}

	return v, nil
}
