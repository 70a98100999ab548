package mpform

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Marshaler is the interface implemented by types that can marshal themselves
// into a scalar form value.
type Marshaler interface {
	MarshalForm() (string, error)
}

var (
	fileSourceType = reflect.TypeOf((*FileSource)(nil)).Elem()
	valueType      = reflect.TypeOf((*Value)(nil)).Elem()
	treeType       = reflect.TypeOf(Tree(nil))
)

// ScalarOf converts v to a scalar using a deterministic textual form: strings
// and byte slices are taken as-is, integers are written in base 10, floats in
// the shortest representation that round-trips, and booleans as "true" or
// "false". Types implementing [Marshaler] or [fmt.Stringer] use those methods.
func ScalarOf(v interface{}) (Scalar, error) {
	switch s := v.(type) {
	case Scalar:
		return s, nil
	case string:
		return String(s), nil
	case []byte:
		return Bytes(s), nil
	case Marshaler:
		str, err := s.MarshalForm()
		if err != nil {
			return nil, err
		}
		return String(str), nil
	case fmt.Stringer:
		return String(s.String()), nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, fmt.Errorf("mpform: cannot convert nil to a scalar")
	}
	str, err := scalarString(reflect.Indirect(rv))
	if err != nil {
		return nil, err
	}
	return String(str), nil
}

// Marshal builds a parameter tree from v, which must be a struct or a map
// with string keys (or a pointer to one).
//
// Struct fields are named by their "form" tag, honouring the "omitempty" and
// "-" options. Map entries are emitted in sorted key order. Slice and array
// elements become a nested tree keyed by index, so a field "tags" holding two
// values produces "tags[0]" and "tags[1]". Values implementing [FileSource]
// become file parts, values implementing [Marshaler] or [fmt.Stringer] (such
// as [time.Time]) become scalars, and nil pointers and interfaces are skipped.
func Marshal(v interface{}) (Tree, error) {
	if v == nil {
		return Tree{}, nil
	}

	// Dereference pointer if needed.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Tree{}, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return marshalStruct(rv)
	case reflect.Map:
		return marshalMap(rv)
	default:
		return nil, fmt.Errorf("mpform: top-level value must be struct or map")
	}
}

// marshalValue converts v into a tree value. It reports false when v is nil
// and should be left out of the tree.
func marshalValue(v reflect.Value) (Value, bool, error) {
	if !v.IsValid() {
		return nil, false, nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil, false, nil
	}

	// Prebuilt values pass through untouched. Readers are checked before
	// dereferencing, since most are pointer types such as *os.File.
	if v.CanInterface() {
		switch t := v.Type(); {
		case t == treeType:
			return Nested(v.Interface().(Tree)), true, nil
		case t.Implements(valueType):
			return v.Interface().(Value), true, nil
		case t.Implements(fileSourceType):
			return File{Source: v.Interface().(FileSource)}, true, nil
		}
	}

	if m, ok := asMarshaler(v); ok {
		s, err := m.MarshalForm()
		if err != nil {
			return nil, false, err
		}
		return String(s), true, nil
	}
	if s, ok := asStringer(v); ok {
		return String(s.String()), true, nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return marshalValue(v.Elem())
	case reflect.Struct:
		t, err := marshalStruct(v)
		return Nested(t), true, err
	case reflect.Map:
		t, err := marshalMap(v)
		return Nested(t), true, err
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(v.Bytes()), true, nil
		}
		t, err := marshalSlice(v)
		return Nested(t), true, err
	default:
		s, err := scalarString(v)
		if err != nil {
			return nil, false, err
		}
		return String(s), true, nil
	}
}

func marshalStruct(v reflect.Value) (Tree, error) {
	tags := tags(v)
	out := make(Tree, 0, len(tags))
	for i, tag := range tags {
		if tag.Skip {
			continue
		}
		fv := v.Field(i)
		if tag.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		val, ok, err := marshalValue(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", tag.Name, err)
		}
		if ok {
			out.Add(tag.Name, val)
		}
	}
	return out, nil
}

func marshalMap(v reflect.Value) (Tree, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("mpform: map keys must be strings")
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	out := make(Tree, 0, len(keys))
	for _, k := range keys {
		val, ok, err := marshalValue(v.MapIndex(k))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k.String(), err)
		}
		if ok {
			out.Add(k.String(), val)
		}
	}
	return out, nil
}

func marshalSlice(v reflect.Value) (Tree, error) {
	out := make(Tree, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, ok, err := marshalValue(v.Index(i))
		if err != nil {
			return nil, err
		}
		if ok {
			out.Add(strconv.Itoa(i), val)
		}
	}
	return out, nil
}

func asMarshaler(v reflect.Value) (Marshaler, bool) {
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	if !v.CanInterface() {
		return nil, false
	}
	m, ok := v.Interface().(Marshaler)
	return m, ok
}

func asStringer(v reflect.Value) (fmt.Stringer, bool) {
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s, true
		}
	}
	if !v.CanInterface() {
		return nil, false
	}
	s, ok := v.Interface().(fmt.Stringer)
	return s, ok
}

func scalarString(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits()), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	default:
		return "", fmt.Errorf("mpform: unsupported type: %v", v.Type())
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
