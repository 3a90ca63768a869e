package jscanpartial

import (
	"reflect"
)

// Reducer is implemented by values that apply actions to themselves.
// Composite reducers delegate to their children and never accept
// SetValue on themselves, scalar reducers accept only SetValue.
type Reducer interface {
	Reduce(Action) error
}

var tpReducer = reflect.TypeOf((*Reducer)(nil)).Elem()

// Reduce applies a to dst.
// dst must either implement Reducer or be a non-nil pointer
// to a value of a supported type.
func Reduce(dst any, a Action) error {
	if r, ok := dst.(Reducer); ok {
		return r.Reduce(a)
	}
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNilDest
	}
	return reduceValue(v.Elem(), a)
}

func reduceValue(v reflect.Value, a Action) error {
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(tpReducer) {
		return v.Addr().Interface().(Reducer).Reduce(a)
	}
	switch v.Kind() {
	case reflect.Interface:
		return reduceInterface(v, a)
	case reflect.Pointer:
		return reducePointer(v, a)
	case reflect.Struct:
		return reduceStruct(v, a)
	case reflect.Slice:
		return reduceSlice(v, a)
	case reflect.Array:
		return reduceArray(v, a)
	case reflect.Map:
		return reduceMap(v, a)
	}
	s, ok := a.(SetValue)
	if !ok {
		return ErrUnsupportedAction
	}
	return setScalar(v, s.Value)
}

// setScalar writes s into the scalar v using checked conversions.
func setScalar(v reflect.Value, s Scalar) error {
	if s.kind == KindNull {
		return ErrTypeMismatch
	}
	switch v.Kind() {
	case reflect.String:
		x, err := s.AsString()
		if err != nil {
			return err
		}
		v.SetString(x)
	case reflect.Bool:
		x, err := s.AsBool()
		if err != nil {
			return err
		}
		v.SetBool(x)
	case reflect.Int, reflect.Int64:
		x, err := ToInt[int64](s)
		if err != nil {
			return err
		}
		if v.OverflowInt(x) {
			return ErrNumericOverflow
		}
		v.SetInt(x)
	case reflect.Int8:
		x, err := ToInt[int8](s)
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int16:
		x, err := ToInt[int16](s)
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int32:
		x, err := ToInt[int32](s)
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		x, err := ToUint[uint64](s)
		if err != nil {
			return err
		}
		if v.OverflowUint(x) {
			return ErrNumericOverflow
		}
		v.SetUint(x)
	case reflect.Uint8:
		x, err := ToUint[uint8](s)
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint16:
		x, err := ToUint[uint16](s)
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint32:
		x, err := ToUint[uint32](s)
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Float32:
		x, err := ToFloat[float32](s)
		if err != nil {
			return err
		}
		v.SetFloat(float64(x))
	case reflect.Float64:
		x, err := ToFloat[float64](s)
		if err != nil {
			return err
		}
		v.SetFloat(x)
	default:
		return ErrUnsupportedAction
	}
	return nil
}

func reducePointer(v reflect.Value, a Action) error {
	if s, ok := a.(SetValue); ok && s.Value.kind == KindNull {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	if v.IsNil() {
		v.Set(reflect.New(v.Type().Elem()))
	}
	return reduceValue(v.Elem(), a)
}

func reduceStruct(v reflect.Value, a Action) error {
	switch a := a.(type) {
	case DelegateKeyed:
		fields := jsonFieldsOf(v.Type())
		i := fieldIndexByName(fields, a.Key)
		if i < 0 {
			return nil // Unknown fields are ignored.
		}
		return reduceValue(v.FieldByIndex(fields[i].index), a.Action)
	case CreateKeyedValue, CreateObject:
		return nil
	case SetValue:
		if a.Value.kind == KindNull {
			return ErrTypeMismatch
		}
	}
	return ErrUnsupportedAction
}

func reduceSlice(v reflect.Value, a Action) error {
	switch a := a.(type) {
	case CreateArray:
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
		return nil
	case CreateUnkeyedValue:
		v.Set(reflect.Append(v, reflect.Zero(v.Type().Elem())))
		return nil
	case DelegateUnkeyed:
		if a.Index < 0 || a.Index >= v.Len() {
			return nil
		}
		return reduceValue(v.Index(a.Index), a.Action)
	case SetValue:
		if a.Value.kind == KindNull {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
	}
	return ErrUnsupportedAction
}

func reduceArray(v reflect.Value, a Action) error {
	switch a := a.(type) {
	case CreateArray, CreateUnkeyedValue:
		return nil
	case DelegateUnkeyed:
		if a.Index < 0 || a.Index >= v.Len() {
			return nil
		}
		return reduceValue(v.Index(a.Index), a.Action)
	case SetValue:
		if a.Value.kind == KindNull {
			return ErrTypeMismatch
		}
	}
	return ErrUnsupportedAction
}

func reduceMap(v reflect.Value, a Action) error {
	t := v.Type()
	if t.Key().Kind() != reflect.String {
		return ErrUnsupportedAction
	}
	switch a := a.(type) {
	case CreateObject:
		if v.IsNil() {
			v.Set(reflect.MakeMap(t))
		}
		return nil
	case CreateKeyedValue:
		if v.IsNil() {
			v.Set(reflect.MakeMap(t))
		}
		v.SetMapIndex(reflect.ValueOf(a.Key).Convert(t.Key()), reflect.Zero(t.Elem()))
		return nil
	case DelegateKeyed:
		k := reflect.ValueOf(a.Key).Convert(t.Key())
		cur := v.MapIndex(k)
		if !cur.IsValid() {
			return nil
		}
		// Map values aren't addressable, reduce a copy and write it back.
		tmp := reflect.New(t.Elem()).Elem()
		tmp.Set(cur)
		if err := reduceValue(tmp, a.Action); err != nil {
			return err
		}
		v.SetMapIndex(k, tmp)
		return nil
	case SetValue:
		if a.Value.kind == KindNull {
			v.Set(reflect.Zero(t))
			return nil
		}
	}
	return ErrUnsupportedAction
}

func reduceInterface(v reflect.Value, a Action) error {
	if !v.IsNil() {
		if r, ok := v.Interface().(Reducer); ok {
			return r.Reduce(a)
		}
	}
	if v.NumMethod() != 0 {
		return ErrUnsupportedAction
	}
	next, err := reduceDynamic(v.Interface(), a)
	if err != nil {
		return err
	}
	if next == nil {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	v.Set(reflect.ValueOf(next))
	return nil
}

// reduceDynamic applies a to a value of the dynamic JSON model
// (map[string]any, []any, string, float64, bool and nil)
// and returns the updated value.
func reduceDynamic(cur any, a Action) (any, error) {
	switch a := a.(type) {
	case SetValue:
		return dynamicScalar(a.Value)
	case CreateObject:
		if m, ok := cur.(map[string]any); ok {
			return m, nil
		}
		return map[string]any{}, nil
	case CreateArray:
		if s, ok := cur.([]any); ok {
			return s, nil
		}
		return []any{}, nil
	case CreateKeyedValue:
		m, ok := cur.(map[string]any)
		if !ok {
			if cur != nil {
				return cur, ErrUnsupportedAction
			}
			m = map[string]any{}
		}
		m[a.Key] = nil
		return m, nil
	case CreateUnkeyedValue:
		s, ok := cur.([]any)
		if !ok && cur != nil {
			return cur, ErrUnsupportedAction
		}
		return append(s, nil), nil
	case DelegateKeyed:
		m, ok := cur.(map[string]any)
		if !ok {
			return cur, ErrUnsupportedAction
		}
		x, ok := m[a.Key]
		if !ok {
			return m, nil
		}
		x, err := reduceDynamic(x, a.Action)
		if err != nil {
			return m, err
		}
		m[a.Key] = x
		return m, nil
	case DelegateUnkeyed:
		s, ok := cur.([]any)
		if !ok {
			return cur, ErrUnsupportedAction
		}
		if a.Index < 0 || a.Index >= len(s) {
			return s, nil
		}
		x, err := reduceDynamic(s[a.Index], a.Action)
		if err != nil {
			return s, err
		}
		s[a.Index] = x
		return s, nil
	}
	return cur, ErrUnsupportedAction
}

// dynamicScalar converts s to its dynamic representation.
// All numbers are represented as float64.
func dynamicScalar(s Scalar) (any, error) {
	switch s.kind {
	case KindString:
		return s.str, nil
	case KindBool:
		return s.lo == 1, nil
	case KindNull:
		return nil, nil
	}
	f, err := ToFloat[float64](s)
	if err != nil {
		return nil, err
	}
	return f, nil
}
