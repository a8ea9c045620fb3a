package collections

import (
	"fmt"
	"reflect"
)

// nilKey stands in for a nil item so it can live in a map
type nilKey struct{}

// refKey identifies a slice, map, func or chan by its type and data pointer.
// Empty slices backed by zero-size arrays may share an address, so two
// distinct empty slices of the same type can still compare equal.
type refKey struct {
	typ reflect.Type
	ptr uintptr
	len int
	cap int
}

// valueKey identifies a non-comparable struct or array by its rendered value
type valueKey struct {
	typ  reflect.Type
	repr string
}

// KeyOf returns a map key implementing item identity.
// Comparable values (pointers, strings, numbers, plain structs) are their own key.
// Slices, maps, funcs and chans are keyed by their underlying data pointer.
func KeyOf(item any) any {
	if item == nil {
		return nilKey{}
	}

	v := reflect.ValueOf(item)
	if hashable(v) {
		return item
	}

	switch v.Kind() {
	case reflect.Slice:
		return refKey{typ: v.Type(), ptr: v.Pointer(), len: v.Len(), cap: v.Cap()}
	case reflect.Map, reflect.Func, reflect.Chan:
		return refKey{typ: v.Type(), ptr: v.Pointer()}
	default:
		return valueKey{typ: v.Type(), repr: fmt.Sprintf("%#v", item)}
	}
}

// Equal reports whether two items have the same identity
func Equal(a, b any) bool {
	return KeyOf(a) == KeyOf(b)
}

// hashable reports whether v can be used as a map key without panicking.
// A struct type can be comparable while an interface field holds a slice.
func hashable(v reflect.Value) bool {
	if !v.Type().Comparable() {
		return false
	}
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !hashable(v.Field(i)) {
				return false
			}
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !hashable(v.Index(i)) {
				return false
			}
		}
	case reflect.Interface:
		if v.IsNil() {
			return true
		}
		return hashable(v.Elem())
	}
	return true
}
