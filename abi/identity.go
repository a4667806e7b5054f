package abi

import "reflect"

type referenceKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// Identity returns a comparable key that is equal for the same shared
// container, whatever type implements it. Comparable implementations are their
// own key; map and slice implementations are keyed by their backing storage.
// It reports false for implementations without an identity, such as structs
// holding a slice.
func Identity(container any) (any, bool) {
	if container == nil {
		return nil, false
	}
	v := reflect.ValueOf(container)
	if v.Comparable() {
		return container, true
	}
	switch v.Kind() {
	case reflect.Map:
		return referenceKey{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		return referenceKey{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	default:
		return nil, false
	}
}
