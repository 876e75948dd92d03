package util

import (
	"fmt"
	"reflect"
)

// IsStructInitialized reports the first exported pointer, interface, map, slice or func field
// of the struct s points to that is still nil. Fields tagged `wire:"-"` are skipped since
// they are set up after wire finished.
func IsStructInitialized(s any) error {
	v := reflect.ValueOf(s)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("struct is nil")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("wire") == "-" {
			continue
		}

		f := v.Field(i)
		switch f.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if f.IsNil() {
				return fmt.Errorf("struct field %q is not initialized", field.Name)
			}
		default:
		}
	}

	return nil
}
