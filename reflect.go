package dataverb

import (
	"reflect"

	"github.com/pkg/errors"
)

// This file contains functions that bridge between frames and the
// caller's own struct types.

// FromStructs builds a frame from a slice of structs, one column per
// exported field. A `col` tag overrides the column name; a tag of "-"
// skips the field. Pointer fields contribute nil for nil pointers.
func FromStructs(v any) (*DataFrame, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, errors.Errorf("expected a slice of structs, got %T", v)
	}
	elem := rv.Type().Elem()
	for elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, errors.Errorf("expected a slice of structs, got %T", v)
	}

	type fieldCol struct {
		index int
		name  string
	}
	var fields []fieldCol
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("col"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields = append(fields, fieldCol{index: i, name: name})
	}

	df := &DataFrame{}
	for _, fc := range fields {
		values := make([]any, rv.Len())
		for r := 0; r < rv.Len(); r++ {
			row := rv.Index(r)
			for row.Kind() == reflect.Ptr {
				if row.IsNil() {
					break
				}
				row = row.Elem()
			}
			if row.Kind() != reflect.Struct {
				continue
			}
			fv := row.Field(fc.index)
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			values[r] = fv.Interface()
		}
		df.assign(fc.name, values)
	}
	return df, nil
}

// ToStructs fills a slice of structs from the frame, matching columns to
// exported fields the same way FromStructs does. dest must be a pointer
// to a slice of structs. nil cells leave the field at its zero value;
// a cell that cannot be converted to the field type is an error.
func ToStructs(df *DataFrame, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return errors.Errorf("expected a pointer to a slice of structs, got %T", dest)
	}
	sl := rv.Elem()
	elem := sl.Type().Elem()
	if elem.Kind() != reflect.Struct {
		return errors.Errorf("expected a pointer to a slice of structs, got %T", dest)
	}

	out := reflect.MakeSlice(sl.Type(), df.NRow(), df.NRow())
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("col"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		s, ok := df.Column(name)
		if !ok {
			continue
		}
		for r := 0; r < df.NRow(); r++ {
			cell := s.Values[r]
			if cell == nil {
				continue
			}
			cv := reflect.ValueOf(cell)
			fv := out.Index(r).Field(i)
			if !cv.Type().ConvertibleTo(fv.Type()) {
				return errors.Errorf("column %s: cannot convert %T to %s", name, cell, fv.Type())
			}
			fv.Set(cv.Convert(fv.Type()))
		}
	}
	sl.Set(out)
	return nil
}
