// Package columns maps struct fields to column names through their `db` tags.
// It backs the row builders of the report parser, the SQL store and the CSV exporter,
// which all address record fields by the same column names.
package columns

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Column is one tagged struct field
type Column struct {
	Name  string
	Index []int
	Type  reflect.Type
}

var cache sync.Map // reflect.Type -> []Column

// Of returns the tagged columns of a struct type in declaration order.
// Fields without a `db` tag, or tagged "-", are skipped.
func Of(t reflect.Type) []Column {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := cache.Load(t); ok {
		return cached.([]Column)
	}

	var cols []Column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("db"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, Column{Name: tag, Index: f.Index, Type: f.Type})
	}

	actual, _ := cache.LoadOrStore(t, cols)
	return actual.([]Column)
}

// For returns the tagged columns of T
func For[T any]() []Column {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// Names returns the column names
func Names(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a column by name
func Lookup(t reflect.Type, name string) (Column, bool) {
	for _, c := range Of(t) {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Values returns the field values of v, a struct or pointer to struct, for the given columns
func Values(v any, cols []Column) []any {
	rv := reflect.Indirect(reflect.ValueOf(v))
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = rv.FieldByIndex(c.Index).Interface()
	}
	return values
}

// Pointers returns addresses of the fields of v, which must be a pointer to struct,
// suitable as sql.Rows.Scan destinations.
func Pointers(v any, cols []Column) ([]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("columns: expected pointer to struct, got %T", v)
	}
	rv = rv.Elem()
	ptrs := make([]any, len(cols))
	for i, c := range cols {
		ptrs[i] = rv.FieldByIndex(c.Index).Addr().Interface()
	}
	return ptrs, nil
}

// Set assigns value to the named field of the struct pointed to by v.
// A nil pointer value leaves the field untouched.
func Set(v reflect.Value, col Column, value any) error {
	if value == nil {
		return nil
	}
	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Pointer && val.IsNil() {
		return nil
	}
	field := v.FieldByIndex(col.Index)
	if !val.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("columns: cannot assign %s to %s (%s)", val.Type(), col.Name, field.Type())
	}
	field.Set(val)
	return nil
}
