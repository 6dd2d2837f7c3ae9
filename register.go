package compose

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// DocumentFromStruct converts a struct of default values into a document.
// Field names come from the tagName struct tag (the field name when the tag is
// absent); "-" skips a field. Nested structs become nested mappings.
func DocumentFromStruct(structWithDefaults any, tagName string) (Mapping, error) {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("DocumentFromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("DocumentFromStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}
	if tagName == "" {
		tagName = DefaultTagName
	}

	nested := make(map[string]any)
	var errors []string
	registerFields(v, tagName, "", "", nested, &errors)

	if len(errors) > 0 {
		return nil, fmt.Errorf("failed to register %d field(s): %s", len(errors), strings.Join(errors, "; "))
	}

	return FromAny(nested).(Mapping), nil
}

// registerFields walks the struct recursively, storing each leaf field under its dotted path
func registerFields(v reflect.Value, tagName, pathPrefix, fieldPath string, nested map[string]any, errors *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		if !isValidKeySegment(key) {
			*errors = append(*errors, fmt.Sprintf("field %s%s: invalid key %q", fieldPath, field.Name, key))
			continue
		}

		currentPath := key
		if pathPrefix != "" {
			currentPath = pathPrefix + "." + key
		}

		// Types with their own text form are leaves even when they are structs
		if leaf, ok := leafValue(fieldValue); ok {
			setNestedValue(nested, currentPath, leaf)
			continue
		}

		isStruct := fieldValue.Kind() == reflect.Struct
		isPtrToStruct := fieldValue.Kind() == reflect.Ptr && fieldValue.Type().Elem().Kind() == reflect.Struct

		if isStruct || isPtrToStruct {
			nestedValue := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					// Nil pointers have no defaults to contribute
					continue
				}
				nestedValue = fieldValue.Elem()
			}
			registerFields(nestedValue, tagName, currentPath, fieldPath+field.Name+".", nested, errors)
			continue
		}

		setNestedValue(nested, currentPath, fieldValue.Interface())
	}
}

// leafValue returns the scalar form of durations and text-marshalable types
func leafValue(v reflect.Value) (any, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return nil, false
	}

	switch val := v.Interface().(type) {
	case time.Duration:
		return val.String(), true
	case time.Time:
		return val, true
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return nil, false
		}
		return string(text), true
	}
	return nil, false
}
