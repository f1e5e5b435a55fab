package diaglog

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// sanitizeMaxDepth caps recursion when copying nested payloads.
const sanitizeMaxDepth = 16

// Sanitize returns a JSON-safe deep copy of v. Functions, channels,
// non-finite floats and other non-serializable values degrade to their
// string representation, circular references and over-deep nesting are
// broken with placeholders, and error values degrade to a {name, message}
// shape. Sanitize never panics, and sanitizing an already plain JSON value
// yields an equal value.
func Sanitize(v any) any {
	visited := make(map[uintptr]struct{})
	return sanitizeValue(v, visited, sanitizeMaxDepth)
}

func sanitizeValue(v any, visited map[uintptr]struct{}, depth int) any {
	if v == nil {
		return nil
	}

	if err, ok := v.(error); ok {
		return errorShape(v, err)
	}

	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}

	if depth <= 0 {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct,
			reflect.Pointer, reflect.Interface:
			// A cycle longer than the depth cap never revisits a pointer
			// before the cap hits, and fmt has no cycle detection of its
			// own for maps and slices. Containers get a placeholder.
			return depthPlaceholder
		}
		return fmt.Sprintf("%v", v)
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return v
	case reflect.Float32, reflect.Float64:
		// NaN and the infinities have no JSON representation.
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprintf("%v", f)
		}
		return v
	case reflect.Map:
		return sanitizeMap(rv, visited, depth)
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		return sanitizeSequence(rv, visited, depth)
	case reflect.Array:
		return sanitizeSequence(rv, visited, depth)
	case reflect.Struct:
		return sanitizeStruct(rv, visited, depth)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		if rv.Kind() == reflect.Pointer {
			ptr := rv.Pointer()
			if _, seen := visited[ptr]; seen {
				return circularPlaceholder
			}
			visited[ptr] = struct{}{}
			defer delete(visited, ptr)
		}
		return sanitizeValue(rv.Elem().Interface(), visited, depth-1)
	default:
		// Func, Chan, Complex, UnsafePointer and anything else that has no
		// JSON representation.
		return fmt.Sprintf("%v", v)
	}
}

const (
	circularPlaceholder = "<circular>"
	depthPlaceholder    = "<max depth>"
)

func sanitizeMap(rv reflect.Value, visited map[uintptr]struct{}, depth int) any {
	if rv.IsNil() {
		return nil
	}
	ptr := rv.Pointer()
	if _, seen := visited[ptr]; seen {
		return circularPlaceholder
	}
	visited[ptr] = struct{}{}
	defer delete(visited, ptr)

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := mapKey(iter.Key())
		out[key] = sanitizeValue(iter.Value().Interface(), visited, depth-1)
	}
	return out
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprintf("%v", k.Interface())
}

func sanitizeSequence(rv reflect.Value, visited map[uintptr]struct{}, depth int) any {
	if rv.Kind() == reflect.Slice {
		ptr := rv.Pointer()
		if _, seen := visited[ptr]; seen {
			return circularPlaceholder
		}
		visited[ptr] = struct{}{}
		defer delete(visited, ptr)
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = sanitizeValue(rv.Index(i).Interface(), visited, depth-1)
	}
	return out
}

func sanitizeStruct(rv reflect.Value, visited map[uintptr]struct{}, depth int) any {
	rt := rv.Type()
	out := make(map[string]any, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(&field)
		if name == "" {
			continue
		}
		out[name] = sanitizeValue(rv.Field(i).Interface(), visited, depth-1)
	}
	return out
}

// errorShape degrades an error value to the {name, message} form the
// collector payload expects. A stack is included when the error exposes one
// through the conventional StackTrace accessor.
func errorShape(v any, err error) map[string]any {
	shape := map[string]any{
		"name":    fmt.Sprintf("%T", v),
		"message": err.Error(),
	}
	if st, ok := v.(interface{ StackTrace() string }); ok {
		shape["stack"] = st.StackTrace()
	}
	return shape
}

// jsonFieldName determines the field name to use, preferring json tags.
// An empty return signals the field should be skipped.
func jsonFieldName(field *reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return field.Name
	}
	if idx := strings.Index(tag, ","); idx != -1 {
		if name := tag[:idx]; name != "" {
			return name
		}
		return field.Name
	}
	return tag
}
