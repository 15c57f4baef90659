package interpreter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// Exec runs script in a fresh interpreter with data declared in the root
// scope. Each entry of data becomes a mutable binding.
func Exec(ctx context.Context, script string, data map[string]any, opts ...Option) (Object, error) {
	in := New(opts...)
	if err := injectData(in.Globals(), data); err != nil {
		return nil, err
	}
	return in.Run(ctx, script)
}

// ExecFile runs the script in filename with imports resolved next to it.
func ExecFile(ctx context.Context, filename string, data map[string]any, opts ...Option) (Object, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithImportRoot(filepath.Dir(filename))}, opts...)
	return Exec(ctx, string(content), data, opts...)
}

func injectData(env *Environment, data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := env.Declare(k, ToObject(data[k]), false); err != nil {
			return err
		}
	}
	return nil
}

// ToObject converts a Go value into a runtime value. Integers become
// numbers, maps and structs become objects, unsupported kinds are rendered
// as strings. A pointer, map or slice reached again through itself becomes
// the string "[Circular]".
func ToObject(val any) Object {
	if val == nil {
		return NULL
	}
	return toObject(reflect.ValueOf(val), map[visit]bool{})
}

// visit identifies a reference-like Go value on the current conversion path.
type visit struct {
	typ reflect.Type
	ptr uintptr
}

func toObject(v reflect.Value, path map[visit]bool) Object {
	if !v.IsValid() {
		return NULL
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return NULL
	}
	if v.CanInterface() {
		if obj, ok := v.Interface().(Object); ok {
			return obj
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if !v.IsNil() && (v.Kind() != reflect.Slice || v.Len() > 0) {
			key := visit{typ: v.Type(), ptr: v.Pointer()}
			if path[key] {
				return &String{Value: circular}
			}
			path[key] = true
			defer delete(path, key)
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return NULL
		}
		return toObject(v.Elem(), path)
	case reflect.Bool:
		return nativeBoolToBooleanObject(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Number{Value: float64(v.Int())}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Number{Value: float64(v.Uint())}
	case reflect.Float32, reflect.Float64:
		return &Number{Value: v.Float()}
	case reflect.String:
		return &String{Value: v.String()}
	case reflect.Slice, reflect.Array:
		elements := make([]Object, v.Len())
		for i := 0; i < v.Len(); i++ {
			elements[i] = toObject(v.Index(i), path)
		}
		return &Array{Elements: elements}
	case reflect.Map:
		hash := NewHash()
		keys := make([]string, 0, v.Len())
		values := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			hash.Set(k, toObject(values[k], path))
		}
		return hash
	case reflect.Struct:
		hash := NewHash()
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, ok := field.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			hash.Set(name, toObject(v.Field(i), path))
		}
		return hash
	default:
		if !v.CanInterface() {
			return NULL
		}
		return &String{Value: fmt.Sprintf("%v", v.Interface())}
	}
}
