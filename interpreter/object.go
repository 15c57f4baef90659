package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ObjectType int

const (
	NULL_OBJ ObjectType = iota
	NUMBER_OBJ
	BOOLEAN_OBJ
	STRING_OBJ
	ARRAY_OBJ
	HASH_OBJ
	FUNCTION_OBJ
	BUILTIN_OBJ
)

func (ot ObjectType) String() string {
	switch ot {
	case NULL_OBJ:
		return "null"
	case NUMBER_OBJ:
		return "number"
	case BOOLEAN_OBJ:
		return "boolean"
	case STRING_OBJ:
		return "string"
	case ARRAY_OBJ:
		return "array"
	case HASH_OBJ:
		return "object"
	case FUNCTION_OBJ:
		return "function"
	case BUILTIN_OBJ:
		return "native-fn"
	default:
		return "unknown"
	}
}

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return formatNumber(n.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	return inspect(a, map[Object]bool{})
}

// Hash is the language's object value. Keys keeps insertion order.
type Hash struct {
	Keys  []string
	Pairs map[string]Object
}

func NewHash() *Hash {
	return &Hash{Pairs: make(map[string]Object)}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string {
	return inspect(h, map[Object]bool{})
}

// circular replaces a container that is already being rendered further up
// the same path.
const circular = "[Circular]"

// inspect renders obj, tracking the arrays and hashes on the current path.
// Shared but acyclic references are rendered in full.
func inspect(obj Object, path map[Object]bool) string {
	switch o := obj.(type) {
	case *Array:
		if path[o] {
			return circular
		}
		path[o] = true
		defer delete(path, o)
		var out strings.Builder
		out.WriteString("[")
		for i, e := range o.Elements {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(inspect(e, path))
		}
		out.WriteString("]")
		return out.String()
	case *Hash:
		if path[o] {
			return circular
		}
		path[o] = true
		defer delete(path, o)
		var out strings.Builder
		out.WriteString("{")
		for i, k := range o.Keys {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(k)
			out.WriteString(": ")
			out.WriteString(inspect(o.Pairs[k], path))
		}
		out.WriteString("}")
		return out.String()
	case nil:
		return "null"
	default:
		return obj.Inspect()
	}
}

func (h *Hash) Get(key string) (Object, bool) {
	v, ok := h.Pairs[key]
	return v, ok
}

func (h *Hash) Set(key string, val Object) {
	if _, ok := h.Pairs[key]; !ok {
		h.Keys = append(h.Keys, key)
	}
	h.Pairs[key] = val
}

type Function struct {
	Name       string
	Parameters []string
	Body       []Statement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(f.Parameters, ", "))
}

// BuiltinFunction receives the evaluated arguments and the calling scope.
type BuiltinFunction func(args []Object, env *Environment) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "native fn " + b.Name }

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NULL  = &Null{}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToNative converts a runtime value into plain Go values suitable for JSON
// encoding. Functions are rendered by their Inspect text and a container
// nested inside itself becomes the string "[Circular]".
func ToNative(obj Object) any {
	return toNative(obj, map[Object]bool{})
}

func toNative(obj Object, path map[Object]bool) any {
	switch o := obj.(type) {
	case nil, *Null:
		return nil
	case *Number:
		return o.Value
	case *Boolean:
		return o.Value
	case *String:
		return o.Value
	case *Array:
		if path[o] {
			return circular
		}
		path[o] = true
		defer delete(path, o)
		out := make([]any, len(o.Elements))
		for i, e := range o.Elements {
			out[i] = toNative(e, path)
		}
		return out
	case *Hash:
		if path[o] {
			return circular
		}
		path[o] = true
		defer delete(path, o)
		out := make(map[string]any, len(o.Keys))
		for _, k := range o.Keys {
			out[k] = toNative(o.Pairs[k], path)
		}
		return out
	default:
		return obj.Inspect()
	}
}
