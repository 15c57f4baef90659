package interpreter

import (
	"sort"
)

// Environment is one scope in the chain. The root has no outer scope.
type Environment struct {
	store     map[string]Object
	constants map[string]struct{}
	outer     *Environment
}

func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Object),
		constants: make(map[string]struct{}),
	}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

func (e *Environment) Parent() *Environment {
	return e.outer
}

// Declare binds name in this scope. Shadowing an outer binding is allowed,
// redeclaring one of this scope is not.
func (e *Environment) Declare(name string, val Object, constant bool) (Object, error) {
	if _, ok := e.store[name]; ok {
		return nil, runtimeError("cannot redeclare %s: it is already declared in this scope", name)
	}
	if constant {
		e.constants[name] = struct{}{}
	}
	e.store[name] = val
	return val, nil
}

func (e *Environment) Assign(name string, val Object) (Object, error) {
	env, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	if _, ok := env.constants[name]; ok {
		return nil, runtimeError("cannot reassign constant %s", name)
	}
	env.store[name] = val
	return val, nil
}

func (e *Environment) Lookup(name string) (Object, error) {
	env, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}
	return env.store[name], nil
}

// Resolve returns the nearest scope that declares name.
func (e *Environment) Resolve(name string) (*Environment, error) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			return env, nil
		}
	}
	return nil, runtimeError("cannot resolve %s: it is not declared", name)
}

func (e *Environment) IsConstant(name string) bool {
	env, err := e.Resolve(name)
	if err != nil {
		return false
	}
	_, ok := env.constants[name]
	return ok
}

// Names lists the bindings of this scope only, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupObject resolves name through the scope chain and then indexes into
// the container at each key in turn. When value is non-nil it is written at
// the final key and returned.
func (e *Environment) LookupObject(name string, keys []Object, value Object) (Object, error) {
	current, err := e.Lookup(name)
	if err != nil {
		return nil, err
	}
	return indexPath(current, keys, value)
}

func indexPath(current Object, keys []Object, value Object) (Object, error) {
	for i, key := range keys {
		if value != nil && i == len(keys)-1 {
			if err := setIndex(current, key, value); err != nil {
				return nil, err
			}
			return value, nil
		}
		next, err := getIndex(current, key)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func getIndex(container, key Object) (Object, error) {
	switch c := container.(type) {
	case *Hash:
		k, err := hashKey(key)
		if err != nil {
			return nil, err
		}
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		return NULL, nil
	case *Array:
		idx, err := arrayIndex(c, key)
		if err != nil {
			return nil, err
		}
		return c.Elements[idx], nil
	}
	return nil, runtimeError("cannot access member %s of %s value", key.Inspect(), container.Type())
}

func setIndex(container, key, value Object) error {
	switch c := container.(type) {
	case *Hash:
		k, err := hashKey(key)
		if err != nil {
			return err
		}
		c.Set(k, value)
		return nil
	case *Array:
		idx, err := arrayIndex(c, key)
		if err != nil {
			return err
		}
		c.Elements[idx] = value
		return nil
	}
	return runtimeError("cannot assign member %s of %s value", key.Inspect(), container.Type())
}

func hashKey(key Object) (string, error) {
	switch k := key.(type) {
	case *String:
		return k.Value, nil
	case *Number:
		return formatNumber(k.Value), nil
	}
	return "", runtimeError("%s value cannot be used as an object key", key.Type())
}

func arrayIndex(arr *Array, key Object) (int, error) {
	n, ok := key.(*Number)
	if !ok {
		return 0, runtimeError("array index must be a number, got %s", key.Type())
	}
	idx := int(n.Value)
	if float64(idx) != n.Value {
		return 0, runtimeError("array index must be a whole number, got %s", n.Inspect())
	}
	if idx < 0 || idx >= len(arr.Elements) {
		return 0, runtimeError("index %d is out of bounds for array of length %d", idx, len(arr.Elements))
	}
	return idx, nil
}
