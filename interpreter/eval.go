package interpreter

import (
	"context"
)

type evaluator struct {
	ctx   context.Context
	in    *Interpreter
	depth int
}

func (ev *evaluator) eval(node Node, env *Environment) (Object, error) {
	switch node := node.(type) {
	case *Program:
		return ev.evalBody(node.Body, env)

	case *NumericLiteral:
		return &Number{Value: node.Value}, nil

	case *StringLiteral:
		return &String{Value: node.Value}, nil

	case *Identifier:
		return env.Lookup(node.Name)

	case *ObjectLiteral:
		return ev.evalObjectLiteral(node, env)

	case *CallExpr:
		return ev.evalCall(node, env)

	case *MemberExpr:
		name, base, keys, err := ev.memberPath(node, env)
		if err != nil {
			return nil, err
		}
		if name != "" {
			return env.LookupObject(name, keys, nil)
		}
		return indexPath(base, keys, nil)

	case *BinaryExpr:
		left, err := ev.eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalBinaryExpr(node.Operator, left, right)

	case *AssignmentExpr:
		return ev.evalAssignment(node, env)

	case *VarDeclaration:
		return ev.evalVarDeclaration(node, env)

	case *ArrayDeclaration:
		elements := make([]Object, 0, len(node.Elements))
		for _, e := range node.Elements {
			val, err := ev.eval(e, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return env.Declare(node.Name, &Array{Elements: elements}, node.Constant)

	case *FnDeclaration:
		fn := &Function{Name: node.Name, Parameters: node.Parameters, Body: node.Body, Env: env}
		return env.Declare(node.Name, fn, true)

	case *IfStatement:
		cond, err := ev.eval(node.Condition, env)
		if err != nil {
			return nil, err
		}
		if isTrue(cond) {
			return ev.evalBody(node.Then, NewEnclosedEnvironment(env))
		}
		return ev.evalBody(node.Else, NewEnclosedEnvironment(env))

	case *WhileStatement:
		return ev.evalWhileStatement(node, env)

	case *ForStatement:
		return ev.evalForStatement(node, env)
	}

	return nil, runtimeError("cannot evaluate node of kind %T", node)
}

// evalBody runs statements in env itself and yields the last value.
func (ev *evaluator) evalBody(body []Statement, env *Environment) (Object, error) {
	var result Object = NULL
	for _, stmt := range body {
		val, err := ev.eval(stmt, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (ev *evaluator) evalVarDeclaration(node *VarDeclaration, env *Environment) (Object, error) {
	var val Object = NULL
	if node.Value != nil {
		v, err := ev.eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		val = v
	}
	return env.Declare(node.Name, val, node.Constant)
}

// Loops get one scope for the whole construct. The body runs directly in it,
// so a declaration inside the body fails on the second iteration.
func (ev *evaluator) evalWhileStatement(ws *WhileStatement, env *Environment) (Object, error) {
	scope := NewEnclosedEnvironment(env)
	for {
		if err := ev.ctx.Err(); err != nil {
			return nil, wrapContextErr(err)
		}
		cond, err := ev.eval(ws.Condition, scope)
		if err != nil {
			return nil, err
		}
		if !isTrue(cond) {
			return NULL, nil
		}
		if _, err := ev.evalBody(ws.Body, scope); err != nil {
			return nil, err
		}
	}
}

func (ev *evaluator) evalForStatement(fs *ForStatement, env *Environment) (Object, error) {
	scope := NewEnclosedEnvironment(env)
	if _, err := ev.evalVarDeclaration(fs.Init, scope); err != nil {
		return nil, err
	}
	for {
		if err := ev.ctx.Err(); err != nil {
			return nil, wrapContextErr(err)
		}
		cond, err := ev.eval(fs.Condition, scope)
		if err != nil {
			return nil, err
		}
		if !isTrue(cond) {
			return NULL, nil
		}
		if _, err := ev.evalBody(fs.Body, scope); err != nil {
			return nil, err
		}
		if _, err := ev.evalAssignment(fs.Update, scope); err != nil {
			return nil, err
		}
	}
}

func (ev *evaluator) evalObjectLiteral(node *ObjectLiteral, env *Environment) (Object, error) {
	hash := NewHash()
	for _, prop := range node.Properties {
		var (
			val Object
			err error
		)
		if prop.Value == nil {
			val, err = env.Lookup(prop.Key)
		} else {
			val, err = ev.eval(prop.Value, env)
		}
		if err != nil {
			return nil, err
		}
		hash.Set(prop.Key, val)
	}
	return hash, nil
}

func (ev *evaluator) evalAssignment(node *AssignmentExpr, env *Environment) (Object, error) {
	switch target := node.Assignee.(type) {
	case *Identifier:
		val, err := ev.eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		return env.Assign(target.Name, val)

	case *MemberExpr:
		val, err := ev.eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		name, base, keys, err := ev.memberPath(target, env)
		if err != nil {
			return nil, err
		}
		if name != "" {
			return env.LookupObject(name, keys, val)
		}
		return indexPath(base, keys, val)
	}
	return nil, runtimeError("invalid assignment target %s", node.Assignee.String())
}

// memberPath flattens a chain like a.b[c].d into its root and the keys to
// follow. name is set when the root is an identifier, otherwise base holds
// the evaluated root expression.
func (ev *evaluator) memberPath(me *MemberExpr, env *Environment) (name string, base Object, keys []Object, err error) {
	switch obj := me.Object.(type) {
	case *MemberExpr:
		name, base, keys, err = ev.memberPath(obj, env)
	case *Identifier:
		name = obj.Name
	default:
		base, err = ev.eval(obj, env)
	}
	if err != nil {
		return "", nil, nil, err
	}

	var key Object
	if me.Computed {
		key, err = ev.eval(me.Property, env)
		if err != nil {
			return "", nil, nil, err
		}
	} else {
		ident, ok := me.Property.(*Identifier)
		if !ok {
			return "", nil, nil, runtimeError("member property must be an identifier, got %s", me.Property.String())
		}
		key = &String{Value: ident.Name}
	}
	return name, base, append(keys, key), nil
}

// Callee first, then arguments left to right.
func (ev *evaluator) evalCall(node *CallExpr, env *Environment) (Object, error) {
	callee, err := ev.eval(node.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		val, err := ev.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return ev.applyFunction(callee, args, env)
}

func (ev *evaluator) applyFunction(fn Object, args []Object, env *Environment) (Object, error) {
	switch fn := fn.(type) {
	case *Builtin:
		result, err := fn.Fn(args, env)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return NULL, nil
		}
		return result, nil

	case *Function:
		if len(args) != len(fn.Parameters) {
			return nil, runtimeError("%s expects %d arguments, got %d", fn.Name, len(fn.Parameters), len(args))
		}
		leave, err := ev.enter(fn.Name)
		if err != nil {
			return nil, err
		}
		defer leave()
		scope := NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Parameters {
			if _, err := scope.Declare(param, args[i], false); err != nil {
				return nil, err
			}
		}
		return ev.evalBody(fn.Body, scope)
	}
	return nil, runtimeError("cannot call %s value %s", fn.Type(), fn.Inspect())
}

// enter checks the context and the call depth limit before a nested
// evaluation and returns the func that leaves it.
func (ev *evaluator) enter(what string) (func(), error) {
	if err := ev.ctx.Err(); err != nil {
		return nil, wrapContextErr(err)
	}
	if max := ev.in.config.MaxCallDepth; max > 0 && ev.depth >= max {
		return nil, runtimeError("call depth exceeded %d while calling %s", max, what)
	}
	ev.depth++
	return func() { ev.depth-- }, nil
}

// isTrue reports whether obj is the boolean true. Every other value,
// including non-boolean ones, is falsy for conditions.
func isTrue(obj Object) bool {
	b, ok := obj.(*Boolean)
	return ok && b.Value
}
