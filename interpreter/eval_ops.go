package interpreter

import (
	"math"
)

func evalBinaryExpr(operator string, left, right Object) (Object, error) {
	switch operator {
	case "&", "|":
		return evalLogicalExpr(operator, left, right), nil
	case "==":
		eq, err := objectsEqual(left, right)
		if err != nil {
			return nil, err
		}
		return nativeBoolToBooleanObject(eq), nil
	case "!=":
		eq, err := objectsEqual(left, right)
		if err != nil {
			return nil, err
		}
		return nativeBoolToBooleanObject(!eq), nil
	}

	switch {
	case operator == "+" && left.Type() == ARRAY_OBJ && right.Type() == NUMBER_OBJ:
		arr := left.(*Array)
		idx, err := arrayIndex(arr, right)
		if err != nil {
			return nil, err
		}
		return arr.Elements[idx], nil
	case left.Type() == NULL_OBJ || right.Type() == NULL_OBJ:
		return nil, runtimeError("cannot apply %s to a null operand", operator)
	case left.Type() == NUMBER_OBJ && right.Type() == NUMBER_OBJ:
		return evalNumberInfixExpr(operator, left.(*Number).Value, right.(*Number).Value)
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		if operator == "+" {
			return &String{Value: left.(*String).Value + right.(*String).Value}, nil
		}
		return nil, runtimeError("unknown operator: string %s string", operator)
	}
	return nil, runtimeError("type mismatch: %s %s %s", left.Type(), operator, right.Type())
}

// Non-boolean operands make the whole expression false.
func evalLogicalExpr(operator string, left, right Object) Object {
	l, lok := left.(*Boolean)
	r, rok := right.(*Boolean)
	if !lok || !rok {
		return FALSE
	}
	if operator == "&" {
		return nativeBoolToBooleanObject(l.Value && r.Value)
	}
	return nativeBoolToBooleanObject(l.Value || r.Value)
}

func evalNumberInfixExpr(operator string, l, r float64) (Object, error) {
	switch operator {
	case "+":
		return &Number{Value: l + r}, nil
	case "-":
		return &Number{Value: l - r}, nil
	case "*":
		return &Number{Value: l * r}, nil
	case "/":
		if r == 0 {
			return nil, runtimeError("division by zero")
		}
		return &Number{Value: l / r}, nil
	case "%":
		if r == 0 {
			return nil, runtimeError("modulo by zero")
		}
		return &Number{Value: math.Mod(l, r)}, nil
	case ">":
		return nativeBoolToBooleanObject(l > r), nil
	case "<":
		return nativeBoolToBooleanObject(l < r), nil
	case ">=":
		return nativeBoolToBooleanObject(l >= r), nil
	case "<=":
		return nativeBoolToBooleanObject(l <= r), nil
	}
	return nil, runtimeError("unknown operator: number %s number", operator)
}

// objectsEqual compares values of the same kind. Containers and functions
// compare by identity. A null compared with anything else is unequal; other
// kind mismatches are errors.
func objectsEqual(left, right Object) (bool, error) {
	if left.Type() != right.Type() {
		if left.Type() == NULL_OBJ || right.Type() == NULL_OBJ {
			return false, nil
		}
		return false, runtimeError("cannot compare %s with %s", left.Type(), right.Type())
	}
	switch l := left.(type) {
	case *Null:
		return true, nil
	case *Number:
		return l.Value == right.(*Number).Value, nil
	case *Boolean:
		return l.Value == right.(*Boolean).Value, nil
	case *String:
		return l.Value == right.(*String).Value, nil
	}
	return left == right, nil
}
