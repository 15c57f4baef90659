package interpreter

import (
	"github.com/oarkflow/json"
)

// DumpAST converts a tree into plain maps and slices keyed the way the
// original tooling printed programs, with a "kind" tag on every node.
func DumpAST(node Node) map[string]any {
	switch n := node.(type) {
	case *Program:
		return map[string]any{"kind": "Program", "body": dumpBody(n.Body)}
	case *VarDeclaration:
		out := map[string]any{"kind": "VarDeclaration", "identifier": n.Name, "constant": n.Constant}
		if n.Value != nil {
			out["value"] = DumpAST(n.Value)
		}
		return out
	case *ArrayDeclaration:
		values := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			values[i] = DumpAST(e)
		}
		return map[string]any{"kind": "ArrDeclaration", "identifier": n.Name, "constant": n.Constant, "values": values}
	case *FnDeclaration:
		params := make([]any, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p
		}
		return map[string]any{"kind": "FnDeclaration", "name": n.Name, "parameters": params, "body": dumpBody(n.Body)}
	case *IfStatement:
		return map[string]any{"kind": "IfStatement", "condition": DumpAST(n.Condition), "body": dumpBody(n.Then), "other": dumpBody(n.Else)}
	case *ForStatement:
		return map[string]any{
			"kind":      "ForStatement",
			"init":      DumpAST(n.Init),
			"condition": DumpAST(n.Condition),
			"update":    DumpAST(n.Update),
			"body":      dumpBody(n.Body),
		}
	case *WhileStatement:
		return map[string]any{"kind": "WhileStatement", "condition": DumpAST(n.Condition), "body": dumpBody(n.Body)}
	case *AssignmentExpr:
		return map[string]any{"kind": "AssignmentExpr", "assignee": DumpAST(n.Assignee), "value": DumpAST(n.Value)}
	case *BinaryExpr:
		return map[string]any{"kind": "BinaryExpr", "left": DumpAST(n.Left), "right": DumpAST(n.Right), "operator": n.Operator}
	case *CallExpr:
		args := make([]any, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = DumpAST(a)
		}
		return map[string]any{"kind": "CallExpr", "caller": DumpAST(n.Callee), "args": args}
	case *MemberExpr:
		return map[string]any{"kind": "MemberExpr", "object": DumpAST(n.Object), "property": DumpAST(n.Property), "computed": n.Computed}
	case *Identifier:
		return map[string]any{"kind": "Identifier", "symbol": n.Name}
	case *NumericLiteral:
		return map[string]any{"kind": "NumericLiteral", "value": n.Value}
	case *StringLiteral:
		return map[string]any{"kind": "StringLiteral", "value": n.Value}
	case *ObjectLiteral:
		props := make([]any, len(n.Properties))
		for i, p := range n.Properties {
			prop := map[string]any{"kind": "Property", "key": p.Key}
			if p.Value != nil {
				prop["value"] = DumpAST(p.Value)
			}
			props[i] = prop
		}
		return map[string]any{"kind": "ObjectLiteral", "properties": props}
	}
	return map[string]any{"kind": "Unknown"}
}

func dumpBody(body []Statement) []any {
	out := make([]any, len(body))
	for i, s := range body {
		out[i] = DumpAST(s)
	}
	return out
}

func MarshalAST(node Node) ([]byte, error) {
	return json.Marshal(DumpAST(node))
}
