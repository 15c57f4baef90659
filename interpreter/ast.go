package interpreter

import (
	"strconv"
	"strings"
)

type Node interface {
	String() string
}

// Statement is anything that may appear in a body. Every Expression is also
// a Statement.
type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Statement
	expressionNode()
}

type Program struct {
	Body []Statement
}

func (p *Program) String() string {
	return joinStatements(p.Body, "\n")
}

type VarDeclaration struct {
	Name     string
	Value    Expression // nil when declared without an initializer
	Constant bool
}

func (vd *VarDeclaration) statementNode() {}
func (vd *VarDeclaration) String() string {
	kw := "let"
	if vd.Constant {
		kw = "const"
	}
	if vd.Value == nil {
		return kw + " " + vd.Name + ";"
	}
	return kw + " " + vd.Name + " = " + vd.Value.String() + ";"
}

type ArrayDeclaration struct {
	Name     string
	Elements []Expression
	Constant bool
}

func (ad *ArrayDeclaration) statementNode() {}
func (ad *ArrayDeclaration) String() string {
	kw := "let"
	if ad.Constant {
		kw = "const"
	}
	elems := make([]string, len(ad.Elements))
	for i, e := range ad.Elements {
		elems[i] = e.String()
	}
	return kw + " " + ad.Name + " = [" + strings.Join(elems, ", ") + "];"
}

type FnDeclaration struct {
	Name       string
	Parameters []string
	Body       []Statement
}

func (fd *FnDeclaration) statementNode() {}
func (fd *FnDeclaration) String() string {
	return "fn " + fd.Name + "(" + strings.Join(fd.Parameters, ", ") + ") " + blockString(fd.Body)
}

// IfStatement holds an `else if` chain as a single nested IfStatement in Else.
type IfStatement struct {
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (is *IfStatement) statementNode() {}
func (is *IfStatement) String() string {
	out := "if (" + is.Condition.String() + ") " + blockString(is.Then)
	if len(is.Else) > 0 {
		out += " else " + blockString(is.Else)
	}
	return out
}

type ForStatement struct {
	Init      *VarDeclaration
	Condition Expression
	Update    *AssignmentExpr
	Body      []Statement
}

func (fs *ForStatement) statementNode() {}
func (fs *ForStatement) String() string {
	return "for (" + fs.Init.String() + " " + fs.Condition.String() + "; " + fs.Update.String() + ") " + blockString(fs.Body)
}

type WhileStatement struct {
	Condition Expression
	Body      []Statement
}

func (ws *WhileStatement) statementNode() {}
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + blockString(ws.Body)
}

type AssignmentExpr struct {
	Assignee Expression
	Value    Expression
}

func (ae *AssignmentExpr) statementNode()  {}
func (ae *AssignmentExpr) expressionNode() {}
func (ae *AssignmentExpr) String() string {
	return ae.Assignee.String() + " = " + ae.Value.String()
}

type BinaryExpr struct {
	Left     Expression
	Right    Expression
	Operator string
}

func (be *BinaryExpr) statementNode()  {}
func (be *BinaryExpr) expressionNode() {}
func (be *BinaryExpr) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

type CallExpr struct {
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpr) statementNode()  {}
func (ce *CallExpr) expressionNode() {}
func (ce *CallExpr) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// MemberExpr is `object.property` when Computed is false and
// `object[property]` when it is true.
type MemberExpr struct {
	Object   Expression
	Property Expression
	Computed bool
}

func (me *MemberExpr) statementNode()  {}
func (me *MemberExpr) expressionNode() {}
func (me *MemberExpr) String() string {
	if me.Computed {
		return me.Object.String() + "[" + me.Property.String() + "]"
	}
	return me.Object.String() + "." + me.Property.String()
}

type Identifier struct {
	Name string
}

func (i *Identifier) statementNode()  {}
func (i *Identifier) expressionNode() {}
func (i *Identifier) String() string  { return i.Name }

type NumericLiteral struct {
	Value float64
}

func (nl *NumericLiteral) statementNode()  {}
func (nl *NumericLiteral) expressionNode() {}
func (nl *NumericLiteral) String() string  { return formatNumber(nl.Value) }

type StringLiteral struct {
	Value string
}

func (sl *StringLiteral) statementNode()  {}
func (sl *StringLiteral) expressionNode() {}
func (sl *StringLiteral) String() string  { return strconv.Quote(sl.Value) }

// Property is a key of an ObjectLiteral. A nil Value is shorthand for the
// variable of the same name.
type Property struct {
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	Properties []Property
}

func (ol *ObjectLiteral) statementNode()  {}
func (ol *ObjectLiteral) expressionNode() {}
func (ol *ObjectLiteral) String() string {
	props := make([]string, len(ol.Properties))
	for i, p := range ol.Properties {
		if p.Value == nil {
			props[i] = p.Key
			continue
		}
		props[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(props, ", ") + "}"
}

func blockString(body []Statement) string {
	if len(body) == 0 {
		return "{}"
	}
	return "{ " + joinStatements(body, " ") + " }"
}

func joinStatements(body []Statement, sep string) string {
	parts := make([]string, len(body))
	for i, s := range body {
		parts[i] = s.String()
	}
	return strings.Join(parts, sep)
}
