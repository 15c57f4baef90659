package interpreter

import (
	"strconv"
)

// Order of precedence, lowest first:
//
//	assignment
//	object literal
//	logical (& |)
//	additive and comparison (+ - == != > < >= <=)
//	multiplicative (* / %)
//	call / member
//	primary
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses source into a Program.
func Parse(source string) (*Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).ParseProgram()
}

func (p *Parser) ParseProgram() (*Program, error) {
	program := &Program{Body: []Statement{}}
	for !p.eof() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Body = append(program.Body, stmt)
	}
	return program, nil
}

func (p *Parser) eof() bool {
	return p.at().Type == TOKEN_EOF
}

func (p *Parser) at() Token {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) == 0 {
			return Token{Type: TOKEN_EOF, Literal: "EOF"}
		}
		last := p.tokens[len(p.tokens)-1]
		return Token{Type: TOKEN_EOF, Literal: "EOF", Line: last.Line, Column: last.Column}
	}
	return p.tokens[p.pos]
}

func (p *Parser) atType(types ...TokenType) bool {
	cur := p.at().Type
	for _, t := range types {
		if cur == t {
			return true
		}
	}
	return false
}

func (p *Parser) nextToken() Token {
	tok := p.at()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.at()
	if tok.Type != t {
		return tok, parseError(tok, "expected %s, found %s", t, describe(tok))
	}
	p.pos++
	return tok, nil
}

func describe(tok Token) string {
	switch tok.Type {
	case TOKEN_IDENT, TOKEN_NUMBER:
		return tok.Type.String() + " " + strconv.Quote(tok.Literal)
	case TOKEN_STRING:
		return "String " + strconv.Quote(tok.Literal)
	}
	return tok.Type.String()
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.at().Type {
	case TOKEN_LET, TOKEN_CONST:
		return p.parseVarDeclaration()
	case TOKEN_IF:
		return p.parseIfStatement()
	case TOKEN_FOR:
		return p.parseForStatement()
	case TOKEN_WHILE:
		return p.parseWhileStatement()
	case TOKEN_FUNCTION:
		return p.parseFnDeclaration()
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	// A terminator after a bare expression statement is optional.
	if p.atType(TOKEN_TERMINATOR) {
		p.nextToken()
	}
	return expr, nil
}

// [steadFast] granteth yonder <ident> [equivalethTo <expr>] withUtmostRespect
func (p *Parser) parseVarDeclaration() (Statement, error) {
	constant := p.nextToken().Type == TOKEN_CONST
	if constant && p.atType(TOKEN_LET) {
		p.nextToken()
	}
	if _, err := p.expect(TOKEN_YONDER); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TOKEN_IDENT)
	if err != nil {
		return nil, err
	}

	if p.atType(TOKEN_TERMINATOR) {
		if constant {
			return nil, parseError(nameTok, "constant %s must be given a value", nameTok.Literal)
		}
		p.nextToken()
		return &VarDeclaration{Name: nameTok.Literal}, nil
	}

	if _, err := p.expect(TOKEN_ASSIGN); err != nil {
		return nil, err
	}

	if p.atType(TOKEN_LBRACKET) {
		elements, err := p.parseArrayElements()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TOKEN_TERMINATOR); err != nil {
			return nil, err
		}
		return &ArrayDeclaration{Name: nameTok.Literal, Elements: elements, Constant: constant}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_TERMINATOR); err != nil {
		return nil, err
	}
	return &VarDeclaration{Name: nameTok.Literal, Value: value, Constant: constant}, nil
}

func (p *Parser) parseArrayElements() ([]Expression, error) {
	if _, err := p.expect(TOKEN_LBRACKET); err != nil {
		return nil, err
	}
	elements := []Expression{}
	if p.atType(TOKEN_RBRACKET) {
		p.nextToken()
		return elements, nil
	}
	for {
		el, err := p.parseAssignment(false)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if !p.atType(TOKEN_COMMA) {
			break
		}
		p.nextToken()
	}
	if _, err := p.expect(TOKEN_RBRACKET); err != nil {
		return nil, err
	}
	return elements, nil
}

func (p *Parser) parseFnDeclaration() (Statement, error) {
	p.nextToken()
	nameTok, err := p.expect(TOKEN_IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	params := []string{}
	if !p.atType(TOKEN_RPAREN) {
		for {
			param, err := p.expect(TOKEN_IDENT)
			if err != nil {
				return nil, err
			}
			params = append(params, param.Literal)
			if !p.atType(TOKEN_COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FnDeclaration{Name: nameTok.Literal, Parameters: params, Body: body}, nil
}

func (p *Parser) parseCondition() (Expression, error) {
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIfStatement() (*IfStatement, error) {
	p.nextToken()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStatement{Condition: cond, Then: then, Else: []Statement{}}
	if !p.atType(TOKEN_ELSE) {
		return stmt, nil
	}
	p.nextToken()
	if p.atType(TOKEN_IF) {
		nested, err := p.parseIfStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = []Statement{nested}
		return stmt, nil
	}
	if stmt.Else, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// for ( granteth yonder i equivalethTo 0 withUtmostRespect <cond> withUtmostRespect <assignment> ) { ... }
func (p *Parser) parseForStatement() (Statement, error) {
	p.nextToken()
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	if !p.atType(TOKEN_LET, TOKEN_CONST) {
		return nil, parseError(p.at(), "for-loop must start with a declaration, found %s", describe(p.at()))
	}
	initTok := p.at()
	decl, err := p.parseVarDeclaration()
	if err != nil {
		return nil, err
	}
	init, ok := decl.(*VarDeclaration)
	if !ok {
		return nil, parseError(initTok, "for-loop initializer must be a variable declaration")
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TOKEN_TERMINATOR); err != nil {
		return nil, err
	}

	updateTok := p.at()
	updateExpr, err := p.parseAssignment(false)
	if err != nil {
		return nil, err
	}
	update, ok := updateExpr.(*AssignmentExpr)
	if !ok {
		return nil, parseError(updateTok, "for-loop update must be an assignment")
	}
	if p.atType(TOKEN_TERMINATOR) {
		p.nextToken()
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStatement{Init: init, Condition: cond, Update: update, Body: body}, nil
}

func (p *Parser) parseWhileStatement() (Statement, error) {
	p.nextToken()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStatement{Condition: cond, Body: body}, nil
}

func (p *Parser) parseBlock() ([]Statement, error) {
	if _, err := p.expect(TOKEN_LBRACE); err != nil {
		return nil, err
	}
	body := []Statement{}
	for !p.eof() && !p.atType(TOKEN_RBRACE) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(TOKEN_RBRACE); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseExpression() (Expression, error) {
	return p.parseAssignment(true)
}

// parseAssignment is right-associative. At statement level the assignment
// must be closed by a terminator; for-loop updates and call arguments use the
// terminator-free path.
func (p *Parser) parseAssignment(requireTerminator bool) (Expression, error) {
	startTok := p.at()
	left, err := p.parseObjectLiteral()
	if err != nil {
		return nil, err
	}
	if !p.atType(TOKEN_ASSIGN) {
		return left, nil
	}
	switch left.(type) {
	case *Identifier, *MemberExpr:
	default:
		return nil, parseError(startTok, "invalid assignment target %s", left.String())
	}
	p.nextToken()
	right, err := p.parseAssignment(false)
	if err != nil {
		return nil, err
	}
	if requireTerminator {
		if _, err := p.expect(TOKEN_TERMINATOR); err != nil {
			return nil, err
		}
	}
	return &AssignmentExpr{Assignee: left, Value: right}, nil
}

func (p *Parser) parseObjectLiteral() (Expression, error) {
	if !p.atType(TOKEN_LBRACE) {
		return p.parseLogical()
	}
	p.nextToken()
	obj := &ObjectLiteral{Properties: []Property{}}
	for !p.eof() && !p.atType(TOKEN_RBRACE) {
		keyTok, err := p.expect(TOKEN_IDENT)
		if err != nil {
			return nil, err
		}
		if p.atType(TOKEN_COMMA) {
			p.nextToken()
			obj.Properties = append(obj.Properties, Property{Key: keyTok.Literal})
			continue
		}
		if p.atType(TOKEN_RBRACE) {
			obj.Properties = append(obj.Properties, Property{Key: keyTok.Literal})
			continue
		}
		if _, err := p.expect(TOKEN_COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, Property{Key: keyTok.Literal, Value: value})
		if !p.atType(TOKEN_RBRACE) {
			if _, err := p.expect(TOKEN_COMMA); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TOKEN_RBRACE); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) parseLogical() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.atType(TOKEN_AND, TOKEN_OR) {
		op := p.nextToken().Literal
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Right: right, Operator: op}
	}
	return left, nil
}

func (p *Parser) isAdditiveOperator() bool {
	tok := p.at()
	switch tok.Type {
	case TOKEN_BINARY_OP:
		return tok.Literal == "+" || tok.Literal == "-"
	case TOKEN_EQ, TOKEN_NEQ, TOKEN_GT, TOKEN_LT, TOKEN_GTE, TOKEN_LTE:
		return true
	}
	return false
}

func (p *Parser) isMultiplicativeOperator() bool {
	tok := p.at()
	return tok.Type == TOKEN_BINARY_OP && (tok.Literal == "*" || tok.Literal == "/" || tok.Literal == "%")
}

func (p *Parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isAdditiveOperator() {
		op := p.nextToken().Literal
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Right: right, Operator: op}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	for p.isMultiplicativeOperator() {
		op := p.nextToken().Literal
		right, err := p.parseCallMember()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Right: right, Operator: op}
	}
	return left, nil
}

// parseCallMember handles the postfix chain: member access with fullethStop
// or brackets, and calls, in any order (f(a)(b), obj.list[0], ...).
func (p *Parser) parseCallMember() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.at().Type {
		case TOKEN_DOT:
			p.nextToken()
			prop, err := p.expect(TOKEN_IDENT)
			if err != nil {
				return nil, parseError(prop, "fullethStop must be followed by an identifier, found %s", describe(prop))
			}
			expr = &MemberExpr{Object: expr, Property: &Identifier{Name: prop.Literal}}
		case TOKEN_LBRACKET:
			p.nextToken()
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TOKEN_RBRACKET); err != nil {
				return nil, err
			}
			expr = &MemberExpr{Object: expr, Property: prop, Computed: true}
		case TOKEN_LPAREN:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Callee: expr, Arguments: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expression, error) {
	if _, err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	args := []Expression{}
	if p.atType(TOKEN_RPAREN) {
		p.nextToken()
		return args, nil
	}
	for {
		arg, err := p.parseAssignment(false)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.atType(TOKEN_COMMA) {
			break
		}
		p.nextToken()
	}
	if _, err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.at()
	switch tok.Type {
	case TOKEN_IDENT:
		p.nextToken()
		return &Identifier{Name: tok.Literal}, nil

	case TOKEN_NUMBER:
		p.nextToken()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, parseError(tok, "could not parse %q as number", tok.Literal)
		}
		return &NumericLiteral{Value: value}, nil

	case TOKEN_STRING:
		p.nextToken()
		return &StringLiteral{Value: tok.Literal}, nil

	case TOKEN_LPAREN:
		p.nextToken()
		inner, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		expr, ok := inner.(Expression)
		if !ok {
			return nil, parseError(tok, "parentheses must enclose an expression")
		}
		if _, err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, parseError(tok, "unexpected token %s", describe(tok))
}
