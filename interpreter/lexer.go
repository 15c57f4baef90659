package interpreter

import (
	"strings"
	"unicode"
)

// Lexer
type Lexer struct {
	input        []rune
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isWhitespace(l.ch) {
		l.readChar()
	}
}

func (l *Lexer) readWord() string {
	position := l.position
	for !l.atEnd() && isLetter(l.ch) {
		l.readChar()
	}
	return string(l.input[position:l.position])
}

func (l *Lexer) readNumber() string {
	position := l.position
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	return string(l.input[position:l.position])
}

func (l *Lexer) readString() (string, error) {
	line, col := l.line, l.column
	var out strings.Builder
	l.readChar() // opening quote
	for {
		if l.atEnd() {
			return "", lexError(line, col, "unterminated string literal")
		}
		if l.ch == '"' {
			l.readChar()
			return out.String(), nil
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEnd() {
				return "", lexError(line, col, "unterminated string literal")
			}
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			}
			l.readChar()
			continue
		}
		out.WriteRune(l.ch)
		l.readChar()
	}
}

func (l *Lexer) readBacktick() (string, error) {
	line, col := l.line, l.column
	position := l.position
	l.readChar()
	for !l.atEnd() && l.ch != '`' {
		l.readChar()
	}
	if l.atEnd() {
		return "", lexError(line, col, "unterminated backtick operator")
	}
	l.readChar()
	return string(l.input[position:l.position]), nil
}

// NextToken returns the next token. After the input is exhausted it keeps
// returning TOKEN_EOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()
	tok := Token{Line: l.line, Column: l.column}
	if l.atEnd() {
		tok.Type = TOKEN_EOF
		tok.Literal = "EOF"
		return tok, nil
	}

	switch l.ch {
	case '(':
		tok.Type, tok.Literal = TOKEN_LPAREN, "("
	case ')':
		tok.Type, tok.Literal = TOKEN_RPAREN, ")"
	case '{':
		tok.Type, tok.Literal = TOKEN_LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = TOKEN_RBRACE, "}"
	case '[':
		tok.Type, tok.Literal = TOKEN_LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = TOKEN_RBRACKET, "]"
	case '"':
		s, err := l.readString()
		if err != nil {
			return tok, err
		}
		tok.Type, tok.Literal = TOKEN_STRING, s
		return tok, nil
	case '`':
		word, err := l.readBacktick()
		if err != nil {
			return tok, err
		}
		tok.Type, tok.Literal = lookupIdent(word)
		return tok, nil
	default:
		if isLetter(l.ch) {
			tok.Type, tok.Literal = lookupIdent(l.readWord())
			return tok, nil
		}
		if isDigit(l.ch) {
			tok.Type, tok.Literal = TOKEN_NUMBER, l.readNumber()
			return tok, nil
		}
		return tok, lexError(tok.Line, tok.Column, "unrecognized character %q", l.ch)
	}
	l.readChar()
	return tok, nil
}

// Tokenize scans the whole source. The returned slice always ends with a
// single TOKEN_EOF.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			return tokens, nil
		}
	}
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// isLetter accepts any rune that has distinct upper and lower case forms.
func isLetter(ch rune) bool {
	return unicode.ToUpper(ch) != unicode.ToLower(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
