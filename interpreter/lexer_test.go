package interpreter

import (
	"testing"
)

func TestTokenizeDeclaration(t *testing.T) {
	tokens, err := Tokenize("granteth yonder x equivalethTo 5 withUtmostRespect")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expected := []struct {
		typ     TokenType
		literal string
	}{
		{TOKEN_LET, "granteth"},
		{TOKEN_YONDER, "yonder"},
		{TOKEN_IDENT, "x"},
		{TOKEN_ASSIGN, "="},
		{TOKEN_NUMBER, "5"},
		{TOKEN_TERMINATOR, ";"},
		{TOKEN_EOF, "EOF"},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Literal != exp.literal {
			t.Fatalf("token %d: expected %s %q, got %s %q", i, exp.typ, exp.literal, tokens[i].Type, tokens[i].Literal)
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{"addethPolitelyWith", TOKEN_BINARY_OP, "+"},
		{"subtractethPolitelyWith", TOKEN_BINARY_OP, "-"},
		{"multiplethPolitelyWith", TOKEN_BINARY_OP, "*"},
		{"dividethPolitelyWith", TOKEN_BINARY_OP, "/"},
		{"modulethPolitelyWith", TOKEN_BINARY_OP, "%"},
		{"`andeth`", TOKEN_AND, "&"},
		{"`either`", TOKEN_OR, "|"},
		{"`equivalethTo`", TOKEN_EQ, "=="},
		{"`notEquivalethTo`", TOKEN_NEQ, "!="},
		{"`greaterThanThou`", TOKEN_GT, ">"},
		{"`lessThanThou`", TOKEN_LT, "<"},
		{"`greaterThanEquivalethToThou`", TOKEN_GTE, ">="},
		{"`lessThanEquivalethToThou`", TOKEN_LTE, "<="},
		{"invokeThouComma", TOKEN_COMMA, ","},
		{"summonThyColon", TOKEN_COLON, ":"},
		{"fullethStop", TOKEN_DOT, "."},
		{"steadFast", TOKEN_CONST, "const"},
		{"proclaimethThyVerse", TOKEN_FUNCTION, "fn"},
		{"whilstThouConditionHolds", TOKEN_WHILE, "while"},
		{"forsoothCyclethThroughThyRange", TOKEN_FOR, "for"},
		{"providethThouFindestThyConditionTrue", TOKEN_IF, "if"},
		{"elsewiseRunnethThis", TOKEN_ELSE, "else"},
	}
	for _, tt := range tests {
		tokens, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", tt.input, err)
		}
		if tokens[0].Type != tt.typ || tokens[0].Literal != tt.literal {
			t.Fatalf("Tokenize(%q): expected %s %q, got %s %q", tt.input, tt.typ, tt.literal, tokens[0].Type, tokens[0].Literal)
		}
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`"a\nb\tc\qd"`)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Type != TOKEN_STRING {
		t.Fatalf("expected string token, got %s", tokens[0].Type)
	}
	if tokens[0].Literal != "a\nb\tcd" {
		t.Fatalf("unexpected literal %q", tokens[0].Literal)
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("granteth\n  yonder")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Fatalf("first token at %d:%d", tokens[0].Line, tokens[0].Column)
	}
	if tokens[1].Line != 2 || tokens[1].Column != 3 {
		t.Fatalf("second token at %d:%d", tokens[1].Line, tokens[1].Column)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []string{
		`"unterminated`,
		"`greaterThanThou",
		"x @ y",
		"5 # 3",
	}
	for _, input := range tests {
		_, err := Tokenize(input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		if code, _ := ErrorCodeOf(err); code != ErrCodeLex {
			t.Fatalf("expected %s for %q, got %v", ErrCodeLex, input, err)
		}
	}
}

func TestTokenizeEndsWithSingleEOF(t *testing.T) {
	for _, input := range []string{"", "   \n\t", "x"} {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", input, err)
		}
		eofs := 0
		for _, tok := range tokens {
			if tok.Type == TOKEN_EOF {
				eofs++
			}
		}
		if eofs != 1 || tokens[len(tokens)-1].Type != TOKEN_EOF {
			t.Fatalf("Tokenize(%q): expected a single trailing EOF, got %v", input, tokens)
		}
	}
}
