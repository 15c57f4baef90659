package interpreter

import "fmt"

// Token types
type TokenType int

const (
	// Literals
	TOKEN_NUMBER TokenType = iota
	TOKEN_STRING
	TOKEN_IDENT

	// Keywords
	TOKEN_LET
	TOKEN_YONDER
	TOKEN_CONST
	TOKEN_IF
	TOKEN_ELSE
	TOKEN_FOR
	TOKEN_WHILE
	TOKEN_FUNCTION

	// Operators
	TOKEN_BINARY_OP
	TOKEN_ASSIGN
	TOKEN_AND
	TOKEN_OR
	TOKEN_EQ
	TOKEN_NEQ
	TOKEN_GT
	TOKEN_LT
	TOKEN_GTE
	TOKEN_LTE

	// Delimiters
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LBRACKET
	TOKEN_RBRACKET
	TOKEN_COMMA
	TOKEN_COLON
	TOKEN_DOT
	TOKEN_TERMINATOR

	TOKEN_EOF
)

var tokenNames = map[TokenType]string{
	TOKEN_NUMBER:     "Number",
	TOKEN_STRING:     "String",
	TOKEN_IDENT:      "Identifier",
	TOKEN_LET:        "granteth",
	TOKEN_YONDER:     "yonder",
	TOKEN_CONST:      "steadFast",
	TOKEN_IF:         "providethThouFindestThyConditionTrue",
	TOKEN_ELSE:       "elsewiseRunnethThis",
	TOKEN_FOR:        "forsoothCyclethThroughThyRange",
	TOKEN_WHILE:      "whilstThouConditionHolds",
	TOKEN_FUNCTION:   "proclaimethThyVerse",
	TOKEN_BINARY_OP:  "BinaryOperator",
	TOKEN_ASSIGN:     "equivalethTo",
	TOKEN_AND:        "`andeth`",
	TOKEN_OR:         "`either`",
	TOKEN_EQ:         "`equivalethTo`",
	TOKEN_NEQ:        "`notEquivalethTo`",
	TOKEN_GT:         "`greaterThanThou`",
	TOKEN_LT:         "`lessThanThou`",
	TOKEN_GTE:        "`greaterThanEquivalethToThou`",
	TOKEN_LTE:        "`lessThanEquivalethToThou`",
	TOKEN_LPAREN:     "(",
	TOKEN_RPAREN:     ")",
	TOKEN_LBRACE:     "{",
	TOKEN_RBRACE:     "}",
	TOKEN_LBRACKET:   "[",
	TOKEN_RBRACKET:   "]",
	TOKEN_COMMA:      "invokeThouComma",
	TOKEN_COLON:      "summonThyColon",
	TOKEN_DOT:        "fullethStop",
	TOKEN_TERMINATOR: "withUtmostRespect",
	TOKEN_EOF:        "EOF",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Type, t.Literal)
}

type keyword struct {
	typ       TokenType
	canonical string
}

// keywords maps every reserved spelling, including the backtick-wrapped
// comparison operators, to its token and canonical operator text.
var keywords = map[string]keyword{
	"granteth":                             {TOKEN_LET, "granteth"},
	"yonder":                               {TOKEN_YONDER, "yonder"},
	"steadFast":                            {TOKEN_CONST, "const"},
	"equivalethTo":                         {TOKEN_ASSIGN, "="},
	"withUtmostRespect":                    {TOKEN_TERMINATOR, ";"},
	"invokeThouComma":                      {TOKEN_COMMA, ","},
	"summonThyColon":                       {TOKEN_COLON, ":"},
	"fullethStop":                          {TOKEN_DOT, "."},
	"addethPolitelyWith":                   {TOKEN_BINARY_OP, "+"},
	"subtractethPolitelyWith":              {TOKEN_BINARY_OP, "-"},
	"multiplethPolitelyWith":               {TOKEN_BINARY_OP, "*"},
	"dividethPolitelyWith":                 {TOKEN_BINARY_OP, "/"},
	"modulethPolitelyWith":                 {TOKEN_BINARY_OP, "%"},
	"providethThouFindestThyConditionTrue": {TOKEN_IF, "if"},
	"elsewiseRunnethThis":                  {TOKEN_ELSE, "else"},
	"forsoothCyclethThroughThyRange":       {TOKEN_FOR, "for"},
	"whilstThouConditionHolds":             {TOKEN_WHILE, "while"},
	"proclaimethThyVerse":                  {TOKEN_FUNCTION, "fn"},
	"`andeth`":                             {TOKEN_AND, "&"},
	"`either`":                             {TOKEN_OR, "|"},
	"`equivalethTo`":                       {TOKEN_EQ, "=="},
	"`notEquivalethTo`":                    {TOKEN_NEQ, "!="},
	"`greaterThanThou`":                    {TOKEN_GT, ">"},
	"`lessThanThou`":                       {TOKEN_LT, "<"},
	"`greaterThanEquivalethToThou`":        {TOKEN_GTE, ">="},
	"`lessThanEquivalethToThou`":           {TOKEN_LTE, "<="},
}

func lookupIdent(ident string) (TokenType, string) {
	if kw, ok := keywords[ident]; ok {
		return kw.typ, kw.canonical
	}
	return TOKEN_IDENT, ident
}
