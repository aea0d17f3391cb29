package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenNumber   TokenType = iota // 42, 3.14, .5
	TokenIdent                     // x, bass, getosc
	TokenOperator                  // + - * / % ^ = & | ! < > . == != <= >= && ||
	TokenLParen                    // (
	TokenRParen                    // )
	TokenComma                     // ,
)

var tokenTypeNames = map[TokenType]string{
	TokenNumber:   "NUMBER",
	TokenIdent:    "IDENT",
	TokenOperator: "OPERATOR",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenComma:    ",",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token is one lexical token. Val is populated for TokenNumber only.
type Token struct {
	Type TokenType
	Lit  string
	Val  float64
}

func (t Token) String() string {
	if t.Type == TokenNumber {
		return fmt.Sprintf("NUMBER(%g)", t.Val)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Lit)
}

// twoCharOps are matched greedily before single-character operators.
var twoCharOps = [...]string{"==", "!=", "<=", ">=", "&&", "||"}

// singleCharOps fall back after the two-character forms.
const singleCharOps = "+-*/%^=&|!<>."
