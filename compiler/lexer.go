package compiler

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Lexer: expression string -> token stream
// ---------------------------------------------------------------------------

// Tokenize turns an expression string into a flat token stream. It never
// fails: unrecognized bytes are dropped as noise, which is what keeps the
// engine alive on garbled preset content. Whitespace separates tokens and is
// never emitted.
func Tokenize(src string) []Token {
	var toks []Token
	var buf []byte

	flush := func() {
		if len(buf) == 0 {
			return
		}
		lit := string(buf)
		buf = buf[:0]
		if isNumericStart(lit[0]) {
			if v, err := strconv.ParseFloat(lit, 64); err == nil {
				toks = append(toks, Token{Type: TokenNumber, Lit: lit, Val: v})
			}
			// an unparseable digit run ("1.2.3") is noise
			return
		}
		toks = append(toks, Token{Type: TokenIdent, Lit: lit})
	}

	i := 0
	for i < len(src) {
		c := src[i]

		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			flush()
			i++
			continue
		}

		// Greedy two-character operators.
		if i+1 < len(src) {
			pair := src[i : i+2]
			if isTwoCharOp(pair) {
				flush()
				toks = append(toks, Token{Type: TokenOperator, Lit: pair})
				i += 2
				continue
			}
		}

		switch {
		case c == '(':
			flush()
			toks = append(toks, Token{Type: TokenLParen, Lit: "("})
			i++
		case c == ')':
			flush()
			toks = append(toks, Token{Type: TokenRParen, Lit: ")"})
			i++
		case c == ',':
			flush()
			toks = append(toks, Token{Type: TokenComma, Lit: ","})
			i++
		case c == '.':
			// A dot belongs to a number when it extends a digit run or
			// starts one (".5"); otherwise it is the legacy dot operator.
			if bufIsNumeric(buf) || (len(buf) == 0 && i+1 < len(src) && isDigit(src[i+1])) {
				buf = append(buf, c)
			} else {
				flush()
				toks = append(toks, Token{Type: TokenOperator, Lit: "."})
			}
			i++
		case strings.IndexByte(singleCharOps, c) >= 0:
			flush()
			toks = append(toks, Token{Type: TokenOperator, Lit: string(c)})
			i++
		case isIdentChar(c):
			buf = append(buf, c)
			i++
		default:
			// Anything else (control bytes, high-bit noise) is dropped.
			i++
		}
	}
	flush()
	return toks
}

func isTwoCharOp(s string) bool {
	for _, op := range twoCharOps {
		if s == op {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNumericStart(c byte) bool {
	return isDigit(c) || c == '.'
}

func bufIsNumeric(buf []byte) bool {
	return len(buf) > 0 && isNumericStart(buf[0])
}
