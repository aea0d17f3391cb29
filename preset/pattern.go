package preset

import "strings"

// ---------------------------------------------------------------------------
// Script-pattern heuristics
// ---------------------------------------------------------------------------
//
// Hand-rolled scanning predicates rather than regexes: the decoder runs over
// arbitrary binary noise and the checks here are substring/char-class work a
// regex engine would only slow down.

// knownCalls are function names whose presence (with an opening paren) marks
// a string as script content.
var knownCalls = [...]string{
	"sin(", "cos(", "tan(", "asin(", "acos(", "atan(", "atan2(",
	"sqrt(", "abs(", "pow(", "exp(", "log(", "sqr(", "invsqrt(", "sign(",
	"floor(", "ceil(", "min(", "max(",
	"if(", "band(", "bor(", "bnot(", "above(", "below(", "equal(",
	"rand(", "sigmoid(", "getosc(", "getspec(", "megabuf(", "gmegabuf(",
}

// ContainsScriptPattern reports whether s plausibly contains AVS script
// content: an identifier assignment, a known function call, or an
// identifier followed by an opening paren. Strings that are mostly
// punctuation or non-alphanumeric noise are rejected outright.
func ContainsScriptPattern(s string) bool {
	if len(s) < 3 {
		return false
	}
	if noiseRatioTooHigh(s) {
		return false
	}
	return hasAssignment(s) || hasKnownCall(s) || hasIdentCall(s)
}

// noiseRatioTooHigh rejects strings whose printable content is dominated by
// punctuation (decoded binary garbage commonly looks like this).
func noiseRatioTooHigh(s string) bool {
	alnum, printable := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7E {
			continue
		}
		printable++
		if isWordByte(c) {
			alnum++
		}
	}
	if printable == 0 {
		return true
	}
	return alnum*10 < printable*3 // under 30% word characters
}

// hasAssignment scans for identifier [spaces] '=' not followed by '='.
func hasAssignment(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			continue
		}
		j := i
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		k := j
		for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
			k++
		}
		if k < len(s) && s[k] == '=' && (k+1 >= len(s) || s[k+1] != '=') {
			return true
		}
		i = j
	}
	return false
}

func hasKnownCall(s string) bool {
	ls := strings.ToLower(s)
	for _, call := range knownCalls {
		if strings.Contains(ls, call) {
			return true
		}
	}
	return false
}

// hasIdentCall scans for identifier [spaces] '('.
func hasIdentCall(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			continue
		}
		j := i
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		k := j
		for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
			k++
		}
		if k < len(s) && s[k] == '(' {
			return true
		}
		i = j
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isIdentByte(c) || (c >= '0' && c <= '9')
}
