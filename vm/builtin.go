package vm

import "fmt"

// ---------------------------------------------------------------------------
// Builtin function table
// ---------------------------------------------------------------------------

// Builtin identifies one of the closed set of script functions. Call names
// are resolved to a Builtin once at compile time so the point loop never
// hashes strings.
type Builtin byte

const (
	// BuiltinNone is an unrecognized call name. It consumes its arguments
	// and yields 0.
	BuiltinNone Builtin = iota

	// Trigonometric
	BuiltinSin
	BuiltinCos
	BuiltinTan
	BuiltinAsin
	BuiltinAcos
	BuiltinAtan
	BuiltinAtan2

	// Algebraic
	BuiltinSqrt
	BuiltinAbs
	BuiltinPow
	BuiltinExp
	BuiltinLog
	BuiltinLog10
	BuiltinSqr
	BuiltinInvsqrt
	BuiltinSign

	// Rounding
	BuiltinFloor
	BuiltinCeil

	// Comparison and logic
	BuiltinMin
	BuiltinMax
	BuiltinIf
	BuiltinBand
	BuiltinBor
	BuiltinBnot
	BuiltinAbove
	BuiltinBelow
	BuiltinEqual

	// Utility
	BuiltinRand
	BuiltinSigmoid

	// Sparse scratch buffers (megabuf/gmegabuf)
	BuiltinMegabuf
	BuiltinGmegabuf
	BuiltinSetMegabuf
	BuiltinSetGmegabuf

	// Audio sampling
	BuiltinGetOsc
	BuiltinGetSpec
)

var builtinsByName = map[string]Builtin{
	"sin":         BuiltinSin,
	"cos":         BuiltinCos,
	"tan":         BuiltinTan,
	"asin":        BuiltinAsin,
	"acos":        BuiltinAcos,
	"atan":        BuiltinAtan,
	"atan2":       BuiltinAtan2,
	"sqrt":        BuiltinSqrt,
	"abs":         BuiltinAbs,
	"pow":         BuiltinPow,
	"exp":         BuiltinExp,
	"log":         BuiltinLog,
	"log10":       BuiltinLog10,
	"sqr":         BuiltinSqr,
	"invsqrt":     BuiltinInvsqrt,
	"sign":        BuiltinSign,
	"floor":       BuiltinFloor,
	"ceil":        BuiltinCeil,
	"min":         BuiltinMin,
	"max":         BuiltinMax,
	"if":          BuiltinIf,
	"band":        BuiltinBand,
	"bor":         BuiltinBor,
	"bnot":        BuiltinBnot,
	"above":       BuiltinAbove,
	"below":       BuiltinBelow,
	"equal":       BuiltinEqual,
	"rand":        BuiltinRand,
	"sigmoid":     BuiltinSigmoid,
	"megabuf":     BuiltinMegabuf,
	"gmegabuf":    BuiltinGmegabuf,
	"setmegabuf":  BuiltinSetMegabuf,
	"setgmegabuf": BuiltinSetGmegabuf,
	"getosc":      BuiltinGetOsc,
	"getspec":     BuiltinGetSpec,
}

var builtinNames = func() map[Builtin]string {
	m := make(map[Builtin]string, len(builtinsByName))
	for name, b := range builtinsByName {
		m[b] = name
	}
	return m
}()

// LookupBuiltin resolves a call name (lowercase) to its Builtin. The second
// result is false for unknown names.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinsByName[name]
	return b, ok
}

func (b Builtin) String() string {
	if b == BuiltinNone {
		return "none"
	}
	if name, ok := builtinNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Builtin(%d)", byte(b))
}
