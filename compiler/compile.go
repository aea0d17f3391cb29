package compiler

import (
	"strings"

	"github.com/phoenixvis/avsengine/vm"
)

// ---------------------------------------------------------------------------
// Expression compiler: shunting-yard -> RPN program
// ---------------------------------------------------------------------------

// Operator precedence, lowest to highest. Assignment is handled separately
// (it binds a variable name, not two values) but shares level 1.
func precedence(op string) int {
	switch op {
	case "=":
		return 1
	case "||", "&&":
		return 2
	case "|", "&":
		return 3
	case "<", "<=", ">", ">=", "==", "!=":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%", ".":
		return 6
	case "^":
		return 7
	}
	return 0
}

var binOpsByName = map[string]vm.BinOp{
	"+": vm.BinAdd, "-": vm.BinSub, "*": vm.BinMul, "/": vm.BinDiv,
	"%": vm.BinMod, "^": vm.BinPow, "&": vm.BinAnd, "|": vm.BinOr,
	"&&": vm.BinLogAnd, "||": vm.BinLogOr, "<": vm.BinLT, ">": vm.BinGT,
	"<=": vm.BinLE, ">=": vm.BinGE, "==": vm.BinEQ, "!=": vm.BinNE,
	".": vm.BinNop,
}

type pendingKind byte

const (
	pendBinary pendingKind = iota
	pendUnary
	pendAssign
	pendGroup
)

// pending is one operator-stack entry. A pendGroup entry is an open paren;
// when call is set it doubles as the function call that opened it.
type pending struct {
	kind  pendingKind
	prec  int
	right bool

	bin  vm.BinOp
	un   vm.UnOp
	name string // assignment target, or call name

	call bool
	fn   vm.Builtin
	args int // completed (comma-terminated) arguments
	mark int // output length at group open / last comma, for operand detection
}

type exprCompiler struct {
	out []vm.Instr
	ops []pending
}

// Compile converts a token stream into an RPN program using shunting-yard.
// It never fails: unmatched parentheses are tolerated by draining whatever
// remains on the operator stack at end of input, and a stray `=` with no
// assignable target is dropped.
func Compile(tokens []Token) *vm.Program {
	c := &exprCompiler{}
	prevValue := false // previous token completed an operand

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case TokenNumber:
			c.out = append(c.out, vm.Instr{Op: vm.OpPushConst, Const: tok.Val})
			prevValue = true

		case TokenIdent:
			if i+1 < len(tokens) && tokens[i+1].Type == TokenLParen {
				fn, _ := vm.LookupBuiltin(strings.ToLower(tok.Lit))
				c.ops = append(c.ops, pending{
					kind: pendGroup, call: true, fn: fn, name: tok.Lit,
					mark: len(c.out),
				})
				i++ // consume the '('
				prevValue = false
			} else {
				c.out = append(c.out, vm.Instr{Op: vm.OpPushVar, Name: tok.Lit})
				prevValue = true
			}

		case TokenLParen:
			c.ops = append(c.ops, pending{kind: pendGroup, mark: len(c.out)})
			prevValue = false

		case TokenRParen:
			c.closeGroup()
			prevValue = true

		case TokenComma:
			c.comma()
			prevValue = false

		case TokenOperator:
			c.operator(tok.Lit, prevValue)
			prevValue = false
		}
	}

	c.drainAll()
	return &vm.Program{Code: c.out}
}

// CompileSource tokenizes and compiles a whole fragment. Statements are
// separated by `;` or newlines and their programs concatenated; evaluating
// the result yields the last statement's value. `//` comments are stripped.
func CompileSource(src string) *vm.Program {
	var code []vm.Instr
	for _, stmt := range splitStatements(src) {
		toks := Tokenize(stmt)
		if len(toks) == 0 {
			continue
		}
		p := Compile(toks)
		code = append(code, p.Code...)
	}
	return &vm.Program{Code: code}
}

func splitStatements(src string) []string {
	var stmts []string
	for _, line := range strings.Split(src, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		for _, stmt := range strings.Split(line, ";") {
			if strings.TrimSpace(stmt) != "" {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts
}

func (c *exprCompiler) operator(op string, prevValue bool) {
	switch {
	case op == "=":
		// Pop anything that binds tighter, then capture the assignment
		// target from the output queue. `x=5` must already have emitted
		// PushVar x; anything else means the `=` is noise.
		c.popWhile(1, true)
		if n := len(c.out); n > 0 && c.out[n-1].Op == vm.OpPushVar {
			name := c.out[n-1].Name
			c.out = c.out[:n-1]
			c.ops = append(c.ops, pending{kind: pendAssign, prec: 1, right: true, name: name})
		}

	case op == "!" || (!prevValue && (op == "-" || op == "+")):
		un := vm.UnNot
		switch op {
		case "-":
			un = vm.UnNeg
		case "+":
			un = vm.UnPlus
		}
		c.ops = append(c.ops, pending{kind: pendUnary, prec: 8, right: true, un: un})

	default:
		bin, ok := binOpsByName[op]
		if !ok {
			return // unknown operator is noise
		}
		prec := precedence(op)
		right := op == "^"
		c.popWhile(prec, right)
		c.ops = append(c.ops, pending{kind: pendBinary, prec: prec, right: right, bin: bin})
	}
}

// popWhile moves stacked operators to the output while they bind at least as
// tightly as prec. Right-associative operators use strict comparison so that
// 2^3^2 groups as 2^(3^2).
func (c *exprCompiler) popWhile(prec int, right bool) {
	for len(c.ops) > 0 {
		top := &c.ops[len(c.ops)-1]
		if top.kind == pendGroup {
			return
		}
		if top.prec > prec || (top.prec == prec && !right) {
			c.emit(*top)
			c.ops = c.ops[:len(c.ops)-1]
			continue
		}
		return
	}
}

func (c *exprCompiler) comma() {
	// Flush the finished argument, then bump the argument count on the
	// innermost group.
	for len(c.ops) > 0 {
		top := &c.ops[len(c.ops)-1]
		if top.kind == pendGroup {
			if len(c.out) > top.mark {
				top.args++
				top.mark = len(c.out)
			}
			return
		}
		c.emit(*top)
		c.ops = c.ops[:len(c.ops)-1]
	}
	// Comma outside any group: noise.
}

func (c *exprCompiler) closeGroup() {
	for len(c.ops) > 0 {
		top := c.ops[len(c.ops)-1]
		c.ops = c.ops[:len(c.ops)-1]
		if top.kind == pendGroup {
			c.emitGroup(top)
			return
		}
		c.emit(top)
	}
	// Stray ')': everything already drained, carry on.
}

func (c *exprCompiler) drainAll() {
	for len(c.ops) > 0 {
		top := c.ops[len(c.ops)-1]
		c.ops = c.ops[:len(c.ops)-1]
		if top.kind == pendGroup {
			// Unclosed paren or call, tolerated.
			c.emitGroup(top)
			continue
		}
		c.emit(top)
	}
}

func (c *exprCompiler) emit(p pending) {
	switch p.kind {
	case pendBinary:
		c.out = append(c.out, vm.Instr{Op: vm.OpBinary, Bin: p.bin})
	case pendUnary:
		c.out = append(c.out, vm.Instr{Op: vm.OpUnary, Un: p.un})
	case pendAssign:
		c.out = append(c.out, vm.Instr{Op: vm.OpAssign, Name: p.name})
	}
}

func (c *exprCompiler) emitGroup(g pending) {
	if !g.call {
		return
	}
	argc := g.args
	if len(c.out) > g.mark {
		argc++
	}
	c.out = append(c.out, vm.Instr{
		Op: vm.OpCallFunc, Fn: g.fn, Name: g.name, Arity: argc,
	})
}
