package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies one RPN instruction kind.
type Opcode byte

const (
	OpPushConst Opcode = iota // push the Const operand
	OpPushVar                 // push the value of variable Name (0 if unset)
	OpCallFunc                // pop Arity args, call builtin Fn, push result
	OpAssign                  // pop a value, store into Name, push it back
	OpBinary                  // pop b, pop a, push a <Bin> b
	OpUnary                   // pop a, push <Un> a
)

var opcodeNames = map[Opcode]string{
	OpPushConst: "PUSH_CONST",
	OpPushVar:   "PUSH_VAR",
	OpCallFunc:  "CALL",
	OpAssign:    "ASSIGN",
	OpBinary:    "BINOP",
	OpUnary:     "UNOP",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(o))
}

// ---------------------------------------------------------------------------
// Binary and unary operators
// ---------------------------------------------------------------------------

// BinOp identifies a binary operator, resolved at compile time.
type BinOp byte

const (
	BinAdd BinOp = iota // +
	BinSub              // -
	BinMul              // *
	BinDiv              // / (x/0 yields 0)
	BinMod              // % integer modulo (x%0 yields 0)
	BinPow              // ^
	BinAnd              // & bitwise on truncated integers
	BinOr               // | bitwise on truncated integers
	BinLogAnd           // && nonzero-true logic, yields 1 or 0
	BinLogOr            // ||
	BinLT               // <
	BinGT               // >
	BinLE               // <=
	BinGE               // >=
	BinEQ               // ==
	BinNE               // !=
	BinNop              // recognized but meaningless operator, yields 0
)

var binOpNames = map[BinOp]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinPow: "^", BinAnd: "&", BinOr: "|", BinLogAnd: "&&", BinLogOr: "||",
	BinLT: "<", BinGT: ">", BinLE: "<=", BinGE: ">=", BinEQ: "==", BinNE: "!=",
	BinNop: ".",
}

func (b BinOp) String() string {
	if name, ok := binOpNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BinOp(%d)", byte(b))
}

// UnOp identifies a unary operator.
type UnOp byte

const (
	UnNeg UnOp = iota // -
	UnNot             // ! (zero yields 1, nonzero yields 0)
	UnPlus            // +
)

func (u UnOp) String() string {
	switch u {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	case UnPlus:
		return "+"
	}
	return fmt.Sprintf("UnOp(%d)", byte(u))
}

// ---------------------------------------------------------------------------
// Instr and Program
// ---------------------------------------------------------------------------

// Instr is a single RPN instruction. Which operand fields are meaningful
// depends on Op.
type Instr struct {
	Op    Opcode
	Const float64 // OpPushConst
	Name  string  // OpPushVar, OpAssign; original call name for OpCallFunc
	Fn    Builtin // OpCallFunc
	Arity int     // OpCallFunc: number of arguments on the stack
	Bin   BinOp   // OpBinary
	Un    UnOp    // OpUnary
}

func (in Instr) String() string {
	switch in.Op {
	case OpPushConst:
		return fmt.Sprintf("PUSH_CONST %g", in.Const)
	case OpPushVar:
		return fmt.Sprintf("PUSH_VAR %s", in.Name)
	case OpCallFunc:
		return fmt.Sprintf("CALL %s/%d", in.Name, in.Arity)
	case OpAssign:
		return fmt.Sprintf("ASSIGN %s", in.Name)
	case OpBinary:
		return fmt.Sprintf("BINOP %s", in.Bin)
	case OpUnary:
		return fmt.Sprintf("UNOP %s", in.Un)
	}
	return in.Op.String()
}

// Program is an immutable RPN instruction sequence. Compiled once per script
// fragment and reused for the life of a loaded preset.
type Program struct {
	Code []Instr
}

// Empty reports whether the program has no instructions. Evaluating an empty
// program yields 0.
func (p *Program) Empty() bool {
	return p == nil || len(p.Code) == 0
}

// Disassemble renders the program one instruction per line, for diagnostics.
func (p *Program) Disassemble() string {
	if p.Empty() {
		return "(empty)\n"
	}
	var sb strings.Builder
	for i, in := range p.Code {
		fmt.Fprintf(&sb, "%04d  %s\n", i, in)
	}
	return sb.String()
}

// AssignsAny reports whether the program assigns to any of the given
// variable names.
func (p *Program) AssignsAny(names ...string) bool {
	if p.Empty() {
		return false
	}
	for _, in := range p.Code {
		if in.Op != OpAssign {
			continue
		}
		for _, n := range names {
			if in.Name == n {
				return true
			}
		}
	}
	return false
}
