package vm

import (
	"math"
	"math/rand"
	"time"
)

// ---------------------------------------------------------------------------
// Interp: RPN stack evaluator
// ---------------------------------------------------------------------------

// Interp executes compiled programs. The operand stack is reused across
// evaluations so the point loop stays allocation-free in steady state.
//
// Anomalies never fail an evaluation: stack underflow pads with 0, division
// and modulo by zero yield 0, and an empty program yields 0.
type Interp struct {
	stack []float64
	rng   *rand.Rand

	// Audio sample windows for getosc/getspec, refreshed by the host each
	// frame. Empty slices make both builtins yield 0.
	wave []float64
	spec []float64
}

// NewInterp creates an interpreter with a time-seeded RNG, matching the
// unseeded rand() behavior of classic AVS.
func NewInterp() *Interp {
	return &Interp{
		stack: make([]float64, 0, 64),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the RNG. Tests inject a fixed-seed source here.
func (in *Interp) SetRand(r *rand.Rand) {
	in.rng = r
}

// SetAudioData installs the oscilloscope and spectrum windows sampled by
// getosc/getspec. The slices are read, never written.
func (in *Interp) SetAudioData(wave, spec []float64) {
	in.wave = wave
	in.spec = spec
}

// Eval runs the program against env and bufs and returns the value left on
// top of the stack, or 0 if the stack ends empty.
func (in *Interp) Eval(p *Program, env *Env, bufs *Buffers) float64 {
	if p.Empty() {
		return 0
	}
	stack := in.stack[:0]
	pop := func() float64 {
		if n := len(stack); n > 0 {
			v := stack[n-1]
			stack = stack[:n-1]
			return v
		}
		return 0
	}

	for i := range p.Code {
		ins := &p.Code[i]
		switch ins.Op {
		case OpPushConst:
			stack = append(stack, ins.Const)

		case OpPushVar:
			stack = append(stack, env.Get(ins.Name))

		case OpAssign:
			v := pop()
			env.Set(ins.Name, v)
			stack = append(stack, v)

		case OpBinary:
			b := pop()
			a := pop()
			stack = append(stack, evalBinary(ins.Bin, a, b))

		case OpUnary:
			a := pop()
			stack = append(stack, evalUnary(ins.Un, a))

		case OpCallFunc:
			n := ins.Arity
			for n > 3 {
				pop() // surplus arguments are discarded
				n--
			}
			var args [3]float64
			for k := n - 1; k >= 0; k-- {
				args[k] = pop()
			}
			stack = append(stack, in.call(ins.Fn, args[0], args[1], args[2], bufs))
		}
	}

	in.stack = stack // keep the grown capacity for the next evaluation
	if len(stack) == 0 {
		return 0
	}
	return stack[len(stack)-1]
}

func evalBinary(op BinOp, a, b float64) float64 {
	switch op {
	case BinAdd:
		return a + b
	case BinSub:
		return a - b
	case BinMul:
		return a * b
	case BinDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case BinMod:
		bi := toInt64(b)
		if bi == 0 {
			return 0
		}
		return float64(toInt64(a) % bi)
	case BinPow:
		return math.Pow(a, b)
	case BinAnd:
		return float64(toInt64(a) & toInt64(b))
	case BinOr:
		return float64(toInt64(a) | toInt64(b))
	case BinLogAnd:
		return truth(a != 0 && b != 0)
	case BinLogOr:
		return truth(a != 0 || b != 0)
	case BinLT:
		return truth(a < b)
	case BinGT:
		return truth(a > b)
	case BinLE:
		return truth(a <= b)
	case BinGE:
		return truth(a >= b)
	case BinEQ:
		return truth(a == b)
	case BinNE:
		return truth(a != b)
	}
	return 0
}

func evalUnary(op UnOp, a float64) float64 {
	switch op {
	case UnNeg:
		return -a
	case UnNot:
		return truth(a == 0)
	case UnPlus:
		return a
	}
	return 0
}

func (in *Interp) call(fn Builtin, a, b, c float64, bufs *Buffers) float64 {
	switch fn {
	case BuiltinSin:
		return math.Sin(a)
	case BuiltinCos:
		return math.Cos(a)
	case BuiltinTan:
		return math.Tan(a)
	case BuiltinAsin:
		return math.Asin(a)
	case BuiltinAcos:
		return math.Acos(a)
	case BuiltinAtan:
		return math.Atan(a)
	case BuiltinAtan2:
		return math.Atan2(a, b)
	case BuiltinSqrt:
		if a < 0 {
			return 0
		}
		return math.Sqrt(a)
	case BuiltinAbs:
		return math.Abs(a)
	case BuiltinPow:
		return math.Pow(a, b)
	case BuiltinExp:
		return math.Exp(a)
	case BuiltinLog:
		if a <= 0 {
			return 0
		}
		return math.Log(a)
	case BuiltinLog10:
		if a <= 0 {
			return 0
		}
		return math.Log10(a)
	case BuiltinSqr:
		return a * a
	case BuiltinInvsqrt:
		if a <= 0 {
			return 0
		}
		return 1 / math.Sqrt(a)
	case BuiltinSign:
		if a > 0 {
			return 1
		}
		if a < 0 {
			return -1
		}
		return 0
	case BuiltinFloor:
		return math.Floor(a)
	case BuiltinCeil:
		return math.Ceil(a)
	case BuiltinMin:
		return math.Min(a, b)
	case BuiltinMax:
		return math.Max(a, b)
	case BuiltinIf:
		if a != 0 {
			return b
		}
		return c
	case BuiltinBand:
		return truth(a != 0 && b != 0)
	case BuiltinBor:
		return truth(a != 0 || b != 0)
	case BuiltinBnot:
		return truth(a == 0)
	case BuiltinAbove:
		return truth(a > b)
	case BuiltinBelow:
		return truth(a < b)
	case BuiltinEqual:
		return truth(a == b)
	case BuiltinRand:
		if a >= 1 {
			return float64(in.rng.Int63n(toInt64(a)))
		}
		return in.rng.Float64()
	case BuiltinSigmoid:
		t := 1 + math.Exp(-a*c1(b))
		if t == 0 {
			return 0
		}
		return 1 / t
	case BuiltinMegabuf:
		if bufs != nil && bufs.Local != nil {
			return bufs.Local.Get(int(a))
		}
	case BuiltinGmegabuf:
		if bufs != nil && bufs.Global != nil {
			return bufs.Global.Get(int(a))
		}
	case BuiltinSetMegabuf:
		if bufs != nil && bufs.Local != nil {
			bufs.Local.Set(int(a), b)
		}
		return b
	case BuiltinSetGmegabuf:
		if bufs != nil && bufs.Global != nil {
			bufs.Global.Set(int(a), b)
		}
		return b
	case BuiltinGetOsc:
		return sampleWindow(in.wave, a, b)
	case BuiltinGetSpec:
		return sampleWindow(in.spec, a, b)
	}
	return 0
}

// c1 substitutes 1 for a zero slope so sigmoid(x) with one argument behaves
// like sigmoid(x, 1).
func c1(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// toInt64 truncates v for the integer operators. Values beyond the int64
// range are clamped and NaN maps to 0; the bare conversion is
// implementation-defined there and Int63n panics on a negative bound.
func toInt64(v float64) int64 {
	if v != v {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(v)
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// sampleWindow averages the samples in a window of the given fractional
// width centered at fractional position pos (both 0..1).
func sampleWindow(samples []float64, pos, width float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	pos = clamp01(pos)
	width = clamp01(width)
	center := pos * float64(n-1)
	half := width * float64(n) / 2
	lo := int(center - half)
	hi := int(center + half)
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if hi < lo {
		hi = lo
	}
	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += samples[i]
	}
	return sum / float64(hi-lo+1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
