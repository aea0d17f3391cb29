package engine

import (
	"github.com/phoenixvis/avsengine/compiler"
	"github.com/phoenixvis/avsengine/preset"
	"github.com/phoenixvis/avsengine/vm"
)

// ---------------------------------------------------------------------------
// Script runner: phase cadence over one preset instance
// ---------------------------------------------------------------------------

// AudioFeatures carries the per-frame audio analysis the host injects into
// the script environment.
type AudioFeatures struct {
	Bass   float64
	Mid    float64
	Treb   float64
	Volume float64
	Beat   bool

	// Raw sample windows for getosc/getspec; may be nil.
	Wave []float64
	Spec []float64
}

// RGB is an 8-bit color read back from a point evaluation.
type RGB struct {
	R, G, B uint8
}

// State tracks the runner lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateReady                // fragments compiled, init ran
	StateRunning              // at least one frame evaluated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

// Runner binds the four compiled fragments of one preset to a single VM
// instance and drives them at the right cadence: init once on load, frame
// once per video frame, beat on detected onset, point once per plotted
// vertex. All phases share one environment so assignments in init and frame
// persist into point.
//
// A Runner is single-threaded by contract; everything runs on the render
// thread.
type Runner struct {
	initProg  *vm.Program
	frameProg *vm.Program
	beatProg  *vm.Program
	pointProg *vm.Program

	env    *vm.Env
	interp *vm.Interp
	bufs   vm.Buffers

	state    State
	elapsed  float64
	width    float64
	height   float64
	hasColor bool
}

// NewRunner compiles the fragment set, resets the local scratch buffer, and
// runs the init fragment once. The global store is owned by the host process
// and survives preset switches.
func NewRunner(frags preset.FragmentSet, globals *vm.GlobalStore) *Runner {
	r := &Runner{
		initProg:  compiler.CompileSource(frags.Init),
		frameProg: compiler.CompileSource(frags.Frame),
		beatProg:  compiler.CompileSource(frags.Beat),
		pointProg: compiler.CompileSource(frags.Point),
		env:       vm.NewEnv(),
		interp:    vm.NewInterp(),
		width:     640,
		height:    480,
	}
	r.bufs = vm.Buffers{Local: vm.NewSparseBuffer(), Global: globals.Buffer()}
	r.hasColor = r.pointProg.AssignsAny("red", "green", "blue")

	r.env.Set("w", r.width)
	r.env.Set("h", r.height)
	r.interp.Eval(r.initProg, r.env, &r.bufs)
	r.state = StateReady
	return r
}

// State returns the runner lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Env exposes the shared variable environment, mainly for host inspection.
func (r *Runner) Env() *vm.Env {
	return r.env
}

// Interp exposes the underlying interpreter so hosts (and tests) can swap
// the RNG.
func (r *Runner) Interp() *vm.Interp {
	return r.interp
}

// SetSize records the drawing surface size injected as w/h each frame.
func (r *Runner) SetSize(w, h int) {
	r.width = float64(w)
	r.height = float64(h)
}

// RunFrame advances elapsed time, injects the host variables, and evaluates
// the frame fragment.
func (r *Runner) RunFrame(af AudioFeatures, dt float64) {
	r.elapsed += dt
	r.env.Set("t", r.elapsed)
	r.env.Set("w", r.width)
	r.env.Set("h", r.height)
	r.env.Set("bass", af.Bass)
	r.env.Set("mid", af.Mid)
	r.env.Set("treb", af.Treb)
	r.env.Set("vol", af.Volume)
	if af.Beat {
		r.env.Set("beat", 1)
	} else {
		r.env.Set("beat", 0)
	}
	r.interp.SetAudioData(af.Wave, af.Spec)
	r.interp.Eval(r.frameProg, r.env, &r.bufs)
	r.state = StateRunning
}

// RunBeat evaluates the beat fragment. The host calls it when its onset
// detector fires.
func (r *Runner) RunBeat() {
	r.interp.Eval(r.beatProg, r.env, &r.bufs)
}

// RunPoint injects the point index i, total count n, and normalized
// position v = i/(n-1), evaluates the point fragment, and reads back the
// plotted coordinates. ok is true when the fragment also produced a color.
func (r *Runner) RunPoint(i, n int) (x, y float64, c RGB, ok bool) {
	r.env.Set("i", float64(i))
	r.env.Set("n", float64(n))
	v := 0.0
	if n > 1 {
		v = float64(i) / float64(n-1)
	}
	r.env.Set("v", v)

	r.interp.Eval(r.pointProg, r.env, &r.bufs)

	x = r.env.Get("x")
	y = r.env.Get("y")
	if r.hasColor {
		c = RGB{
			R: colorByte(r.env.Get("red")),
			G: colorByte(r.env.Get("green")),
			B: colorByte(r.env.Get("blue")),
		}
		ok = true
	}
	return x, y, c, ok
}

// PointProgram returns the compiled point fragment, for diagnostics.
func (r *Runner) PointProgram() *vm.Program {
	return r.pointProg
}

func colorByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
