// Package engine ties the preset decoder, expression compiler, and VM into
// the host-facing scripting engine of the visualizer.
package engine

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/phoenixvis/avsengine/preset"
	"github.com/phoenixvis/avsengine/vm"
)

// Engine is the host facade. It owns the process-wide global buffer store
// and the currently loaded preset's runner. All methods must be called from
// the render thread; swapping presets is the only form of cancellation.
type Engine struct {
	cfg     Config
	log     commonlog.Logger
	globals *vm.GlobalStore
	runner  *Runner
	pre     *preset.Preset
	width   int
	height  int
}

// New creates an engine with the given settings and an empty global store.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		log:     commonlog.GetLogger("avs.engine"),
		globals: vm.NewGlobalStore(),
		width:   640,
		height:  480,
	}
}

// Load decodes a preset blob, compiles its fragments, and replaces the
// current runner. A decode that yields zero fragments is not an error: the
// engine runs a no-op script and every point plots at the origin.
func (e *Engine) Load(data []byte) error {
	p, err := preset.DecodeWithOptions(data, e.cfg.decodeOptions())
	if err != nil {
		return fmt.Errorf("load preset: %w", err)
	}
	e.pre = p
	e.runner = NewRunner(p.Fragments, e.globals)
	e.runner.SetSize(e.width, e.height)

	e.log.Infof("loaded %s preset: %d script(s), truncated=%v", p.Format, len(p.Scripts), p.Truncated)
	if len(p.Effects) > 0 {
		e.log.Debugf("effect labels: %v", p.Effects)
	}
	return nil
}

// Preset returns the currently loaded preset, or nil.
func (e *Engine) Preset() *preset.Preset {
	return e.pre
}

// Runner returns the current script runner, or nil before the first Load.
func (e *Engine) Runner() *Runner {
	return e.runner
}

// Globals returns the process-wide buffer store shared across presets.
func (e *Engine) Globals() *vm.GlobalStore {
	return e.globals
}

// ResetGlobals clears the shared gmegabuf on host request.
func (e *Engine) ResetGlobals() {
	e.globals.Reset()
}

// SetSize records the drawing surface size.
func (e *Engine) SetSize(w, h int) {
	e.width = w
	e.height = h
	if e.runner != nil {
		e.runner.SetSize(w, h)
	}
}

// MaxPoints reports the configured per-frame point budget.
func (e *Engine) MaxPoints() int {
	return e.cfg.MaxPoints
}

// RunFrame drives the frame phase. A missing runner is a no-op.
func (e *Engine) RunFrame(af AudioFeatures, dt float64) {
	if e.runner == nil {
		return
	}
	e.runner.RunFrame(af, dt)
}

// RunBeat drives the beat phase. A missing runner is a no-op.
func (e *Engine) RunBeat() {
	if e.runner == nil {
		return
	}
	e.runner.RunBeat()
}

// RunPoint drives one point evaluation. With no runner loaded it plots the
// origin with no color.
func (e *Engine) RunPoint(i, n int) (x, y float64, c RGB, ok bool) {
	if e.runner == nil {
		return 0, 0, RGB{}, false
	}
	return e.runner.RunPoint(i, n)
}
