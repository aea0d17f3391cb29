package engine

import (
	"math"
	"testing"

	"github.com/phoenixvis/avsengine/preset"
	"github.com/phoenixvis/avsengine/vm"
)

func newRunner(frags preset.FragmentSet) *Runner {
	return NewRunner(frags, vm.NewGlobalStore())
}

func TestRunnerPointLoop(t *testing.T) {
	r := newRunner(preset.FragmentSet{Point: "x=i/n; y=0;"})
	want := []float64{0, 0.25, 0.5, 0.75}
	for i := 0; i < 4; i++ {
		x, y, _, _ := r.RunPoint(i, 4)
		if x != want[i] {
			t.Errorf("point %d: x = %g, want %g", i, x, want[i])
		}
		if y != 0 {
			t.Errorf("point %d: y = %g, want 0", i, y)
		}
	}
}

func TestRunnerNormalizedPosition(t *testing.T) {
	r := newRunner(preset.FragmentSet{Point: "x=v;"})
	x, _, _, _ := r.RunPoint(3, 4)
	if x != 1 {
		t.Errorf("v at last point = %g, want 1", x)
	}
	x, _, _, _ = r.RunPoint(0, 4)
	if x != 0 {
		t.Errorf("v at first point = %g, want 0", x)
	}
	// n=1 avoids the division by zero
	x, _, _, _ = r.RunPoint(0, 1)
	if x != 0 {
		t.Errorf("v with a single point = %g, want 0", x)
	}
}

func TestRunnerInitPersistsIntoPoint(t *testing.T) {
	r := newRunner(preset.FragmentSet{
		Init:  "scale=2;",
		Point: "x=i*scale;",
	})
	x, _, _, _ := r.RunPoint(3, 8)
	if x != 6 {
		t.Errorf("x = %g, want 6 (init-assigned scale visible in point)", x)
	}
}

func TestRunnerFrameInjectsHostVariables(t *testing.T) {
	r := newRunner(preset.FragmentSet{Frame: "level=bass+treb;"})
	r.RunFrame(AudioFeatures{Bass: 0.5, Treb: 0.25, Beat: true}, 0.016)
	if got := r.Env().Get("level"); got != 0.75 {
		t.Errorf("level = %g, want 0.75", got)
	}
	if got := r.Env().Get("beat"); got != 1 {
		t.Errorf("beat = %g, want 1", got)
	}
	r.RunFrame(AudioFeatures{}, 0.016)
	if got := r.Env().Get("beat"); got != 0 {
		t.Errorf("beat after quiet frame = %g, want 0", got)
	}
}

func TestRunnerElapsedTimeAccumulates(t *testing.T) {
	r := newRunner(preset.FragmentSet{Frame: "tt=t;"})
	for i := 0; i < 4; i++ {
		r.RunFrame(AudioFeatures{}, 0.25)
	}
	if got := r.Env().Get("tt"); math.Abs(got-1) > 1e-12 {
		t.Errorf("t after four 0.25s frames = %g, want 1", got)
	}
}

func TestRunnerBeatPhase(t *testing.T) {
	r := newRunner(preset.FragmentSet{
		Init: "n=64;",
		Beat: "n=n*2;",
	})
	r.RunBeat()
	r.RunBeat()
	if got := r.Env().Get("n"); got != 256 {
		t.Errorf("n after two beats = %g, want 256", got)
	}
}

func TestRunnerColorReadback(t *testing.T) {
	r := newRunner(preset.FragmentSet{Point: "x=0; red=1; green=0.5; blue=2;"})
	_, _, c, ok := r.RunPoint(0, 1)
	if !ok {
		t.Fatal("point fragment assigns colors but ok = false")
	}
	if c.R != 255 {
		t.Errorf("red = %d, want 255", c.R)
	}
	if c.G != 127 {
		t.Errorf("green = %d, want 127", c.G)
	}
	if c.B != 255 {
		t.Errorf("blue = %d, want 255 (clamped above 1)", c.B)
	}
}

func TestRunnerNoColorAssignment(t *testing.T) {
	r := newRunner(preset.FragmentSet{Point: "x=v; y=v;"})
	_, _, _, ok := r.RunPoint(0, 2)
	if ok {
		t.Error("ok = true for a fragment that never assigns a color")
	}
}

func TestRunnerStateTransitions(t *testing.T) {
	r := newRunner(preset.FragmentSet{})
	if r.State() != StateReady {
		t.Errorf("state after construction = %v, want ready", r.State())
	}
	r.RunFrame(AudioFeatures{}, 0.016)
	if r.State() != StateRunning {
		t.Errorf("state after a frame = %v, want running", r.State())
	}
}

func TestRunnerSizeVariables(t *testing.T) {
	r := newRunner(preset.FragmentSet{Frame: "aspect=w/h;"})
	r.SetSize(1920, 1080)
	r.RunFrame(AudioFeatures{}, 0.016)
	if got := r.Env().Get("aspect"); math.Abs(got-1920.0/1080.0) > 1e-12 {
		t.Errorf("aspect = %g, want %g", got, 1920.0/1080.0)
	}
}

func TestRunnerGlobalBufferSurvivesPresetSwitch(t *testing.T) {
	globals := vm.NewGlobalStore()

	first := NewRunner(preset.FragmentSet{Init: "setgmegabuf(5,42);"}, globals)
	_ = first
	if got := globals.Buffer().Get(5); got != 42 {
		t.Fatalf("global[5] = %g, want 42", got)
	}

	second := NewRunner(preset.FragmentSet{Init: "seen=gmegabuf(5);"}, globals)
	if got := second.Env().Get("seen"); got != 42 {
		t.Errorf("seen = %g, want 42 (global buffer survives the switch)", got)
	}
}

func TestRunnerLocalBufferIsFreshPerRunner(t *testing.T) {
	globals := vm.NewGlobalStore()
	first := NewRunner(preset.FragmentSet{Init: "setmegabuf(0,7);"}, globals)
	_ = first
	second := NewRunner(preset.FragmentSet{Init: "seen=megabuf(0);"}, globals)
	if got := second.Env().Get("seen"); got != 0 {
		t.Errorf("seen = %g, want 0 (local buffer does not leak between runners)", got)
	}
}

func TestRunnerAudioWindows(t *testing.T) {
	r := newRunner(preset.FragmentSet{Point: "x=getosc(0.5,1,0);"})
	wave := make([]float64, 64)
	for i := range wave {
		wave[i] = 0.5
	}
	r.RunFrame(AudioFeatures{Wave: wave}, 0.016)
	x, _, _, _ := r.RunPoint(0, 1)
	if math.Abs(x-0.5) > 1e-12 {
		t.Errorf("getosc over constant wave = %g, want 0.5", x)
	}
}
