package engine

import (
	"encoding/binary"
	"testing"
)

// presetBlob builds a minimal Nullsoft binary preset around the given
// script records.
func presetBlob(records ...string) []byte {
	blob := []byte("Nullsoft AVS Preset 0.2")
	blob = append(blob, 0x1A)
	blob = append(blob, make([]byte, 36)...)
	for _, r := range records {
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(r)))
		blob = append(blob, l[:]...)
		blob = append(blob, r...)
	}
	return blob
}

func TestEngineLoadAndRun(t *testing.T) {
	e := New(DefaultConfig())
	if err := e.Load(presetBlob("n=4;", "t=t;", "n=n;", "x=i/n; y=0;")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if e.Runner() == nil || e.Preset() == nil {
		t.Fatal("runner or preset missing after Load")
	}

	e.RunFrame(AudioFeatures{}, 0.016)
	x, y, _, _ := e.RunPoint(2, 4)
	if x != 0.5 || y != 0 {
		t.Errorf("point = (%g, %g), want (0.5, 0)", x, y)
	}
}

func TestEngineNoRunnerIsNoOp(t *testing.T) {
	e := New(DefaultConfig())
	e.RunFrame(AudioFeatures{}, 0.016)
	e.RunBeat()
	x, y, _, ok := e.RunPoint(0, 4)
	if x != 0 || y != 0 || ok {
		t.Errorf("point without a preset = (%g, %g, ok=%v), want origin", x, y, ok)
	}
}

func TestEngineLoadBadBlob(t *testing.T) {
	e := New(DefaultConfig())
	if err := e.Load([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Fatal("garbage blob loaded without error")
	}
	if e.Runner() != nil {
		t.Error("failed Load left a runner behind")
	}
}

func TestEngineGlobalsSurviveReload(t *testing.T) {
	e := New(DefaultConfig())
	if err := e.Load(presetBlob("setgmegabuf(1,9);")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := e.Globals().Buffer().Get(1); got != 9 {
		t.Fatalf("global[1] = %g, want 9", got)
	}
	if err := e.Load(presetBlob("seen=gmegabuf(1);")); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := e.Runner().Env().Get("seen"); got != 9 {
		t.Errorf("seen = %g, want 9", got)
	}
	e.ResetGlobals()
	if got := e.Globals().Buffer().Get(1); got != 0 {
		t.Errorf("global[1] after reset = %g, want 0", got)
	}
}
