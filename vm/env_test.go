package vm

import "testing"

func TestEnvDefaultsToZero(t *testing.T) {
	env := NewEnv()
	if got := env.Get("anything"); got != 0 {
		t.Errorf("unset variable = %g, want 0", got)
	}
	if env.Has("anything") {
		t.Error("Has reported an unset variable")
	}
}

func TestEnvSetGet(t *testing.T) {
	env := NewEnv()
	env.Set("x", 1.5)
	env.Set("X", 2.5) // names are case-sensitive
	if env.Get("x") != 1.5 || env.Get("X") != 2.5 {
		t.Errorf("x=%g X=%g, want 1.5 and 2.5", env.Get("x"), env.Get("X"))
	}
	if env.Len() != 2 {
		t.Errorf("Len = %d, want 2", env.Len())
	}
}

func TestSparseBufferDefaultsAndExtension(t *testing.T) {
	b := NewSparseBuffer()
	if b.Get(0) != 0 || b.Get(100000) != 0 {
		t.Error("unset indices should read 0")
	}
	b.Set(100000, 7)
	if b.Get(100000) != 7 {
		t.Errorf("buf[100000] = %g, want 7", b.Get(100000))
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1 (sparse, not dense)", b.Len())
	}
	b.Set(-5, 3) // negative writes dropped
	if b.Len() != 1 {
		t.Errorf("Len after negative write = %d, want 1", b.Len())
	}
	b.Reset()
	if b.Get(100000) != 0 || b.Len() != 0 {
		t.Error("Reset left data behind")
	}
}

func TestGlobalStoreSurvivesReset(t *testing.T) {
	g := NewGlobalStore()
	g.Buffer().Set(3, 42)
	if g.Buffer().Get(3) != 42 {
		t.Errorf("global[3] = %g, want 42", g.Buffer().Get(3))
	}
	g.Reset()
	if g.Buffer().Get(3) != 0 {
		t.Errorf("global[3] after reset = %g, want 0", g.Buffer().Get(3))
	}
}
