package preset

import (
	"encoding/binary"
	"strings"
	"testing"
)

// binaryBlob builds a synthetic Nullsoft preset: signature, 0x1A, 36-byte
// config filler, then length-prefixed records.
func binaryBlob(records ...string) []byte {
	blob := []byte(signaturePrefix + "0.2")
	blob = append(blob, sigTerminator)
	blob = append(blob, make([]byte, binaryConfigSize)...)
	for _, r := range records {
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(r)))
		blob = append(blob, l[:]...)
		blob = append(blob, r...)
	}
	return blob
}

func TestDecodeBinaryRoundTrip(t *testing.T) {
	blob := binaryBlob("x=1;", "y=sin(t);")
	p, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Format != FormatBinary {
		t.Errorf("format = %v, want binary", p.Format)
	}
	if p.Version != "0.2" {
		t.Errorf("version = %q, want \"0.2\"", p.Version)
	}
	want := []string{"x=1;", "y=sin(t);"}
	if len(p.Scripts) != len(want) {
		t.Fatalf("scripts = %v, want %v", p.Scripts, want)
	}
	for i, s := range want {
		if p.Scripts[i] != s {
			t.Errorf("script[%d] = %q, want %q", i, p.Scripts[i], s)
		}
	}
	if p.Truncated {
		t.Error("well-formed blob reported as truncated")
	}
	if p.Fragments.Init != "x=1;" || p.Fragments.Frame != "y=sin(t);" {
		t.Errorf("fragments = %+v, want init/frame in extraction order", p.Fragments)
	}
}

func TestDecodeBinaryTruncatedLengthKeepsEarlierFragments(t *testing.T) {
	blob := binaryBlob("x=1;")
	// A length field claiming far more bytes than remain.
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], 5000)
	blob = append(blob, l[:]...)
	blob = append(blob, "y="...)

	p, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !p.Truncated {
		t.Error("truncation not reported")
	}
	if len(p.Scripts) != 1 || p.Scripts[0] != "x=1;" {
		t.Errorf("scripts = %v, want the one fragment before the bad field", p.Scripts)
	}
}

func TestDecodeBinaryOversizeLengthStopsWalk(t *testing.T) {
	// A 20000-byte record fails the length guard; the walker stops there
	// and never reaches the record after it.
	noise := strings.Repeat("\x00\x01", 10000)
	blob := binaryBlob("a=2;", noise, "z=9;")
	p, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(p.Scripts) != 1 || p.Scripts[0] != "a=2;" {
		t.Errorf("scripts = %v, want only the record before the bad length", p.Scripts)
	}
}

func TestDecodeBinaryFiltersNonScriptRecords(t *testing.T) {
	blob := binaryBlob("just some label text", "x=i/n;")
	p, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(p.Scripts) != 1 || p.Scripts[0] != "x=i/n;" {
		t.Errorf("scripts = %v, want only the script-looking record", p.Scripts)
	}
}

func TestDecodeBinaryZeroRecords(t *testing.T) {
	// A valid signature with no records is a valid, empty preset.
	p, err := Decode(binaryBlob())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(p.Scripts) != 0 || !p.Fragments.Empty() {
		t.Errorf("expected an empty preset, got %+v", p)
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	if _, err := Decode([]byte{0x00, 0x01, 0x02, 0x03}); err != ErrUnsupportedFormat {
		t.Errorf("garbage blob: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Decode(nil); err != ErrUnsupportedFormat {
		t.Errorf("empty blob: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeSalvageScan(t *testing.T) {
	// No signature, not text-dominant: binary noise around a recoverable
	// script run.
	blob := []byte{0x00, 0xFF, 0x01}
	blob = append(blob, "x=getosc(1,1,.3)*.2; y=x*2;"...)
	blob = append(blob, 0x00, 0xFE)
	blob = append(blob, make([]byte, 64)...) // keep the printable ratio low

	p, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Format != FormatSalvage {
		t.Errorf("format = %v, want salvage", p.Format)
	}
	if len(p.Scripts) != 1 {
		t.Fatalf("scripts = %v, want one salvaged run", p.Scripts)
	}
	if !strings.Contains(p.Scripts[0], "getosc") {
		t.Errorf("salvaged script = %q, want the getosc expression", p.Scripts[0])
	}
}

func TestDecodeTextWithMarkers(t *testing.T) {
	src := `[avs]
[init]
n=128;
[frame]
t=t+0.01;
[beat]
n=64;
[point]
x=i*2-1; // spread
y=sin(v*6.283);
`
	p, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Format != FormatText {
		t.Errorf("format = %v, want text", p.Format)
	}
	if p.Fragments.Init != "n=128;" {
		t.Errorf("init = %q, want n=128;", p.Fragments.Init)
	}
	if p.Fragments.Frame != "t=t+0.01;" {
		t.Errorf("frame = %q, want t=t+0.01;", p.Fragments.Frame)
	}
	if p.Fragments.Beat != "n=64;" {
		t.Errorf("beat = %q, want n=64;", p.Fragments.Beat)
	}
	if p.Fragments.Point != "x=i*2-1;\ny=sin(v*6.283);" {
		t.Errorf("point = %q, want both point lines, comment stripped", p.Fragments.Point)
	}
}

func TestDecodeTextInlineKeys(t *testing.T) {
	src := "init=n=100;\npoint=x=v; y=0;\n"
	p, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Fragments.Init != "n=100;" {
		t.Errorf("init = %q, want n=100;", p.Fragments.Init)
	}
	if p.Fragments.Point != "x=v; y=0;" {
		t.Errorf("point = %q, want x=v; y=0;", p.Fragments.Point)
	}
}

func TestDecodeTextPositionalFallback(t *testing.T) {
	// No section markers: first script line is init, the rest drive point.
	src := "n=200;\nx=sin(v*3.14);\ny=cos(v*3.14);\n"
	p, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Fragments.Init != "n=200;" {
		t.Errorf("init = %q, want n=200;", p.Fragments.Init)
	}
	if p.Fragments.Point != "x=sin(v*3.14);\ny=cos(v*3.14);" {
		t.Errorf("point = %q, want the remaining lines", p.Fragments.Point)
	}
}

func TestDecodeTextCommentOnly(t *testing.T) {
	p, err := Decode([]byte("[avs]\n// nothing here\n\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !p.Fragments.Empty() {
		t.Errorf("comment-only preset produced fragments: %+v", p.Fragments)
	}
}

func TestBuildFragmentCleaning(t *testing.T) {
	frag := buildFragment([]string{
		"  x=1  ",        // trimmed and terminated
		"x=1",            // duplicate after cleaning
		"\x01\x02",       // nothing printable
		"y=2;",           // already terminated
		"z=█3█", // artifact glyphs stripped
	}, 400)
	want := "x=1;\ny=2;\nz=3;"
	if frag != want {
		t.Errorf("fragment = %q, want %q", frag, want)
	}
}

func TestBuildFragmentLineCap(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "x=" + strings.Repeat("1", i+1) + ";"
	}
	frag := buildFragment(lines, 10)
	if got := len(strings.Split(frag, "\n")); got != 10 {
		t.Errorf("line count = %d, want capped at 10", got)
	}
}

func TestEffectMapping(t *testing.T) {
	if got := EffectName(36); got != "superscope" {
		t.Errorf("EffectName(36) = %q, want superscope", got)
	}
	if got := EffectIndex("superscope"); got != 36 {
		t.Errorf("EffectIndex(superscope) = %d, want 36", got)
	}
	if got := EffectName(-1); got != "" {
		t.Errorf("EffectName(-1) = %q, want empty", got)
	}
	if got := EffectName(999); got != "" {
		t.Errorf("EffectName(999) = %q, want empty", got)
	}
	if got := EffectIndex("no such effect"); got != -1 {
		t.Errorf("EffectIndex(unknown) = %d, want -1", got)
	}
}
