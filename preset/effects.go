package preset

// ---------------------------------------------------------------------------
// Effect index mapping
// ---------------------------------------------------------------------------
//
// The Nullsoft binary format tags effect blocks with a small integer index.
// The mapping below labels decoded presets; nothing in the VM consumes it.

var effectNames = [...]string{
	0:  "simple",
	1:  "dot plane",
	2:  "oscilliscope star",
	3:  "fadeout",
	4:  "blitter feedback",
	5:  "nf clear",
	6:  "blur",
	7:  "bass spin",
	8:  "moving particle",
	9:  "roto blitter",
	10: "svp loader",
	11: "colorfade",
	12: "color clip",
	13: "rotating stars",
	14: "ring",
	15: "movement",
	16: "scatter",
	17: "dot grid",
	18: "stack",
	19: "dot fountain",
	20: "water",
	21: "comment",
	22: "brightness",
	23: "interleave",
	24: "grain",
	25: "clear screen",
	26: "mirror",
	27: "starfield",
	28: "text",
	29: "bump",
	30: "mosaic",
	31: "water bump",
	32: "avi",
	33: "custom bpm",
	34: "picture",
	35: "dynamic distance modifier",
	36: "superscope",
	37: "invert",
	38: "unique tone",
	39: "timescope",
	40: "line mode",
	41: "interferences",
	42: "dynamic shift",
	43: "dynamic movement",
	44: "fast brightness",
	45: "color modifier",
}

// MaxEffectIndex is the largest built-in effect index the binary format can
// reference.
const MaxEffectIndex = len(effectNames) - 1

// EffectName returns the name for a binary effect index, or "" when the
// index is out of range.
func EffectName(index int) string {
	if index < 0 || index >= len(effectNames) {
		return ""
	}
	return effectNames[index]
}

// EffectIndex returns the binary index for an effect name, or -1 when the
// name is unknown.
func EffectIndex(name string) int {
	for i, n := range effectNames {
		if n == name {
			return i
		}
	}
	return -1
}
