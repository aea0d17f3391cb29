package preset

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Wire encoding for the preset library cache
// ---------------------------------------------------------------------------

// Canonical mode keeps the encoding deterministic, so identical presets
// hash identically in the library.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("preset: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalFragments serializes a FragmentSet to CBOR bytes.
func MarshalFragments(f *FragmentSet) ([]byte, error) {
	return cborEncMode.Marshal(f)
}

// UnmarshalFragments deserializes a FragmentSet from CBOR bytes.
func UnmarshalFragments(data []byte) (*FragmentSet, error) {
	var f FragmentSet
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("preset: unmarshal fragments: %w", err)
	}
	return &f, nil
}

// MarshalPreset serializes a decoded Preset to CBOR bytes.
func MarshalPreset(p *Preset) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalPreset deserializes a Preset from CBOR bytes.
func UnmarshalPreset(data []byte) (*Preset, error) {
	var p Preset
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preset: unmarshal preset: %w", err)
	}
	return &p, nil
}
