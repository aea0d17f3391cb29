package preset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// Preset decoder
// ---------------------------------------------------------------------------

const (
	// signaturePrefix opens every Nullsoft binary preset; the version
	// characters follow and a 0x1A byte terminates the line.
	signaturePrefix = "Nullsoft AVS Preset "
	sigTerminator   = 0x1A

	// binaryConfigSize is the extended-configuration block after the
	// signature. Its layout was never reverse-engineered; it is skipped
	// opaquely.
	binaryConfigSize = 36
)

var (
	// ErrUnsupportedFormat means the blob has no recognizable signature
	// and no salvageable ASCII script content. Distinct from a valid but
	// empty preset, which decodes without error.
	ErrUnsupportedFormat = errors.New("preset: unsupported format")

	// ErrTruncated means a length field pointed past the end of the
	// buffer. The walker stops there; fragments extracted before the bad
	// field are kept.
	ErrTruncated = errors.New("preset: length field past end of data")
)

// Format identifies which decode path produced a preset.
type Format byte

const (
	FormatUnknown Format = iota
	FormatBinary         // Nullsoft length-prefixed records
	FormatText           // line-oriented Phoenix text
	FormatSalvage        // fallback ASCII-run scan
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatBinary:  "binary",
	FormatText:    "text",
	FormatSalvage: "salvage",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FragmentSet holds the four named script bodies of one preset, each
// possibly empty.
type FragmentSet struct {
	Init  string `cbor:"init"`
	Frame string `cbor:"frame"`
	Beat  string `cbor:"beat"`
	Point string `cbor:"point"`
}

// Empty reports whether no fragment has content.
func (f *FragmentSet) Empty() bool {
	return f.Init == "" && f.Frame == "" && f.Beat == "" && f.Point == ""
}

// Preset is the result of decoding one blob.
type Preset struct {
	Format    Format      `cbor:"format"`
	Version   string      `cbor:"version"` // binary presets only, e.g. "0.2"
	Scripts   []string    `cbor:"scripts"` // cleaned fragments, extraction order
	Fragments FragmentSet `cbor:"fragments"`
	Effects   []string    `cbor:"effects"` // labels from binary effect indices
	Truncated bool        `cbor:"truncated"`
}

// Options bound the decoder's resource use on hostile input.
type Options struct {
	MaxRecordBytes   int // reject binary length fields above this
	MaxFragmentLines int // cap per assembled fragment
	MinRunLength     int // minimum printable run for the salvage scan
}

// DefaultOptions returns the guards used by Decode.
func DefaultOptions() Options {
	return Options{
		MaxRecordBytes:   10000,
		MaxFragmentLines: 400,
		MinRunLength:     10,
	}
}

// Decode sniffs the blob format and extracts script fragments with the
// default guards.
func Decode(data []byte) (*Preset, error) {
	return DecodeWithOptions(data, DefaultOptions())
}

// DecodeWithOptions is Decode with explicit guards.
func DecodeWithOptions(data []byte, opt Options) (*Preset, error) {
	if opt.MaxRecordBytes <= 0 {
		opt.MaxRecordBytes = 10000
	}
	if opt.MaxFragmentLines <= 0 {
		opt.MaxFragmentLines = 400
	}
	if opt.MinRunLength <= 0 {
		opt.MinRunLength = 10
	}

	if version, body, ok := sniffBinary(data); ok {
		return decodeBinary(version, body, data, opt)
	}
	if looksLikeText(data) {
		return decodeText(data, opt), nil
	}

	// Noise-tolerant fallback: salvage printable runs from whatever this is.
	scripts := scanRuns(data, opt)
	if len(scripts) == 0 {
		return nil, ErrUnsupportedFormat
	}
	p := &Preset{Format: FormatSalvage, Scripts: scripts}
	p.Fragments = assignFragments(scripts)
	return p, nil
}

// sniffBinary checks for the Nullsoft signature and returns the format
// version and the bytes after the 0x1A terminator.
func sniffBinary(data []byte) (version string, body []byte, ok bool) {
	if !bytes.HasPrefix(data, []byte(signaturePrefix)) {
		return "", nil, false
	}
	term := bytes.IndexByte(data, sigTerminator)
	if term < 0 {
		return "", nil, false
	}
	version = string(data[len(signaturePrefix):term])
	return version, data[term+1:], true
}

func decodeBinary(version string, body, whole []byte, opt Options) (*Preset, error) {
	p := &Preset{Format: FormatBinary, Version: version}

	var candidates []string
	if len(body) >= binaryConfigSize {
		records := body[binaryConfigSize:]
		cands, effects, err := walkRecords(records, opt)
		candidates = cands
		p.Effects = effects
		if errors.Is(err, ErrTruncated) {
			p.Truncated = true
		}
	} else {
		p.Truncated = true
	}

	// Assemble fragments from the length-prefix walk, then let the
	// ASCII-run scan add anything the walk missed (it desynchronizes on
	// unknown sub-formats).
	scripts := make([]string, 0, len(candidates))
	seen := make(map[string]bool)
	for _, c := range candidates {
		frag := buildFragment(splitLines(c), opt.MaxFragmentLines)
		if frag == "" || seen[frag] {
			continue
		}
		seen[frag] = true
		scripts = append(scripts, frag)
	}
	for _, frag := range scanRuns(whole, opt) {
		if !seen[frag] {
			seen[frag] = true
			scripts = append(scripts, frag)
		}
	}

	p.Scripts = scripts
	p.Fragments = assignFragments(scripts)
	return p, nil
}

// walkRecords reads length-prefixed records until the data ends or a length
// field fails a corruption guard. A field pointing past the end returns
// ErrTruncated along with everything extracted before it.
func walkRecords(data []byte, opt Options) (candidates, effects []string, err error) {
	off := 0
	for len(data)-off >= 4 {
		l := int(binary.LittleEndian.Uint32(data[off:]))
		if l <= 0 || l > opt.MaxRecordBytes {
			return candidates, effects, nil
		}
		if l > len(data)-off-4 {
			return candidates, effects, ErrTruncated
		}
		rec := data[off+4 : off+4+l]
		s := string(bytes.TrimRight(rec, "\x00"))
		if ContainsScriptPattern(s) {
			candidates = append(candidates, s)
			if name := precedingEffect(data, off); name != "" {
				effects = append(effects, name)
			}
		}
		off += 4 + l
	}
	return candidates, effects, nil
}

// precedingEffect labels a record by the 32-bit word just before its length
// field when that word is a plausible built-in effect index.
func precedingEffect(data []byte, off int) string {
	if off < 4 {
		return ""
	}
	idx := int(binary.LittleEndian.Uint32(data[off-4:]))
	return EffectName(idx)
}

// scanRuns extracts runs of printable ASCII (plus tab/CR/LF) of at least
// MinRunLength bytes and keeps those that look like script.
func scanRuns(data []byte, opt Options) []string {
	var scripts []string
	seen := make(map[string]bool)
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := data[start:end]
		start = -1
		if len(run) < opt.MinRunLength || !ContainsScriptPattern(string(run)) {
			return
		}
		frag := buildFragment(splitLines(string(run)), opt.MaxFragmentLines)
		if frag != "" && !seen[frag] {
			seen[frag] = true
			scripts = append(scripts, frag)
		}
	}
	for i, c := range data {
		if printableOrBreak(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return scripts
}

func printableOrBreak(c byte) bool {
	return (c >= 0x20 && c <= 0x7E) || c == '\t' || c == '\r' || c == '\n'
}

// looksLikeText accepts blobs that are overwhelmingly printable and either
// carry a section header or contain script-looking lines.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	printable := 0
	for _, c := range sample {
		if printableOrBreak(c) {
			printable++
		}
	}
	if printable*10 < len(sample)*9 {
		return false
	}
	trimmed := strings.TrimSpace(strings.ToLower(string(sample)))
	if strings.HasPrefix(trimmed, "[avs]") || strings.HasPrefix(trimmed, "[preset") {
		return true
	}
	for _, line := range splitLines(string(data)) {
		if ContainsScriptPattern(line) {
			return true
		}
	}
	return false
}

// decodeText splits the blob on newlines, strips comments and blanks, and
// buckets lines into the four fragments using section markers, falling back
// to positional heuristics when the file has none.
func decodeText(data []byte, opt Options) *Preset {
	p := &Preset{Format: FormatText}

	type bucket int
	const (
		bucketNone bucket = iota
		bucketInit
		bucketFrame
		bucketBeat
		bucketPoint
	)
	markers := map[string]bucket{
		"init": bucketInit, "frame": bucketFrame,
		"beat": bucketBeat, "point": bucketPoint,
	}

	lines := map[bucket][]string{}
	current := bucketNone
	sawMarker := false

	for _, raw := range splitLines(string(data)) {
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		norm := strings.ToLower(strings.Trim(line, "[]:"))
		if norm == "avs" || strings.HasPrefix(norm, "preset") {
			continue // file header
		}
		if b, ok := markers[norm]; ok {
			current = b
			sawMarker = true
			continue
		}
		// "init=..." inline form
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.ToLower(strings.TrimSpace(line[:eq]))
			if b, ok := markers[key]; ok {
				lines[b] = append(lines[b], strings.TrimSpace(line[eq+1:]))
				sawMarker = true
				continue
			}
		}
		if !ContainsScriptPattern(line) {
			continue
		}
		lines[current] = append(lines[current], line)
	}

	// Positional fallback: with no markers at all, the first script line is
	// initialization and the rest drive the point phase.
	if !sawMarker {
		loose := lines[bucketNone]
		if len(loose) > 0 {
			lines[bucketInit] = loose[:1]
			lines[bucketPoint] = loose[1:]
		}
	} else {
		// Pre-marker strays belong to the point phase.
		lines[bucketPoint] = append(lines[bucketNone], lines[bucketPoint]...)
	}

	p.Fragments = FragmentSet{
		Init:  buildFragment(lines[bucketInit], opt.MaxFragmentLines),
		Frame: buildFragment(lines[bucketFrame], opt.MaxFragmentLines),
		Beat:  buildFragment(lines[bucketBeat], opt.MaxFragmentLines),
		Point: buildFragment(lines[bucketPoint], opt.MaxFragmentLines),
	}
	for _, frag := range []string{p.Fragments.Init, p.Fragments.Frame, p.Fragments.Beat, p.Fragments.Point} {
		if frag != "" {
			p.Scripts = append(p.Scripts, frag)
		}
	}
	return p
}

// assignFragments maps ordered candidate scripts onto the four phases:
// first to init, then frame, then beat, with everything remaining joined
// into the point fragment.
func assignFragments(scripts []string) FragmentSet {
	var f FragmentSet
	switch {
	case len(scripts) > 3:
		f.Point = strings.Join(scripts[3:], "\n")
		fallthrough
	case len(scripts) == 3:
		f.Beat = scripts[2]
		fallthrough
	case len(scripts) == 2:
		f.Frame = scripts[1]
		fallthrough
	case len(scripts) >= 1:
		f.Init = scripts[0]
	}
	return f
}
