package preset

import "strings"

// ---------------------------------------------------------------------------
// Line cleaning
// ---------------------------------------------------------------------------

// artifactGlyphs are Unicode block/diamond characters that binary noise
// commonly decodes to; they are stripped wherever they appear.
var artifactGlyphs = map[rune]bool{
	'█': true, '▄': true, '▀': true, '▌': true, '▐': true,
	'░': true, '▒': true, '▓': true,
	'■': true, '□': true, '▪': true, '▫': true,
	'◆': true, '◇': true, '♦': true,
	'�': true, // replacement character
}

// cleanLine strips non-printable bytes and artifact glyphs and trims
// surrounding whitespace.
func cleanLine(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\t' {
			sb.WriteRune(' ')
			continue
		}
		if r < 0x20 || r == 0x7F || artifactGlyphs[r] {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

// terminated reports whether the line ends with a legal statement
// terminator.
func terminated(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case ';', '}', ')':
		return true
	}
	return false
}

// buildFragment cleans candidate lines, drops empties and duplicates,
// ensures each line is terminated, caps the line count, and joins the
// result into one fragment string.
func buildFragment(lines []string, maxLines int) string {
	var kept []string
	seen := make(map[string]bool)
	for _, line := range lines {
		line = cleanLine(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		if !terminated(line) {
			line += ";"
		}
		kept = append(kept, line)
		if len(kept) >= maxLines {
			break
		}
	}
	return strings.Join(kept, "\n")
}

// splitLines breaks a candidate string into lines on any of CR, LF, CRLF.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
