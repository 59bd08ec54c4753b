package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// Normalize reduces text to a canonical comparison form: control and format
// characters become spaces, whitespace runs collapse to a single space, the
// result is NFC-normalized, trimmed and case-folded. Two files that differ
// only in line endings, encoding artifacts or letter case normalize to the
// same string.
func Normalize(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	started := false

	for _, r := range s {
		if unicode.IsSpace(r) || isControlOrFormat(r) {
			pendingSpace = started
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		started = true
		b.WriteRune(r)
	}

	return foldCaser.String(b.String())
}

// SafeFilename normalizes a metadata string for use as a filename: characters
// that are unsafe or meaningful to filesystems are translated, control and
// format characters become spaces and whitespace runs collapse. Case is kept.
func SafeFilename(s string) string {
	var t strings.Builder
	t.Grow(len(s))
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '|':
			t.WriteString(" - ")
		case '<':
			t.WriteByte('(')
		case '>':
			t.WriteByte(')')
		case '"':
			t.WriteString("''")
		case '?', '*':
			t.WriteByte(' ')
		default:
			if isControlOrFormat(r) {
				t.WriteByte(' ')
			} else {
				t.WriteRune(r)
			}
		}
	}

	return strings.Join(strings.Fields(norm.NFC.String(t.String())), " ")
}

// isControlOrFormat reports whether r falls in the Unicode C categories
// (control, format, private use, surrogate)
func isControlOrFormat(r rune) bool {
	return unicode.In(r, unicode.Cc, unicode.Cf, unicode.Co, unicode.Cs)
}
