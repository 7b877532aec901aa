// Package mathinput locates and rewrites inline math spans ($...$) inside
// the chat input so they can be edited in the math keyboard.
//
// Offsets count UTF-16 code units, the unit of a browser input's
// selectionStart, so a cursor reported by the widget can be used as is.
// Characters outside the Basic Multilingual Plane (most emoji) take two
// units; an offset that falls between the halves of such a pair splits it,
// and each half decodes as U+FFFD.
package mathinput

import "unicode/utf16"

const Delimiter = '$'

// Range holds the offsets of an opening and a closing delimiter.
// Both ends are inclusive.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FindDelimiterRange returns the delimiter pair that encloses cursor.
// Delimiters pair up in order of appearance: first with second, third with
// fourth, and so on. An odd number of delimiters never matches.
func FindDelimiterRange(text string, cursor int) (Range, bool) {
	var idx []int
	for pos, u := range units(text) {
		if u == Delimiter {
			idx = append(idx, pos)
		}
	}

	if len(idx)%2 != 0 {
		return Range{}, false
	}

	for i := 0; i < len(idx); i += 2 {
		if idx[i] <= cursor && cursor <= idx[i+1] {
			return Range{Start: idx[i], End: idx[i+1]}, true
		}
	}
	return Range{}, false
}

// ReplaceRange returns text[:start] + replacement + text[end:].
// Offsets are clamped to the text; start > end repeats the overlap just as
// independent slicing would.
func ReplaceRange(text string, start, end int, replacement string) string {
	u := units(text)
	start = clamp(start, len(u))
	end = clamp(end, len(u))
	return decode(u[:start]) + replacement + decode(u[end:])
}

// Expression returns the text strictly between the delimiters of r.
func Expression(text string, r Range) string {
	u := units(text)
	start := clamp(r.Start+1, len(u))
	end := clamp(r.End, len(u))
	if start > end {
		return ""
	}
	return decode(u[start:end])
}

// Substitute replaces the whole $...$ span of r, both markers included,
// with expr wrapped in fresh markers. An empty expr leaves text as is.
func Substitute(text string, r Range, expr string) string {
	if expr == "" {
		return text
	}
	return ReplaceRange(text, r.Start, r.End+1, string(Delimiter)+expr+string(Delimiter))
}

func units(s string) []uint16 { return utf16.Encode([]rune(s)) }

func decode(u []uint16) string { return string(utf16.Decode(u)) }

func clamp(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i > n:
		return n
	}
	return i
}
