package mathinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindDelimiterRange(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		cursor int
		want   Range
		found  bool
	}{
		{"cursor inside span", "solve $x+1$ now", 8, Range{6, 10}, true},
		{"odd delimiter count", "a $b$ c $d", 2, Range{}, false},
		{"cursor on opening delimiter", "$x$", 0, Range{0, 2}, true},
		{"cursor on closing delimiter", "$x$", 2, Range{0, 2}, true},
		{"cursor before span", "solve $x+1$ now", 3, Range{}, false},
		{"cursor after span", "solve $x+1$ now", 12, Range{}, false},
		{"between spans", "$a$ and $b$", 5, Range{}, false},
		{"second span", "$a$ and $b$", 9, Range{8, 10}, true},
		{"no delimiters", "plain text", 2, Range{}, false},
		{"empty text", "", 0, Range{}, false},
		{"empty span", "x $$ y", 3, Range{2, 3}, true},
		{"BMP characters are one unit", "π ≈ $3.14$", 6, Range{4, 9}, true},
		{"emoji counts as two units", "😀 $x$", 4, Range{3, 5}, true},
		{"cursor inside emoji prefix", "😀 $x$", 1, Range{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindDelimiterRange(tc.text, tc.cursor)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReplaceRange(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		start, end  int
		replacement string
		want        string
	}{
		{"whole span", "solve $x+1$ now", 6, 11, "$x+2$", "solve $x+2$ now"},
		{"insert", "ab", 1, 1, "-", "a-b"},
		{"prefix", "abc", 0, 1, "X", "Xbc"},
		{"end clamped", "abc", 1, 10, "X", "aX"},
		{"negative start clamped", "abc", -5, 1, "X", "Xbc"},
		{"start after end repeats overlap", "abcd", 3, 1, "-", "abc-bcd"},
		{"multibyte", "π=$x$", 2, 5, "$y$", "π=$y$"},
		{"after emoji", "😀 $x$", 3, 6, "$y$", "😀 $y$"},
		{"replace emoji", "a😀b", 1, 3, "-", "a-b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReplaceRange(tc.text, tc.start, tc.end, tc.replacement))
		})
	}
}

func TestExpressionAndSubstitute(t *testing.T) {
	text := "solve $x+1$ now"
	r, ok := FindDelimiterRange(text, 8)
	assert.True(t, ok)

	assert.Equal(t, "x+1", Expression(text, r))
	assert.Equal(t, "solve $\\frac{x}{2}$ now", Substitute(text, r, `\frac{x}{2}`))
	assert.Equal(t, text, Substitute(text, r, ""))
	assert.Equal(t, "", Expression("$$", Range{0, 1}))
}

func TestOffsetsMatchBrowserSelection(t *testing.T) {
	// The emoji is two units wide, as in an input's selectionStart.
	text := "👍 see $a$ and $b+c$"
	r, ok := FindDelimiterRange(text, 17)
	assert.True(t, ok)
	assert.Equal(t, Range{15, 19}, r)
	assert.Equal(t, "b+c", Expression(text, r))
	assert.Equal(t, "👍 see $a$ and $d$", Substitute(text, r, "d"))
}
