package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	rec := NewRecorder()
	style := Style{FontSize: 10} // 5pt per rune

	cases := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 50, nil},
		{"fits", "Apple", 50, []string{"Apple"}},
		{"word wrap", "Samsung Apple Oppo", 50, []string{"Samsung", "Apple Oppo"}},
		{"keeps newlines", "a b\nc", 50, []string{"a b", "c"}},
		{"greedy", "aa bb cc dd", 25, []string{"aa bb", "cc dd"}},
		{"long word split", "abcdefghijkl", 25, []string{"abcde", "fghij", "kl"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := wrapText(rec, tc.text, tc.width, style)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWrapText_InvalidUTF8(t *testing.T) {
	_, err := wrapText(NewRecorder(), "\xff", 50, Style{FontSize: 10})
	assert.ErrorIs(t, err, errInvalidUTF8)
}

func TestWrapText_NarrowColumnTerminates(t *testing.T) {
	lines, err := wrapText(NewRecorder(), "Samsung", 1, Style{FontSize: 10})
	require.NoError(t, err)
	assert.Len(t, lines, 7)
}
