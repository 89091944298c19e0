package svgtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func normalize(chunks ...string) string {
	var n Normalizer
	for _, c := range chunks {
		n.Append(c)
	}
	return n.Flush(false)
}

func TestNormalizerChunks(t *testing.T) {
	input := "a   \n  b"
	assert.Equal(t, "a b", normalize(input))
	for i := 0; i <= len(input); i++ {
		assert.Equal(t, "a b", normalize(input[:i], input[i:]), "split at %d", i)
		for j := i; j <= len(input); j++ {
			assert.Equal(t, "a b", normalize(input[:i], input[i:j], input[j:]))
		}
	}
}

func TestNormalizerCollapse(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"abc", "abc"},
		{"a\tb", "a b"},
		{"a\r\n\r\nb", "a b"},
		{"\n  SVG  \n", " SVG"},
		{"one  two   three ", "one two three"},
	} {
		assert.Equal(t, test.expected, normalize(test.input), "input %q", test.input)
	}
}

func TestNormalizerFlush(t *testing.T) {
	var n Normalizer
	assert.False(t, n.CanFlush(false))
	assert.True(t, n.CanFlush(true))

	n.Append(" \n\t ")
	assert.True(t, n.CanFlush(false))
	assert.Equal(t, " ", n.Flush(true))
	assert.Equal(t, SegmentStart, n.State())

	n.Append("end  ")
	assert.Equal(t, WhitespaceAfterChar, n.State())
	assert.Equal(t, "end", n.Flush(false))

	n.Append("a\n")
	assert.Equal(t, SegmentBreak, n.State())
	assert.Equal(t, "a ", n.Flush(true))
	assert.Equal(t, "", n.Flush(false))
}

func TestTextRunClusters(t *testing.T) {
	run := NewTextRun("éx")
	assert.Equal(t, []string{"é", "x"}, run.Clusters())
	assert.Equal(t, "éx", run.String())

	run = NewTextRun("a\r\nb")
	assert.Equal(t, []string{"a", "\r\n", "b"}, run.Clusters())

	assert.Equal(t, 0, NewTextRun("").Len())
}
