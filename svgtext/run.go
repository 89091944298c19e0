package svgtext

import (
	"strings"

	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/text/unicode/norm"
)

// TextRun is an immutable sequence of user-perceived characters
// (grapheme clusters), sharing one styling context.
type TextRun struct {
	clusters []string
}

// NewTextRun splits the NFC form of `text` in grapheme clusters.
func NewTextRun(text string) TextRun {
	text = norm.NFC.String(text)
	if text == "" {
		return TextRun{}
	}
	var seg segmenter.Segmenter
	seg.Init([]rune(text))
	iter := seg.GraphemeIterator()
	var clusters []string
	for iter.Next() {
		clusters = append(clusters, string(iter.Grapheme().Text))
	}
	return TextRun{clusters: clusters}
}

// Len returns the number of clusters.
func (r TextRun) Len() int { return len(r.clusters) }

// Cluster returns the i-th cluster.
func (r TextRun) Cluster(i int) string { return r.clusters[i] }

// Clusters returns the clusters of the run, which must not be modified.
func (r TextRun) Clusters() []string { return r.clusters }

func (r TextRun) String() string { return strings.Join(r.clusters, "") }
