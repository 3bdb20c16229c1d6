package archive

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChunkType marks a diff chunk as added or removed text.
type ChunkType string

const (
	ChunkAdded   ChunkType = "added"
	ChunkRemoved ChunkType = "removed"
)

// Chunk is one changed run of lines.
type Chunk struct {
	Type    ChunkType `json:"type"`
	Content string    `json:"content"`
}

// DiffResult compares two captures.
type DiffResult struct {
	BaseID string  `json:"base_id"`
	HeadID string  `json:"head_id"`
	Chunks []Chunk `json:"chunks"`
}

// Changed reports whether the captures differ.
func (d *DiffResult) Changed() bool { return len(d.Chunks) > 0 }

// Text renders the chunks with a +/- prefix on every line.
func (d *DiffResult) Text() string {
	var b strings.Builder
	for _, c := range d.Chunks {
		prefix := "+ "
		if c.Type == ChunkRemoved {
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(c.Content, "\n") {
			if line == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// diffLines compares base and head line by line. Captures are stored
// indented, so a line is roughly one JSON member.
func diffLines(baseID, headID string, base, head []byte) *DiffResult {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(base), string(head))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	res := &DiffResult{BaseID: baseID, HeadID: headID, Chunks: []Chunk{}}
	for _, d := range diffs {
		var typ ChunkType
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = ChunkAdded
		case diffmatchpatch.DiffDelete:
			typ = ChunkRemoved
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		res.Chunks = append(res.Chunks, Chunk{Type: typ, Content: d.Text})
	}
	return res
}
