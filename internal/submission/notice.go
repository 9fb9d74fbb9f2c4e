package submission

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies a diff segment.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// Segment is one run of a word-level diff.
type Segment struct {
	Op   Op
	Text string
}

// Notice records a problem statement change seen mid-session.
type Notice struct {
	Old string
	New string
}

// Segments returns a semantic diff from Old to New.
func (n Notice) Segments() []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(n.Old, n.New, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	out := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		out = append(out, Segment{Op: op, Text: d.Text})
	}
	return out
}

// Plain renders the diff with [-removed-] and {+added+} markers.
func (n Notice) Plain() string {
	var b strings.Builder
	for _, s := range n.Segments() {
		switch s.Op {
		case OpInsert:
			b.WriteString("{+" + s.Text + "+}")
		case OpDelete:
			b.WriteString("[-" + s.Text + "-]")
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
