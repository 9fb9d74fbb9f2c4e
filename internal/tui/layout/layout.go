// Package layout maps terminal widths to dashboard arrangements.
package layout

import (
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// Width thresholds.
//   - below SplitViewThreshold the dashboard stacks every panel and the
//     profile sidebar starts collapsed
//   - from SplitViewThreshold the profile sits in a sidebar beside the main
//     column
//   - from WideViewThreshold chat and announcements move to a third column
const (
	SplitViewThreshold = 90
	WideViewThreshold  = 140
)

// Tier describes the current width bucket.
type Tier int

const (
	TierNarrow Tier = iota
	TierSplit
	TierWide
)

// TierForWidth maps a terminal width to a tier.
func TierForWidth(width int) Tier {
	switch {
	case width >= WideViewThreshold:
		return TierWide
	case width >= SplitViewThreshold:
		return TierSplit
	default:
		return TierNarrow
	}
}

// ProfileCollapsedByDefault reports whether the profile panel starts
// collapsed at width.
func ProfileCollapsedByDefault(width int) bool {
	return TierForWidth(width) == TierNarrow
}

// Columns splits total into sidebar, main and side column widths for the
// tier. Unused columns are zero. A collapsed sidebar gives its space to
// the main column.
func Columns(total int, collapsed bool) (sidebar, main, side int) {
	switch TierForWidth(total) {
	case TierWide:
		sidebar = total * 24 / 100
		side = total * 32 / 100
	case TierSplit:
		sidebar = total * 32 / 100
	}
	if collapsed {
		sidebar = 0
	}
	main = total - sidebar - side
	return sidebar, main, side
}

// Truncate trims s to at most max display cells, appending "…" when cut.
// Wide glyphs and emoji count as two cells.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}

// Wrap word-wraps s to width display cells.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
