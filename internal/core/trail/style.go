package trail

import "github.com/samirrijal/isstrack/internal/core/domain"

// Style is the stroke used to draw a segment.
type Style struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Weight  int     `json:"weight"`
}

// CurrentStyle is used for the open segment.
var CurrentStyle = Style{Color: "#ff3b30", Opacity: 1.0, Weight: 3}

// fade holds the closed-segment tiers, newest first.
var fade = [...]Style{
	{Color: "#ff6b5e", Opacity: 0.8, Weight: 3},
	{Color: "#d9574c", Opacity: 0.6, Weight: 2},
	{Color: "#a6443b", Opacity: 0.4, Weight: 2},
	{Color: "#73302a", Opacity: 0.25, Weight: 2},
}

// ColorForRank maps a closed segment's recency rank (0 = newest) to its
// style. Ranks past the last tier share the dimmest one.
func ColorForRank(rank int) Style {
	switch {
	case rank < 0:
		return CurrentStyle
	case rank >= len(fade):
		return fade[len(fade)-1]
	default:
		return fade[rank]
	}
}

// StyledSegment is a segment with its recency rank and style.
type StyledSegment struct {
	Points  domain.Segment `json:"points"`
	Rank    int            `json:"rank"` // -1 for the current segment
	Current bool           `json:"current"`
	Style   Style          `json:"style"`
}

// Styled returns every non-empty segment, oldest first, with styles derived
// from the current ranks.
func (t *Trail) Styled() []StyledSegment {
	out := make([]StyledSegment, 0, t.SegmentCount())
	for i, s := range t.historical {
		rank := len(t.historical) - 1 - i
		out = append(out, StyledSegment{Points: s, Rank: rank, Style: ColorForRank(rank)})
	}
	if len(t.current) > 0 {
		out = append(out, StyledSegment{Points: t.Current(), Rank: -1, Current: true, Style: CurrentStyle})
	}
	return out
}
