// Package compose renders the shareable wine card.
package compose

import (
	"fmt"

	"github.com/iudanet/winelog/internal/models"
)

// Corner is a corner of the card.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) left() bool { return c == TopLeft || c == BottomLeft }
func (c Corner) top() bool  { return c == TopLeft || c == TopRight }

// Layout places the date badge and the name/tasting block in two corners.
type Layout struct {
	Name  string
	Date  Corner
	Block Corner
}

var (
	LeftBottomRightTop = Layout{Name: "left-bottom-right-top", Date: BottomLeft, Block: TopRight}
	RightBottomLeftTop = Layout{Name: "right-bottom-left-top", Date: BottomRight, Block: TopLeft}
	LeftTopRightBottom = Layout{Name: "left-top-right-bottom", Date: TopLeft, Block: BottomRight}
	RightTopLeftBottom = Layout{Name: "right-top-left-bottom", Date: TopRight, Block: BottomLeft}
)

// Layouts lists the presets in display order. The first one is the default.
var Layouts = []Layout{
	LeftBottomRightTop,
	RightBottomLeftTop,
	LeftTopRightBottom,
	RightTopLeftBottom,
}

// DefaultLayout is used when no layout is chosen.
var DefaultLayout = LeftBottomRightTop

// ParseLayout returns the preset named name.
func ParseLayout(name string) (Layout, error) {
	if name == "" {
		return DefaultLayout, nil
	}
	for _, l := range Layouts {
		if l.Name == name {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("unknown layout %q", name)
}

func (l Layout) String() string {
	return l.Name
}

// Axis is one row of the tasting indicator.
type Axis struct {
	Label string
	Value func(models.WineData) int
}

// Axes are drawn top to bottom in this order.
var Axes = []Axis{
	{Label: "BODY", Value: func(w models.WineData) int { return w.Body }},
	{Label: "TANNIN", Value: func(w models.WineData) int { return w.Tannin }},
	{Label: "ACIDITY", Value: func(w models.WineData) int { return w.Acidity }},
	{Label: "SWEETNESS", Value: func(w models.WineData) int { return w.Sweetness }},
}

// MarkerOffset is the position of the marker along a track, in [0, 1].
func MarkerOffset(v int) float64 {
	return float64(models.ClampScale(v)-models.MinScale) / float64(models.MaxScale-models.MinScale)
}
