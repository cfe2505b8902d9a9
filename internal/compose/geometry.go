package compose

import (
	"image"
	"math"
)

// Card geometry in points. Pixel values are these times the renderer scale.
const (
	edgePad    = 16
	blockWidth = 176
	blockPad   = 8
	nameHeight = 16
	rowHeight  = 22
	labelWidth = 70
	trackInset = 12
	badgePad   = 6
	textHeight = 13
	dateChars  = 10
	glyphWidth = 7
)

type track struct {
	label  image.Point
	x0, x1 int
	y      int
}

// markerX is the pixel column of the marker for value v.
func (t track) markerX(v int) int {
	return t.x0 + int(math.Round(MarkerOffset(v)*float64(t.x1-t.x0)))
}

type geometry struct {
	date     image.Rectangle
	dateText image.Point
	block    image.Rectangle
	name     image.Point
	tracks   []track
}

func (r *Renderer) geometry(l Layout, axes int) geometry {
	s := r.scale
	var g geometry

	dw := dateChars*glyphWidth + 2*badgePad
	dh := textHeight + 2*badgePad
	g.date = r.corner(l.Date, dw, dh)
	g.dateText = g.date.Min.Add(image.Pt(badgePad*s, badgePad*s))

	bh := 2*blockPad + nameHeight + axes*rowHeight
	g.block = r.corner(l.Block, blockWidth, bh)
	g.name = g.block.Min.Add(image.Pt(blockPad*s, blockPad*s))

	g.tracks = make([]track, axes)
	for i := range axes {
		top := g.block.Min.Y + (blockPad+nameHeight+i*rowHeight+(rowHeight-textHeight)/2)*s
		g.tracks[i] = track{
			label: image.Pt(g.block.Min.X+blockPad*s, top),
			x0:    g.block.Min.X + (blockPad+labelWidth)*s,
			x1:    g.block.Max.X - trackInset*s,
			y:     top + textHeight*s/2,
		}
	}
	return g
}

// corner places a w x h box (points) in corner c, returned in pixels.
func (r *Renderer) corner(c Corner, w, h int) image.Rectangle {
	s := r.scale
	x := edgePad
	if !c.left() {
		x = r.width - edgePad - w
	}
	y := edgePad
	if !c.top() {
		y = r.height - edgePad - h
	}
	return image.Rect(x*s, y*s, (x+w)*s, (y+h)*s)
}
