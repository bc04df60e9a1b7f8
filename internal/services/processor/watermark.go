package processor

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"golang.org/x/image/font"
)

// textBox is the ink bounds of a string relative to its baseline origin,
// rounded outward to whole pixels.
type textBox struct {
	minX, minY, maxX, maxY int
}

func (b textBox) width() int  { return b.maxX - b.minX }
func (b textBox) height() int { return b.maxY - b.minY }

func measure(face font.Face, text string) textBox {
	bounds, _ := font.BoundString(face, text)
	return textBox{
		minX: bounds.Min.X.Floor(),
		minY: bounds.Min.Y.Floor(),
		maxX: bounds.Max.X.Ceil(),
		maxY: bounds.Max.Y.Ceil(),
	}
}

// Placement is where one anchored line lands: Rect is its ink box in image
// coordinates and Dot the baseline origin to draw it from.
type Placement struct {
	Text string
	Rect image.Rectangle
	Dot  image.Point
}

// AnchoredLayout stacks texts bottom-up against the bottom-right corner of a
// width x height image. Texts are placed last-to-first: the last one sits on
// the bottom margin and texts[i] ends up above texts[i+1]. The result is in
// drawing order, the reverse of texts. Texts with no ink are skipped.
func AnchoredLayout(face font.Face, texts []string, width, height, margin int) []Placement {
	placements := make([]Placement, 0, len(texts))
	cursor := height - margin

	for i := len(texts) - 1; i >= 0; i-- {
		text := texts[i]
		box := measure(face, text)
		if box.width() <= 0 || box.height() <= 0 {
			continue
		}

		left := width - margin - box.width()
		top := cursor - box.height()

		placements = append(placements, Placement{
			Text: text,
			Rect: image.Rect(left, top, left+box.width(), cursor),
			Dot:  image.Pt(left-box.minX, top-box.minY),
		})
		cursor = top
	}

	return placements
}

// TileGrid is the set of baseline anchors for tiled mode.
type TileGrid struct {
	TileWidth  int
	TileHeight int
	Xs         []int
	Ys         []int
}

// Points expands the grid row by row.
func (g TileGrid) Points() []image.Point {
	pts := make([]image.Point, 0, len(g.Xs)*len(g.Ys))
	for _, y := range g.Ys {
		for _, x := range g.Xs {
			pts = append(pts, image.Pt(x, y))
		}
	}
	return pts
}

// NewTileGrid lays cells of (textW+padding) x (textH+padding) over a
// width x height image. Columns start one cell left of the image, rows one
// cell above it, and rows are two cell heights apart.
func NewTileGrid(width, height, textW, textH, padding int) TileGrid {
	g := TileGrid{
		TileWidth:  textW + padding,
		TileHeight: textH + padding,
	}
	if g.TileWidth <= 0 || g.TileHeight <= 0 {
		return g
	}

	for x := -g.TileWidth; x < width; x += g.TileWidth {
		g.Xs = append(g.Xs, x)
	}
	for y := -g.TileHeight; y < height; y += 2 * g.TileHeight {
		g.Ys = append(g.Ys, y)
	}

	return g
}

// drawOverlay renders the watermark for spec onto a transparent canvas the
// size of bounds.
func (p *ImageProcessor) drawOverlay(bounds image.Rectangle, spec models.WatermarkSpec, face font.Face) image.Image {
	w, h := bounds.Dx(), bounds.Dy()
	dc := gg.NewContext(w, h)
	dc.SetFontFace(face)
	dc.SetColor(spec.Style.Tint)

	switch spec.Layout {
	case models.LayoutTiled:
		p.drawTiled(dc, face, spec, w, h)
	default:
		for _, pl := range AnchoredLayout(face, spec.Texts, w, h, spec.Margin) {
			dc.DrawString(pl.Text, float64(pl.Dot.X), float64(pl.Dot.Y))
		}
	}

	return dc.Image()
}

func (p *ImageProcessor) drawTiled(dc *gg.Context, face font.Face, spec models.WatermarkSpec, w, h int) {
	text := spec.Texts[0]
	box := measure(face, text)
	grid := NewTileGrid(w, h, box.width(), box.height(), spec.Padding)

	// Screen y grows downward, so a counter-clockwise turn is negative.
	angle := gg.Radians(-spec.Angle)
	for _, pt := range grid.Points() {
		x, y := float64(pt.X), float64(pt.Y)
		dc.Push()
		dc.RotateAbout(angle, x, y)
		dc.DrawString(text, x, y)
		dc.Pop()
	}
}
