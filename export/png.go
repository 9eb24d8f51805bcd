package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	FormatPNG = "png"
	FormatPDF = "pdf"

	DefaultScale    = 2
	defaultFontSize = 14
)

// Renderer turns a view into the bytes of one artifact format.
type Renderer interface {
	Render(ctx context.Context, v *View) ([]byte, error)
	ContentType() string
	Ext() string
}

// NewRenderer picks the renderer for a configured format.
func NewRenderer(format, fontPath string, scale int) (Renderer, error) {
	switch format {
	case FormatPNG, "":
		return NewPNGRenderer(fontPath, scale)
	case FormatPDF:
		return NewPDFRenderer(fontPath), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

var (
	inkColor  = color.Black
	ruleColor = color.Gray{Y: 0x99}
	mutedInk  = color.Gray{Y: 0x66}
)

type pngRenderer struct {
	font  *opentype.Font
	scale int
}

// NewPNGRenderer draws with the given TrueType/OpenType font, or with the
// built-in 7x13 bitmap face when fontPath is empty. The bitmap face has no
// Hangul glyphs.
func NewPNGRenderer(fontPath string, scale int) (*pngRenderer, error) {
	if scale < 1 {
		scale = 1
	}
	r := &pngRenderer{scale: scale}
	if fontPath == "" {
		return r, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	r.font, err = opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return r, nil
}

func (r *pngRenderer) ContentType() string { return "image/png" }
func (r *pngRenderer) Ext() string         { return ".png" }

// face returns the face to draw with and the factor the finished image
// still needs to be enlarged by.
func (r *pngRenderer) face() (font.Face, int, error) {
	if r.font == nil {
		return basicfont.Face7x13, r.scale, nil
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    defaultFontSize,
		DPI:     72 * float64(r.scale),
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("creating font face: %w", err)
	}
	return face, 1, nil
}

func (r *pngRenderer) Render(ctx context.Context, v *View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	face, upscale, err := r.face()
	if err != nil {
		return nil, err
	}
	if r.font != nil {
		defer face.Close()
	}

	img := newCanvas(face, v).draw()

	if upscale > 1 {
		b := img.Bounds()
		big := image.NewRGBA(image.Rect(0, 0, b.Dx()*upscale, b.Dy()*upscale))
		xdraw.NearestNeighbor.Scale(big, big.Bounds(), img, b, xdraw.Src, nil)
		img = big
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// canvas lays the sheet out as a title, header block, table and total line.
type canvas struct {
	face    font.Face
	view    *View
	lh      int // line height
	ascent  int
	pad     int
	margin  int
	colW    []int
	headers []string
}

func newCanvas(face font.Face, v *View) *canvas {
	m := face.Metrics()
	c := &canvas{
		face:   face,
		view:   v,
		lh:     m.Height.Ceil(),
		ascent: m.Ascent.Ceil(),
	}
	c.pad = c.lh / 2
	c.margin = c.lh
	c.headers = headerLines(v)

	c.colW = make([]int, len(columns))
	for i, h := range columns {
		c.colW[i] = c.measure(h)
	}
	for _, row := range v.Rows {
		for i, cell := range row.cells() {
			if w := c.measure(cell); w > c.colW[i] {
				c.colW[i] = w
			}
		}
	}
	for i := range c.colW {
		c.colW[i] += 2 * c.pad
	}
	return c
}

func headerLines(v *View) []string {
	lines := []string{"일자: " + v.Header.Date}
	for i, l := range strings.Split(v.Header.Issuer, "\n") {
		if i == 0 {
			l = "공급자: " + l
		}
		lines = append(lines, l)
	}
	for i, l := range strings.Split(v.Header.Recipient, "\n") {
		if i == 0 {
			l = "수신: " + l
		}
		lines = append(lines, l)
	}
	return lines
}

func (c *canvas) measure(s string) int {
	return font.MeasureString(c.face, s).Ceil()
}

func (c *canvas) tableWidth() int {
	w := 0
	for _, cw := range c.colW {
		w += cw
	}
	return w
}

func (c *canvas) size() (int, int) {
	w := c.tableWidth()
	for _, l := range append([]string{c.view.Title, c.totalLine()}, c.headers...) {
		if m := c.measure(l); m > w {
			w = m
		}
	}
	rowH := c.lh + c.pad
	h := c.lh*2 + // title plus gap
		c.lh*len(c.headers) + c.lh +
		rowH*(len(c.view.Rows)+1) + c.lh +
		c.lh // total
	if c.view.ShowChrome() {
		h += c.lh * 2
	}
	return w + 2*c.margin, h + 2*c.margin
}

func (c *canvas) totalLine() string {
	return "합계: " + c.view.GrandTotal
}

func (c *canvas) draw() *image.RGBA {
	w, h := c.size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	x, y := c.margin, c.margin
	c.text(img, c.view.Title, x, y, inkColor)
	y += c.lh * 2

	for _, l := range c.headers {
		c.text(img, l, x, y, inkColor)
		y += c.lh
	}
	y += c.lh

	rowH := c.lh + c.pad
	c.rule(img, x, y, c.tableWidth())
	c.cells(img, columns, x, y+c.pad/2)
	y += rowH
	c.rule(img, x, y, c.tableWidth())
	for _, row := range c.view.Rows {
		c.cells(img, row.cells(), x, y+c.pad/2)
		y += rowH
		c.rule(img, x, y, c.tableWidth())
	}
	y += c.lh

	total := c.totalLine()
	c.text(img, total, x+c.tableWidth()-c.measure(total), y, inkColor)
	y += c.lh

	if c.view.ShowChrome() {
		y += c.lh
		c.text(img, "[+ 항목 추가] [- 항목 삭제] [제출] [캡쳐]", x, y, mutedInk)
	}
	return img
}

func (c *canvas) cells(img *image.RGBA, cells []string, x, y int) {
	for i, cell := range cells {
		cx := x + c.pad
		// numbers are right aligned
		if i >= 2 && i <= 4 {
			cx = x + c.colW[i] - c.pad - c.measure(cell)
		}
		c.text(img, cell, cx, y, inkColor)
		x += c.colW[i]
	}
}

func (c *canvas) text(img *image.RGBA, s string, x, top int, ink color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: c.face,
		Dot:  fixed.P(x, top+c.ascent),
	}
	d.DrawString(s)
}

func (c *canvas) rule(img *image.RGBA, x, y, w int) {
	draw.Draw(img, image.Rect(x, y, x+w, y+1), image.NewUniform(ruleColor), image.Point{}, draw.Src)
}
