// Package report projects a meeting into a fixed-width printable layout and
// rasterizes it to a PNG for sharing.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"visitbook/internal/domain"
)

const (
	pageWidth  = 400
	margin     = 24
	lineGap    = 6
	thumbSize  = 128
	sectionGap = 16
)

var (
	colorText   = color.RGBA{33, 37, 41, 255}
	colorMuted  = color.RGBA{134, 142, 150, 255}
	colorAccent = color.RGBA{13, 110, 253, 255}
	colorRule   = color.RGBA{222, 226, 230, 255}
	colorBox    = color.RGBA{248, 249, 250, 255}
	colorWhite  = color.RGBA{255, 255, 255, 255}
)

type Renderer struct {
	title   font.Face
	heading font.Face
	body    font.Face
	small   font.Face
}

// NewRenderer parses the embedded Go fonts and prepares the faces used by
// the layout.
func NewRenderer() (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	r := &Renderer{}
	faces := []struct {
		dst  *font.Face
		src  *opentype.Font
		size float64
	}{
		{&r.title, bold, 22},
		{&r.heading, bold, 15},
		{&r.body, regular, 13},
		{&r.small, regular, 11},
	}
	for _, f := range faces {
		face, err := opentype.NewFace(f.src, &opentype.FaceOptions{
			Size: f.size, DPI: 72, Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build font face: %w", err)
		}
		*f.dst = face
	}
	return r, nil
}

// Render draws the meeting report. photos maps a locator to its decoded
// image; locators missing from the map are skipped, so a lost blob degrades
// the report instead of failing it.
func (r *Renderer) Render(m domain.Meeting, photos map[string]image.Image) (image.Image, error) {
	// Measure pass computes the height, draw pass fills the canvas.
	height := r.layout(nil, m, photos)

	canvas := image.NewRGBA(image.Rect(0, 0, pageWidth, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)
	r.layout(canvas, m, photos)

	return canvas, nil
}

// RenderPNG renders the meeting and encodes it as PNG.
func (r *Renderer) RenderPNG(m domain.Meeting, photos map[string]image.Image) ([]byte, error) {
	img, err := r.Render(m, photos)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// layout walks the report top to bottom, drawing onto dst when non-nil, and
// returns the total height consumed. Running the same code for measuring
// and drawing keeps the two in lockstep.
func (r *Renderer) layout(dst *image.RGBA, m domain.Meeting, photos map[string]image.Image) int {
	y := margin + faceHeight(r.title)

	r.textCentered(dst, y, m.CustomerName+" — Meeting Report", r.title, colorText)
	y += faceHeight(r.small) + lineGap
	r.textCentered(dst, y, m.Date, r.small, colorMuted)
	y += sectionGap

	// Customer info box.
	boxTop := y
	y += 12 + faceHeight(r.heading)
	boxLines := []string{
		"Customer: " + m.CustomerName,
		"Purpose: " + m.Purpose,
		"Status: " + m.Status,
	}
	boxBottom := y + len(boxLines)*(faceHeight(r.body)+lineGap) + 12
	if dst != nil {
		fillRect(dst, margin/2, boxTop, pageWidth-margin/2, boxBottom, colorBox)
	}
	r.text(dst, margin, y, "Customer", r.heading, colorText)
	for _, line := range boxLines {
		y += faceHeight(r.body) + lineGap
		r.text(dst, margin, y, line, r.body, colorText)
	}
	y = boxBottom + sectionGap

	y += faceHeight(r.heading)
	r.text(dst, margin, y, "Properties", r.heading, colorText)
	y += sectionGap / 2

	for i, prop := range m.Properties {
		if dst != nil {
			fillRect(dst, margin, y, pageWidth-margin, y+1, colorRule)
		}
		y += sectionGap/2 + faceHeight(r.heading)

		r.text(dst, margin, y, fmt.Sprintf("%d. %s", i+1, prop.Name), r.heading, colorAccent)
		y += faceHeight(r.small) + lineGap
		r.text(dst, margin, y, prop.Address, r.small, colorMuted)
		y += lineGap

		if thumbs := r.propertyPhotos(prop, photos); len(thumbs) > 0 {
			y += lineGap
			x := margin
			for _, thumb := range thumbs {
				if dst != nil {
					drawThumbnail(dst, x, y, thumb)
				}
				x += thumbSize + 8
			}
			y += thumbSize + lineGap
		}

		for _, note := range prop.VisitNotes {
			for _, line := range wrapText(r.body, "• "+note, pageWidth-2*margin) {
				y += faceHeight(r.body) + lineGap
				r.text(dst, margin, y, line, r.body, colorText)
			}
		}

		if prop.CustomerReaction != "" {
			for _, line := range wrapText(r.body, "Reaction: "+prop.CustomerReaction, pageWidth-2*margin) {
				y += faceHeight(r.body) + lineGap
				r.text(dst, margin, y, line, r.body, colorText)
			}
		}

		y += sectionGap
	}

	if dst != nil {
		fillRect(dst, margin, y, pageWidth-margin, y+1, colorRule)
	}
	y += sectionGap/2 + faceHeight(r.small)
	r.textCentered(dst, y, "Generated from meeting notes", r.small, colorMuted)
	y += margin

	return y
}

func (r *Renderer) propertyPhotos(prop domain.PropertyVisit, photos map[string]image.Image) []image.Image {
	var thumbs []image.Image
	for _, locator := range prop.Photos {
		if img, ok := photos[locator]; ok && img != nil {
			thumbs = append(thumbs, img)
		}
	}
	return thumbs
}

func (r *Renderer) text(dst *image.RGBA, x, baseline int, s string, face font.Face, c color.Color) {
	if dst == nil {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func (r *Renderer) textCentered(dst *image.RGBA, baseline int, s string, face font.Face, c color.Color) {
	if dst == nil {
		return
	}
	width := font.MeasureString(face, s).Ceil()
	r.text(dst, (pageWidth-width)/2, baseline, s, face, c)
}

// drawThumbnail scales img into a thumbSize square at (x, y).
func drawThumbnail(dst *image.RGBA, x, y int, img image.Image) {
	rect := image.Rect(x, y, x+thumbSize, y+thumbSize)
	draw.BiLinear.Scale(dst, rect, img, img.Bounds(), draw.Src, nil)
}

func fillRect(dst *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(dst, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

func faceHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

// wrapText splits s into lines no wider than maxWidth, breaking on spaces.
// A single word wider than maxWidth gets a line of its own.
func wrapText(face font.Face, s string, maxWidth int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
