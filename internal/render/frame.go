package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	letterColor   = color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF}
	spellingColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	progressColor = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xFF}
)

// Vertical positions of the frame text, measured from the top edge.
const (
	letterTop   = 10
	imageTop    = 50
	spellingTop = 420
	progressTop = 480
	bigPoints   = 72
	smallPoints = 32
)

type faces struct {
	big   font.Face
	small font.Face
}

func (f faces) Close() {
	f.big.Close()
	f.small.Close()
}

// Parsed fonts are shared; a font.Face keeps glyph buffers and must stay
// with one goroutine, so faces are built per animation.
var (
	fontsOnce sync.Once
	boldFont  *opentype.Font
	textFont  *opentype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
			return
		}
		textFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
		}
	})
	return fontsErr
}

// newFaces returns faces owned by the caller, who must Close them.
func newFaces() (faces, error) {
	if err := loadFonts(); err != nil {
		return faces{}, err
	}
	big, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: bigPoints, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return faces{}, fmt.Errorf("big face: %w", err)
	}
	small, err := opentype.NewFace(textFont, &opentype.FaceOptions{Size: smallPoints, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		big.Close()
		return faces{}, fmt.Errorf("small face: %w", err)
	}
	return faces{big: big, small: small}, nil
}

// frameSpec describes one fingerspelling frame.
type frameSpec struct {
	width, height int
	sample        image.Image
	letter        string
	word          string
	index, total  int
}

// drawFrame composes a frame onto a new RGBA canvas.
func drawFrame(spec frameSpec, f faces) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, spec.width, spec.height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	if spec.sample != nil {
		b := spec.sample.Bounds()
		left := (spec.width - b.Dx()) / 2
		target := image.Rect(left, imageTop, left+b.Dx(), imageTop+b.Dy())
		draw.Draw(canvas, target, spec.sample, b.Min, draw.Over)
	}

	drawCentered(canvas, f.big, spec.letter, letterTop, letterColor)
	drawCentered(canvas, f.small, "Spelling: "+spec.word, spellingTop, spellingColor)
	drawCentered(canvas, f.small, fmt.Sprintf("%d/%d", spec.index, spec.total), progressTop, progressColor)
	return canvas
}

// drawCentered writes text horizontally centred with its top edge at top.
func drawCentered(dst *image.RGBA, face font.Face, text string, top int, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	width := d.MeasureString(text).Ceil()
	x := (dst.Bounds().Dx() - width) / 2
	d.Dot = fixed.P(x, top+face.Metrics().Ascent.Ceil())
	d.DrawString(text)
}
