package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"voice2sign/internal/fileutil"
	"voice2sign/internal/gloss"
	"voice2sign/internal/logging"
	"voice2sign/internal/textutil"
)

// ErrNoFrames is returned when none of the requested letters has a sign image.
var ErrNoFrames = errors.New("no frames created")

// ImageSource supplies sign samples.
type ImageSource interface {
	SignImage(letterOrWord string, size int) (image.Image, error)
}

// Options controls frame geometry and timing. Delays are milliseconds.
type Options struct {
	GIFDir          string
	FrameWidth      int
	FrameHeight     int
	ImageSize       int
	LetterDelayMS   int
	TokenDelayMS    int
	CombinedDelayMS int
	HoldFrames      int
}

// DefaultOptions returns the stock frame layout.
func DefaultOptions(gifDir string) Options {
	return Options{
		GIFDir:          gifDir,
		FrameWidth:      500,
		FrameHeight:     550,
		ImageSize:       350,
		LetterDelayMS:   800,
		TokenDelayMS:    300,
		CombinedDelayMS: 250,
		HoldFrames:      2,
	}
}

// Renderer builds fingerspelling GIFs.
type Renderer struct {
	opts   Options
	source ImageSource
	logger *slog.Logger
}

// New creates a renderer reading samples from source.
func New(opts Options, source ImageSource, logger *slog.Logger) *Renderer {
	defaults := DefaultOptions(opts.GIFDir)
	if opts.FrameWidth <= 0 {
		opts.FrameWidth = defaults.FrameWidth
	}
	if opts.FrameHeight <= 0 {
		opts.FrameHeight = defaults.FrameHeight
	}
	if opts.ImageSize <= 0 {
		opts.ImageSize = defaults.ImageSize
	}
	if opts.LetterDelayMS <= 0 {
		opts.LetterDelayMS = defaults.LetterDelayMS
	}
	if opts.TokenDelayMS <= 0 {
		opts.TokenDelayMS = defaults.TokenDelayMS
	}
	if opts.CombinedDelayMS <= 0 {
		opts.CombinedDelayMS = defaults.CombinedDelayMS
	}
	if opts.HoldFrames < 0 {
		opts.HoldFrames = 0
	}
	return &Renderer{opts: opts, source: source, logger: logging.NewComponentLogger(logger, "render")}
}

// Spell builds an animation spelling each word letter by letter. Letters
// without a sign sample are skipped.
func (r *Renderer) Spell(words []string, delayMS int) (*gif.GIF, error) {
	f, err := newFaces()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	anim := &gif.GIF{LoopCount: 0}
	delay := max(delayMS/10, 1)
	for _, word := range words {
		word = strings.ToUpper(strings.TrimSpace(word))
		letters := []rune(word)
		var last *image.Paletted
		for i, letter := range letters {
			sample, err := r.source.SignImage(string(letter), r.opts.ImageSize)
			if err != nil {
				r.logger.Debug("letter skipped", logging.String("letter", string(letter)), logging.Error(err))
				continue
			}
			canvas := drawFrame(frameSpec{
				width:  r.opts.FrameWidth,
				height: r.opts.FrameHeight,
				sample: sample,
				letter: string(letter),
				word:   word,
				index:  i + 1,
				total:  len(letters),
			}, f)
			last = quantize(canvas)
			anim.Image = append(anim.Image, last)
			anim.Delay = append(anim.Delay, delay)
		}
		if last != nil {
			for range r.opts.HoldFrames {
				anim.Image = append(anim.Image, last)
				anim.Delay = append(anim.Delay, delay)
			}
		}
	}
	if len(anim.Image) == 0 {
		return nil, ErrNoFrames
	}
	return anim, nil
}

func quantize(src *image.RGBA) *image.Paletted {
	dst := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, image.Point{})
	return dst
}

// Encode spells words and returns the GIF bytes.
func (r *Renderer) Encode(words []string, delayMS int) ([]byte, error) {
	anim, err := r.Spell(words, delayMS)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return buf.Bytes(), nil
}

// LetterPath is the cached GIF location for letter.
func (r *Renderer) LetterPath(letter string) string {
	return filepath.Join(r.opts.GIFDir, "letter_"+textutil.SanitizeToken(letter)+".gif")
}

// TokenPath is the cached GIF location for token.
func (r *Renderer) TokenPath(token string) string {
	return filepath.Join(r.opts.GIFDir, "token_"+textutil.SanitizeToken(token)+".gif")
}

// LetterGIF returns the path of a slow single-letter GIF, creating it on
// first use.
func (r *Renderer) LetterGIF(letter string) (string, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return "", ErrNoFrames
	}
	letter = string([]rune(letter)[0])
	return r.cached(r.LetterPath(letter), []string{letter}, r.opts.LetterDelayMS)
}

// TokenGIF returns the path of a GIF spelling token, creating it on first use.
func (r *Renderer) TokenGIF(token string) (string, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" || token == gloss.Pause {
		return "", ErrNoFrames
	}
	return r.cached(r.TokenPath(token), []string{token}, r.opts.TokenDelayMS)
}

func (r *Renderer) cached(path string, words []string, delayMS int) (string, error) {
	if fileutil.Exists(path) {
		return path, nil
	}
	data, err := r.Encode(words, delayMS)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("write gif: %w", err)
	}
	r.logger.Debug("gif created", logging.String("path", path), logging.Int("bytes", len(data)))
	return path, nil
}

// CombinedGIF spells every token of a gloss sequence at the fast combined
// pace. Pause markers are dropped. The GIF passes through a uniquely named
// scratch file that is removed before returning.
func (r *Renderer) CombinedGIF(tokens []string) ([]byte, error) {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != gloss.Pause && strings.TrimSpace(tok) != "" {
			words = append(words, tok)
		}
	}
	data, err := r.Encode(words, r.opts.CombinedDelayMS)
	if err != nil {
		return nil, err
	}
	scratch := filepath.Join(r.opts.GIFDir, "combined_"+uuid.NewString()+".gif")
	if err := fileutil.WriteFileAtomic(scratch, data); err != nil {
		return nil, fmt.Errorf("write combined gif: %w", err)
	}
	defer os.Remove(scratch)
	return os.ReadFile(scratch)
}

// SignPNG encodes one random sample for letter as PNG.
func (r *Renderer) SignPNG(letter string, size int) ([]byte, error) {
	if size <= 0 {
		size = r.opts.ImageSize
	}
	img, err := r.source.SignImage(letter, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
