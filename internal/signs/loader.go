package signs

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"voice2sign/internal/logging"
)

// Alphabet lists the characters the dataset can cover.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

// ErrUnavailable is returned when the dataset has no images for a character.
var ErrUnavailable = errors.New("no sign images available")

// Loader picks sample images from the dataset.
type Loader struct {
	dir       string
	logger    *slog.Logger
	available map[string][]string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLoader scans dir once and records the images per character.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	l := &Loader{
		dir:       dir,
		logger:    logging.NewComponentLogger(logger, "signs"),
		available: make(map[string][]string),
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	for _, ch := range Alphabet {
		letter := string(ch)
		images := listImages(filepath.Join(dir, letter))
		if len(images) > 0 {
			l.available[letter] = images
		}
	}
	l.logger.Info("sign dataset scanned",
		logging.String("dataset_dir", dir),
		logging.Int("characters", len(l.available)))
	return l
}

// WithSeed makes sample selection deterministic (for testing).
func (l *Loader) WithSeed(seed uint64) *Loader {
	l.mu.Lock()
	l.rng = rand.New(rand.NewPCG(seed, seed))
	l.mu.Unlock()
	return l
}

func listImages(folder string) []string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}
	var images []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".png":
			if !e.IsDir() {
				images = append(images, filepath.Join(folder, e.Name()))
			}
		}
	}
	sort.Strings(images)
	return images
}

// Available returns the image count per character that has any images.
func (l *Loader) Available() map[string]int {
	counts := make(map[string]int, len(l.available))
	for letter, images := range l.available {
		counts[letter] = len(images)
	}
	return counts
}

// Has reports whether the dataset covers letter.
func (l *Loader) Has(letter string) bool {
	return len(l.available[normalizeLetter(letter)]) > 0
}

// normalizeLetter uppercases s and keeps its first character, so a word maps
// to the sign for its initial.
func normalizeLetter(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, r := range s {
		return string(r)
	}
	return ""
}

// SignImage returns a random sample for the first character of letterOrWord,
// resized to size×size.
func (l *Loader) SignImage(letterOrWord string, size int) (image.Image, error) {
	letter := normalizeLetter(letterOrWord)
	images := l.available[letter]
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnavailable, letter)
	}
	l.mu.Lock()
	path := images[l.rng.IntN(len(images))]
	l.mu.Unlock()
	return loadResized(path, size)
}

// SignBatch returns up to n distinct random samples for letter.
func (l *Loader) SignBatch(letter string, n, size int) ([]image.Image, error) {
	letter = normalizeLetter(letter)
	images := l.available[letter]
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnavailable, letter)
	}
	l.mu.Lock()
	order := l.rng.Perm(len(images))
	l.mu.Unlock()
	n = max(min(n, len(images)), 0)
	out := make([]image.Image, 0, n)
	for _, idx := range order[:n] {
		img, err := loadResized(images[idx], size)
		if err != nil {
			logging.WarnWithContext(l.logger, "skipping unreadable sign image", "sign_image_invalid",
				logging.String("path", images[idx]),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove or replace the corrupt dataset file"),
				logging.String(logging.FieldImpact, "one fewer sample shown"))
			continue
		}
		out = append(out, img)
	}
	return out, nil
}

func loadResized(path string, size int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return Resize(src, size), nil
}

// Resize scales src to a size×size RGBA image.
func Resize(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
