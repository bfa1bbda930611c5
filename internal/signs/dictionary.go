package signs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"voice2sign/internal/logging"
)

var assetExtensions = map[string]bool{".jpg": true, ".png": true, ".mp4": true, ".gif": true}

// Dictionary maps an uppercase sign name to one representative asset file.
type Dictionary map[string]string

// LoadDictionary scans dir for sign folders. A missing dataset yields an
// empty dictionary so the timeline falls back to fingerspelling and text.
func LoadDictionary(dir string, logger *slog.Logger) (Dictionary, error) {
	logger = logging.NewComponentLogger(logger, "signs")
	dict := make(Dictionary)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "sign dataset not found", "dataset_missing",
				logging.String("dataset_dir", dir),
				logging.String(logging.FieldErrorHint, "set paths.dataset_dir to the ISL image dataset"),
				logging.String(logging.FieldImpact, "every token is fingerspelled or shown as text"))
			return dict, nil
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if asset := firstAsset(filepath.Join(dir, entry.Name())); asset != "" {
			dict[strings.ToUpper(entry.Name())] = asset
		}
	}
	logger.Debug("sign dictionary loaded", logging.Int("signs", len(dict)))
	return dict, nil
}

func firstAsset(folder string) string {
	files, err := os.ReadDir(folder)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() && assetExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
			names = append(names, f.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(folder, names[0])
}

// Lookup returns the asset for token, matching case-insensitively.
func (d Dictionary) Lookup(token string) (string, bool) {
	path, ok := d[strings.ToUpper(token)]
	return path, ok
}
