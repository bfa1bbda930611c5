package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// names maps the English language names some transcription APIs return.
var names = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
	"turkish":    "tr",
	"ukrainian":  "uk",
	"tamil":      "ta",
	"telugu":     "te",
	"bengali":    "bn",
	"marathi":    "mr",
	"urdu":       "ur",
}

// ToISO2 converts a language code (ISO 639-1/639-2) or English name to its
// shortest ISO 639 code. Unrecognized input yields "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if iso, ok := names[code]; ok {
		return iso
	}
	base, err := xlang.ParseBase(code)
	if err != nil {
		return ""
	}
	return base.String()
}

// DisplayName returns the English name for a language code, "Unknown" for
// empty input, or the uppercased input when it is not recognized.
func DisplayName(code string) string {
	iso := ToISO2(code)
	if iso == "" {
		if strings.TrimSpace(code) == "" {
			return "Unknown"
		}
		return strings.ToUpper(strings.TrimSpace(code))
	}
	tag, err := xlang.Parse(iso)
	if err != nil {
		return strings.ToUpper(iso)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(iso)
}
