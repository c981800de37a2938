package eligibility

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/unicode/norm"
)

// LinguaDetector identifies languages with lingua's n-gram models.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector over all supported languages.
// minRelativeDistance in [0, 0.99) makes short or ambiguous texts inconclusive
// instead of guessing; 0 disables the check.
func NewLinguaDetector(minRelativeDistance float64) *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithMinimumRelativeDistance(minRelativeDistance).
		Build()
	return &LinguaDetector{detector: detector}
}

// Detect returns the lower-case ISO 639-1 code of the detected language.
func (d *LinguaDetector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return "", false
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
