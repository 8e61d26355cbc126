package feed

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

const unknownLanguage = "unknown"

// LanguageDetector wraps the statistical detector with the fallback rules
// the normalizer needs.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector over all spoken languages. The model
// load is the expensive part, so one instance is shared per process.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllSpokenLanguages().
			WithLowAccuracyMode().
			Build(),
	}
}

// Detect returns the ISO 639-1 code of the sample's language. Blank samples
// yield "unknown" without consulting the detector. When the detector cannot
// classify the sample (or no detector is wired), the source's configured
// language wins, itself defaulting to "unknown" when unset.
func (d *LanguageDetector) Detect(sample, sourceLanguage string) string {
	if strings.TrimSpace(sample) == "" {
		return unknownLanguage
	}

	if d == nil || d.detector == nil {
		return sourceFallback(sourceLanguage)
	}

	language, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return sourceFallback(sourceLanguage)
	}

	return strings.ToLower(language.IsoCode639_1().String())
}

func sourceFallback(sourceLanguage string) string {
	sourceLanguage = strings.TrimSpace(sourceLanguage)
	if sourceLanguage == "" {
		return unknownLanguage
	}
	return sourceLanguage
}
