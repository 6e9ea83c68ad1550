// Package langdetect identifies the language of short chat messages.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Unknown is returned when no language can be determined.
const Unknown = "un"

// Detect returns the ISO 639-1 code of the detected language and a
// confidence in [0,1]. Chinese variants are unified as "zh".
func Detect(text string) (string, float64) {
	info := whatlanggo.Detect(text)

	code := info.Lang.Iso6391()
	if code == "" {
		return Unknown, 0.0
	}
	if strings.HasPrefix(code, "zh") {
		code = "zh"
	}
	return code, info.Confidence
}

// BaseCode strips a regional suffix, e.g. "en-US" -> "en".
func BaseCode(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		return lang[:i]
	}
	return lang
}

// SameBase reports whether two language tags share a base code.
func SameBase(a, b string) bool {
	return BaseCode(a) == BaseCode(b)
}
