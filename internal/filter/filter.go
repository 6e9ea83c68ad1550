// Package filter decides whether an incoming chat message is worth sending
// to a translation engine. Classification is a pure function of message
// content: it has no failure mode and defaults to Translate.
package filter

import (
	"strings"
	"unicode"

	"github.com/forPelevin/gomoji"

	"babelfeed/internal/logger"
	"babelfeed/pkg/langdetect"
)

type Class int

const (
	Translate Class = iota
	PassThrough
)

func (c Class) String() string {
	if c == PassThrough {
		return "pass_through"
	}
	return "translate"
}

// minDetectionConfidence gates the same-language short circuit; below it the
// detection result is ignored and the message is translated.
const minDetectionConfidence = 0.5

type Filter struct {
	targetLang string
	rules      []skipRule
	logger     logger.Logger
}

// New compiles the optional skip rules. An invalid rule is logged and
// dropped rather than failing construction.
func New(targetLang string, skipExprs []string, log logger.Logger) *Filter {
	f := &Filter{
		targetLang: targetLang,
		logger:     log,
	}

	for _, expr := range skipExprs {
		rule, err := compileSkipRule(expr)
		if err != nil {
			log.Warnw("Dropping invalid skip rule",
				"expression", expr,
				"error", err,
			)
			continue
		}
		f.rules = append(f.rules, rule)
	}

	return f
}

// Classify reports whether the message should be translated or passed
// through untouched.
func (f *Filter) Classify(text, sender, source string) Class {
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return PassThrough
	}
	if isNumericOnly(trimmed) {
		return PassThrough
	}
	if isEmojiOnly(trimmed) {
		return PassThrough
	}
	if f.matchesSkipRule(text, sender, source) {
		return PassThrough
	}

	lang, confidence := langdetect.Detect(trimmed)
	if lang != langdetect.Unknown && confidence >= minDetectionConfidence &&
		langdetect.SameBase(lang, f.targetLang) {
		return PassThrough
	}

	return Translate
}

func (f *Filter) matchesSkipRule(text, sender, source string) bool {
	for _, rule := range f.rules {
		matched, err := rule.eval(text, sender, source)
		if err != nil {
			// Rule errors never block translation.
			f.logger.Debugw("Skip rule evaluation failed",
				"expression", rule.expression,
				"error", err,
			)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func isNumericOnly(text string) bool {
	hasDigit := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		hasDigit = true
	}
	return hasDigit
}

func isEmojiOnly(text string) bool {
	if !gomoji.ContainsEmoji(text) {
		return false
	}
	return strings.TrimSpace(gomoji.RemoveEmojis(text)) == ""
}
