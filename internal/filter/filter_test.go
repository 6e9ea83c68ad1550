package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"babelfeed/internal/logger"
)

func TestClassifyContentChecks(t *testing.T) {
	f := New("en-US", nil, logger.NopLogger())

	tests := []struct {
		name string
		text string
		want Class
	}{
		{
			name: "empty message",
			text: "",
			want: PassThrough,
		},
		{
			name: "whitespace only",
			text: "   \t ",
			want: PassThrough,
		},
		{
			name: "numeric only",
			text: "12345",
			want: PassThrough,
		},
		{
			name: "numeric with spaces",
			text: "1 2 3",
			want: PassThrough,
		},
		{
			name: "emoji only",
			text: "😀😀",
			want: PassThrough,
		},
		{
			name: "emoji with spaces",
			text: "😀 🎉",
			want: PassThrough,
		},
		{
			name: "emoji plus words",
			text: "😀 すごい",
			want: Translate,
		},
		{
			name: "foreign text",
			text: "これはテストです",
			want: Translate,
		},
		{
			name: "digits inside words",
			text: "7 wonders",
			want: Translate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Classify(tt.text, "viewer", "twitch"))
		})
	}
}

func TestClassifySameLanguageShortCircuit(t *testing.T) {
	f := New("en-US", nil, logger.NopLogger())

	// Long unambiguous English should be detected reliably and skipped.
	got := f.Classify("The quick brown fox jumps over the lazy dog every single morning", "viewer", "twitch")
	assert.Equal(t, PassThrough, got)
}

func TestClassifySkipRules(t *testing.T) {
	exprs := []string{
		`sender == "nightbot"`,
		`text.startsWith("!")`,
	}
	f := New("en-US", exprs, logger.NopLogger())

	assert.Equal(t, PassThrough, f.Classify("こんにちは", "nightbot", "twitch"))
	assert.Equal(t, PassThrough, f.Classify("!uptime", "viewer", "twitch"))
	assert.Equal(t, Translate, f.Classify("こんにちは", "viewer", "twitch"))
}

func TestInvalidSkipRuleIsDropped(t *testing.T) {
	f := New("en-US", []string{"not valid cel !!!"}, logger.NopLogger())

	assert.Len(t, f.rules, 0)
	assert.Equal(t, Translate, f.Classify("こんにちは", "viewer", "twitch"))
}

func TestNonBoolSkipRuleIsDropped(t *testing.T) {
	f := New("en-US", []string{`text + sender`}, logger.NopLogger())

	assert.Len(t, f.rules, 0)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "translate", Translate.String())
	assert.Equal(t, "pass_through", PassThrough.String())
}
