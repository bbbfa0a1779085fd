package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguageHeuristics(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain english", "show me apartments with 3 bedrooms", "en"},
		{"arabic script", "عايز شقة في التجمع الخامس بثلاث غرف", "ar"},
		{"strong franco word", "3ayez sha2a fel tagamo3", "franco"},
		{"franco question word", "bekam el villa di", "franco"},
		{"digits inside word without list match", "ba7eb el makan el gdeed 5ales", "franco"},
		{"standalone digits stay english", "show me 3 units under 2000000", "en"},
		{"empty string", "", "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lang, conf := DetectLanguage(ctx, tc.query, false)
			assert.Equal(t, tc.want, lang)
			assert.Greater(t, conf, 0.0)
		})
	}
}

func TestDetectLanguageRespondInHint(t *testing.T) {
	ctx := context.Background()

	lang, conf := DetectLanguage(ctx, "[Respond in Arabic] show me flats", false)
	assert.Equal(t, "ar", lang)
	assert.Equal(t, 1.0, conf)

	lang, _ = DetectLanguage(ctx, "[respond in franco-arabic] أي حاجة", false)
	assert.Equal(t, "franco", lang)

	lang, _ = DetectLanguage(ctx, "[Respond in English] عايز شقة", false)
	assert.Equal(t, "en", lang)
}

func TestStripLanguageHint(t *testing.T) {
	assert.Equal(t, "show me flats", StripLanguageHint("[Respond in Arabic] show me flats"))
	assert.Equal(t, "no hint here", StripLanguageHint("no hint here"))
}

func TestArabicCharRatio(t *testing.T) {
	assert.Equal(t, 0.0, arabicCharRatio("hello world"))
	assert.Equal(t, 1.0, arabicCharRatio("مرحبا"))
	assert.InDelta(t, 0.5, arabicCharRatio("hiمر"), 0.01)
	assert.Equal(t, 0.0, arabicCharRatio("12345"))
}

func TestHasDigitInsideWord(t *testing.T) {
	assert.True(t, hasDigitInsideWord("ma3lesh"))
	assert.False(t, hasDigitInsideWord("3 bedrooms"))
	assert.False(t, hasDigitInsideWord("room 3"))
	assert.False(t, hasDigitInsideWord("price 2000000 egp"))
}

func TestScrubFrenchWords(t *testing.T) {
	out := ScrubFrenchWords("voici el sha2a, el prix 2M")
	assert.NotContains(t, out, "voici")
	assert.NotContains(t, out, "prix")
	assert.Contains(t, out, "se3r")

	// Boundaries respected: no substring mangling.
	assert.Equal(t, "pricing", ScrubFrenchWords("pricing"))
}

func TestTranslateFrancoValues(t *testing.T) {
	assert.Equal(t, "Sha2a", TranslateFrancoValues("شقة"))
	assert.Equal(t, "Villa", TranslateFrancoValues("فيلا"))
	assert.Equal(t, "unknown value", TranslateFrancoValues("unknown value"))
}

func TestTranslateTextShortCircuits(t *testing.T) {
	ctx := context.Background()

	// Same language passes through without a model call.
	out, err := TranslateText(ctx, "hello", "en", "en")
	assert.NoError(t, err)
	assert.Equal(t, "hello", out)

	// Structured payloads are never translated.
	payload := CarouselMarker + `{"type":"property_carousel"}`
	out, err = TranslateText(ctx, payload, "en", "ar")
	assert.NoError(t, err)
	assert.Equal(t, payload, out)
}
