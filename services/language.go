package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"aqar-chatbot/config"
	"aqar-chatbot/models"
)

// strongFrancoWords are unambiguous Franco-Arabic tokens. Any of them in a
// short query settles the detection without a model call.
var strongFrancoWords = []string{
	"meen", "ezay", "ezzay", "feen", "eih", "leh", "leeh", "emta",
	"3ayez", "3ayza", "3awez", "3awza", "3aiz",
	"sha2a", "sha22a", "shaqa", "sho2a2",
	"7amam", "7ammam", "owd", "owda", "owad",
	"se3r", "as3ar", "mesa7a", "maw2e3", "mante2a",
	"tafaseel", "tafasel", "ma3lomat", "3arfny", "wareny",
	"gherfa", "ghoraf", "dor", "tashteeb", "mo2adem",
	"2est", "a2sat", "taman", "belkam", "bkam", "bekam",
	"momken", "3andak", "3andoko", "fel", "mawgood", "mawgooda",
	"kwayes", "kwayyes", "7elw", "7elwa", "gamed", "gameda",
	"shokran", "ahlan", "ezayak", "3amel",
}

var francoWordPattern *regexp.Regexp

func init() {
	escaped := make([]string, len(strongFrancoWords))
	for i, w := range strongFrancoWords {
		escaped[i] = regexp.QuoteMeta(w)
	}
	francoWordPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

var respondInPattern = regexp.MustCompile(`(?i)\[respond in (english|arabic|franco[- _]?arabic|franco)\]`)

// DetectLanguage classifies a query as "en", "ar" or "franco" with a
// confidence score. Heuristics run first; the LLM is only consulted for
// ambiguous input when useLLM is set.
func DetectLanguage(ctx context.Context, query string, useLLM bool) (string, float64) {
	// An explicit frontend hint always wins.
	if m := respondInPattern.FindStringSubmatch(query); m != nil {
		switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(m[1], "-", ""), "_", "")) {
		case "arabic":
			return "ar", 1.0
		case "english":
			return "en", 1.0
		default:
			return "franco", 1.0
		}
	}

	// Strong Franco vocabulary settles short queries immediately.
	if len(query) < 100 && francoWordPattern.MatchString(query) {
		return "franco", 0.95
	}

	ratio := arabicCharRatio(query)
	if ratio > 0.5 {
		return "ar", 0.9
	}

	// Digits embedded inside Latin words (3ayez-style) without any strong
	// word match still hints at Franco.
	if hasDigitInsideWord(query) && ratio == 0 {
		if useLLM {
			if lang, conf, ok := detectLanguageLLM(ctx, query); ok {
				return lang, conf
			}
		}
		return "franco", 0.6
	}

	if ratio > 0 && useLLM {
		if lang, conf, ok := detectLanguageLLM(ctx, query); ok {
			return lang, conf
		}
	}

	return "en", 0.8
}

// detectLanguageLLM is the model fallback behind the heuristics.
func detectLanguageLLM(ctx context.Context, query string) (string, float64, bool) {
	var det models.LanguageDetection
	if err := GetLLMJSONResponse(ctx, config.BuildLanguageDetectionPrompt(query), &det); err != nil {
		slog.Warn("LLM language detection failed, falling back to heuristics", "error", err)
		return "", 0, false
	}
	switch det.Language {
	case "en", "ar", "franco":
		return det.Language, det.Confidence, true
	}
	return "", 0, false
}

// arabicCharRatio returns the share of Arabic-script runes among letters.
func arabicCharRatio(s string) float64 {
	arabic, letters := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.Is(unicode.Arabic, r) {
				arabic++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(arabic) / float64(letters)
}

// hasDigitInsideWord reports whether a digit appears between Latin letters,
// the Arabizi letter-substitution pattern. Standalone numbers do not count.
func hasDigitInsideWord(s string) bool {
	runes := []rune(s)
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] >= '0' && runes[i] <= '9' {
			prev := runes[i-1]
			next := runes[i+1]
			if isLatinLetter(prev) && isLatinLetter(next) {
				return true
			}
		}
	}
	return false
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// StripLanguageHint removes the [Respond in X] frontend marker from a query.
func StripLanguageHint(query string) string {
	return strings.TrimSpace(respondInPattern.ReplaceAllString(query, ""))
}

// TranslateText converts text between en, ar and franco through the LLM and
// scrubs any French leakage on the Franco direction. Structured payload
// markers pass through untranslated.
func TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang || strings.TrimSpace(text) == "" {
		return text, nil
	}
	if HasStructuredMarker(text) {
		return text, nil
	}

	translated, err := GetLLMResponse(ctx, config.BuildTranslationPrompt(text, sourceLang, targetLang))
	if err != nil {
		return text, err
	}
	translated = strings.TrimSpace(translated)

	if targetLang == "franco" {
		translated = ScrubFrenchWords(translated)
	}
	return translated, nil
}

// ScrubFrenchWords replaces French vocabulary that models leak into
// Franco-Arabic output with deterministic substitutes.
func ScrubFrenchWords(text string) string {
	result := text
	for french, franco := range config.FrenchWordReplacements {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(french) + `\b`)
		result = pattern.ReplaceAllString(result, franco)
	}
	return result
}

// TranslateFrancoValues maps Arabic field values to their Franco spellings
// using the fixed table, leaving unknown values alone.
func TranslateFrancoValues(value string) string {
	v := strings.TrimSpace(value)
	if franco, ok := config.FrancoValueTranslations[v]; ok {
		return franco
	}
	return value
}
