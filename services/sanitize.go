package services

import (
	"regexp"
	"strings"
)

// Structured payload markers understood by the frontend.
const (
	CarouselMarker    = "<<PROPERTY_CAROUSEL_DATA>>"
	PaymentPlanMarker = "<<PAYMENT_PLAN_DATA>>"
	DetailStartMarker = "###UNIT_DETAIL###"
	DetailEndMarker   = "###END_DETAIL###"
)

var (
	imageMarkdownPattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	imageLinkPattern     = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)]*\.(?:jpg|jpeg|png|gif|webp)[^)]*)\)`)
	videoLinkPattern     = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)]*\.(?:mp4|mov|avi|webm)[^)]*)\)`)
	bareMediaURLPattern  = regexp.MustCompile(`https?://\S+\.(?:jpg|jpeg|png|gif|webp|mp4|mov|avi|webm)\S*`)
	detailBlockPattern   = regexp.MustCompile(`(?s)###UNIT_DETAIL###.*?###END_DETAIL###`)
)

// StripMediaMarkdown removes image and video markdown plus bare media URLs
// that models sometimes hallucinate into a text answer. The frontend renders
// media only from structured payloads.
func StripMediaMarkdown(text string) string {
	result := imageMarkdownPattern.ReplaceAllString(text, "")
	result = imageLinkPattern.ReplaceAllString(result, "$1")
	result = videoLinkPattern.ReplaceAllString(result, "$1")
	result = bareMediaURLPattern.ReplaceAllString(result, "")

	// Collapse whitespace the removals left behind.
	lines := strings.Split(result, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" && len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// HasStructuredMarker reports whether a response carries a frontend payload.
func HasStructuredMarker(text string) bool {
	return strings.Contains(text, CarouselMarker) ||
		strings.Contains(text, PaymentPlanMarker) ||
		strings.Contains(text, DetailStartMarker)
}

// StripStructuredPayloads removes marker blocks so conversation history and
// the audit log keep plain text only.
func StripStructuredPayloads(text string) string {
	result := text
	for _, marker := range []string{CarouselMarker, PaymentPlanMarker} {
		if idx := strings.Index(result, marker); idx != -1 {
			// Marker JSON runs to the end of its line.
			rest := result[idx:]
			if nl := strings.Index(rest, "\n"); nl != -1 {
				result = result[:idx] + rest[nl+1:]
			} else {
				result = result[:idx]
			}
		}
	}
	result = detailBlockPattern.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// FixImageURL repairs the malformed unit image links the inventory database
// carries: missing extensions get ".jpg", and doubled extensions collapse.
func FixImageURL(url string) string {
	u := strings.TrimSpace(url)
	if u == "" || u == "0" || strings.EqualFold(u, "null") {
		return ""
	}
	u = strings.ReplaceAll(u, ".jpg.jpg", ".jpg")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return ""
	}
	lower := strings.ToLower(u)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return u
		}
	}
	return u + ".jpg"
}
