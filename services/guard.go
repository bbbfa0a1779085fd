package services

import (
	"context"
	"log/slog"
	"strings"

	"aqar-chatbot/config"
)

// safeKeywords whitelist obviously in-domain vocabulary. A query containing
// any of them skips the LLM safety check entirely.
var safeKeywords = []string{
	"property", "properties", "unit", "units", "apartment", "flat", "villa",
	"duplex", "penthouse", "studio", "compound", "developer", "price",
	"bedroom", "bathroom", "room", "floor", "area", "payment", "installment",
	"down payment", "finishing", "delivery", "rent", "buy", "location",
	"region", "project", "available",
	"شقة", "فيلا", "عقار", "وحدة", "كمبوند", "مطور", "سعر", "غرفة", "حمام",
	"دور", "مساحة", "قسط", "مقدم", "تشطيب", "تسليم", "ايجار", "شراء", "منطقة",
	"sha2a", "villa", "3a2ar", "wa7da", "se3r", "owd", "7amam", "mesa7a",
	"2est", "mo2adem", "tashteeb",
	"hello", "hi", "hey", "thanks", "thank you", "ازيك", "اهلا", "شكرا",
	"ahlan", "ezayak", "shokran",
}

// unsafeKeywords blacklist patterns that are blocked without a model call.
var unsafeKeywords = []string{
	"drop table", "delete from", "truncate", "insert into", "update set",
	"union select", "; --", "' or '1'='1", "<script", "exec(",
	"ignore your instructions", "ignore previous instructions",
	"ignore all instructions", "system prompt", "jailbreak",
	"how to make a bomb", "how to hack", "credit card numbers",
}

// CheckQuerySafety returns false with a refusal message for harmful or
// injection-style queries. The keyword prefilters handle the clear cases;
// only ambiguous input goes to the model.
func CheckQuerySafety(ctx context.Context, query string) (bool, string) {
	lower := strings.ToLower(query)

	for _, kw := range unsafeKeywords {
		if strings.Contains(lower, kw) {
			slog.Warn("Query blocked by safety prefilter", "matched", kw)
			return false, config.SafetyRefusal
		}
	}

	for _, kw := range safeKeywords {
		if strings.Contains(lower, kw) {
			return true, ""
		}
	}

	verdict, err := GetLLMResponse(ctx, config.BuildGuardPrompt(query))
	if err != nil {
		// Guard failures must not take the assistant down. Let the query
		// through; the scoped prompts still constrain the answer.
		slog.Warn("Safety guard LLM call failed, allowing query", "error", err)
		return true, ""
	}

	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "UNSAFE") {
		slog.Warn("Query blocked by safety guard", "verdict", verdict)
		return false, config.SafetyRefusal
	}
	return true, ""
}
