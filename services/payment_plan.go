package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"aqar-chatbot/models"
)

// paymentKeywords trigger the payment fast-path ahead of route
// classification, per language.
var paymentKeywords = []string{
	"payment plan", "payment plans", "installment", "installments",
	"down payment", "monthly payment", "financing", "pay monthly",
	"خطة سداد", "خطة الدفع", "قسط", "أقساط", "اقساط", "تقسيط", "مقدم", "دفعة",
	"khetet el daf3", "2est", "a2sat", "ta2seet", "taqseet", "mo2adem", "dof3a",
}

var (
	explicitUnitPattern = regexp.MustCompile(`(?i)\b(?:unit|property|id)\s*#?\s*(\d{3,})`)
	longNumberPattern   = regexp.MustCompile(`\b(\d{5,})\b`)
	planYearsPattern    = regexp.MustCompile(`\((\d+)\)`)
)

// ordinalWords maps ordinal references to a zero-based carousel index.
var ordinalWords = map[string]int{
	"first": 0, "second": 1, "third": 2, "fourth": 3, "fifth": 4,
	"الأول": 0, "الاول": 0, "الثاني": 1, "التاني": 1, "الثالث": 2, "التالت": 2,
	"الرابع": 3, "الخامس": 4,
	"awel": 0, "el awel": 0, "tany": 1, "el tany": 1, "talet": 2, "el talet": 2,
	"rabe3": 3, "khames": 4,
}

var contextWords = []string{
	"this", "that", "it", "this one", "that one",
	"ده", "دي", "هذا", "هذه", "دى",
	"da", "dah", "dih", "deh",
}

var confirmationWords = []string{
	"yes", "yeah", "yep", "sure", "ok", "okay",
	"نعم", "اه", "ايوه", "أيوة", "ايوة", "تمام", "ماشي",
	"aywa", "ah", "tamam", "mashy", "mashi",
}

// IsPaymentQuery reports whether a query asks about payment terms.
func IsPaymentQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractUnitID resolves which unit a payment question refers to, trying in
// order: an explicit id, a long number, an ordinal into the last carousel,
// a contextual reference, and finally a bare confirmation of the last
// discussed unit.
func ExtractUnitID(query string, session *SessionMemory) string {
	lower := strings.ToLower(strings.TrimSpace(query))

	if m := explicitUnitPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	if m := longNumberPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}

	for word, idx := range ordinalWords {
		if strings.Contains(lower, word) && idx < len(session.LastResults) {
			if id := rowString(session.LastResults[idx], "unit_id"); id != "" {
				return id
			}
		}
	}

	for _, word := range contextWords {
		if containsWord(lower, word) {
			if len(session.LastResults) == 1 {
				if id := rowString(session.LastResults[0], "unit_id"); id != "" {
					return id
				}
			}
			if session.LastUnitID != "" {
				return session.LastUnitID
			}
		}
	}

	for _, word := range confirmationWords {
		if lower == word || strings.HasPrefix(lower, word+" ") || strings.HasPrefix(lower, word+",") {
			if session.LastUnitID != "" {
				return session.LastUnitID
			}
		}
	}

	// A single result on screen is an unambiguous referent.
	if len(session.LastResults) == 1 {
		return rowString(session.LastResults[0], "unit_id")
	}
	return ""
}

func containsWord(text, word string) bool {
	pattern := regexp.MustCompile(`(?i)(?:^|\s)` + regexp.QuoteMeta(word) + `(?:$|\s|[?.!,؟])`)
	return pattern.MatchString(text)
}

// ParsePlanYears reads the available plan durations from the payment_plan
// column, written as "(3),(7)". Empty input falls back to the standard
// 3/5/7 year ladder.
func ParsePlanYears(paymentPlan string) []int {
	var years []int
	for _, m := range planYearsPattern.FindAllStringSubmatch(paymentPlan, -1) {
		if y, err := strconv.Atoi(m[1]); err == nil && y > 0 && y <= 15 {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		years = []int{3, 5, 7}
	}
	return years
}

// pricingFallbackTables are consulted in order when the search row lacks
// price or plan data.
var pricingFallbackTables = []string{"unit_search_engine", "unit_search_engine2", "bi_unit"}

// pricingColumns are the fields mergePricingRow may fill in.
var pricingColumns = []string{
	"price", "down_payment", "deposit", "payment_plan",
	"monthly_installment", "has_promo", "promo_text", "compound_name",
}

// FetchPricingRow reads pricing data for a unit from the pricing tables,
// stopping at the first table that carries a price.
func FetchPricingRow(ctx context.Context, unitID string) map[string]interface{} {
	for _, table := range pricingFallbackTables {
		sql := fmt.Sprintf(
			"SELECT unit_id, price, compound_name, has_promo, promo_text, down_payment, payment_plan, deposit, monthly_installment FROM %s WHERE unit_id = %s LIMIT 1",
			table, unitID,
		)
		rows, err := ExecuteQuery(ctx, sql)
		if err != nil || len(rows) == 0 {
			continue
		}
		if rowFloat(rows[0], "price") > 0 {
			return rows[0]
		}
	}
	return nil
}

// mergePricingRow fills pricing fields that are missing or zero on dst
// from src, leaving values dst already has untouched.
func mergePricingRow(dst, src map[string]interface{}) {
	if src == nil {
		return
	}
	for _, col := range pricingColumns {
		cur := rowString(dst, col)
		if cur != "" && cur != "0" {
			continue
		}
		if v := rowString(src, col); v != "" && v != "0" {
			dst[col] = v
		}
	}
}

// BuildPaymentPlans computes the plan breakdown for a unit row: one plan per
// offered duration, with the best single discount applied where the duration
// qualifies.
func BuildPaymentPlans(ctx context.Context, row map[string]interface{}) ([]models.PaymentPlanBreakdown, error) {
	price := rowFloat(row, "price")
	if price <= 0 {
		return nil, fmt.Errorf("unit has no usable price")
	}
	downPayment := rowFloat(row, "down_payment")
	deposit := rowFloat(row, "deposit")
	unitID := rowString(row, "unit_id")

	downRatio := 0.0
	if price > 0 {
		downRatio = downPayment / price
	}

	var promo *DiscountOffer
	if unitID != "" {
		p, err := PromoDiscount(ctx, unitID)
		if err != nil {
			slog.Warn("Promo lookup failed, continuing without promo", "error", err, "unitID", unitID)
		} else {
			promo = p
		}
	}
	if promo == nil {
		promo = RowPromoDiscount(row)
	}

	years := ParsePlanYears(rowString(row, "payment_plan"))

	plans := make([]models.PaymentPlanBreakdown, 0, len(years))
	for _, y := range years {
		offers := []DiscountOffer{}
		if tier := TierDiscount(y, downRatio); tier > 0 {
			offers = append(offers, DiscountOffer{Percent: tier, Source: "payment tier"})
		}
		if promo != nil {
			offers = append(offers, *promo)
		}
		best := BestDiscount(offers)

		effectivePrice := price
		if best.Percent > 0 {
			effectivePrice = price * (1 - best.Percent/100)
		}

		months := y * 12
		remaining := effectivePrice - downPayment - deposit
		if remaining < 0 {
			remaining = 0
		}
		monthly := 0.0
		if months > 0 {
			monthly = remaining / float64(months)
		}

		plans = append(plans, models.PaymentPlanBreakdown{
			Years:              y,
			Months:             months,
			OriginalPrice:      price,
			DiscountPercent:    best.Percent,
			DiscountSource:     best.Source,
			DiscountedPrice:    effectivePrice,
			DownPayment:        downPayment,
			Deposit:            deposit,
			MonthlyInstallment: monthly,
		})
	}
	return plans, nil
}

// HandlePaymentQuery runs the payment fast-path end to end and renders the
// structured payload. A missing unit referent asks the user to pick one.
func HandlePaymentQuery(ctx context.Context, query, language string, session *SessionMemory) (string, error) {
	unitID := ExtractUnitID(query, session)
	if unitID == "" {
		return askWhichUnit(language), nil
	}

	row := findUnitRow(session, unitID)
	if row == nil {
		langID := LangID(language)
		sql := fmt.Sprintf("SELECT * FROM unit_search_sorting WHERE unit_id = %s AND lang_id = %d LIMIT 1", unitID, langID)
		rows, err := ExecuteQuery(ctx, sql)
		if err != nil {
			return "", fmt.Errorf("unit lookup failed: %w", err)
		}
		if len(rows) == 0 {
			return unitNotFound(language, unitID), nil
		}
		row = rows[0]
	}

	// The search row may carry no price or plan data; the pricing tables
	// are the authority for those columns.
	if rowFloat(row, "price") <= 0 || rowString(row, "payment_plan") == "" {
		mergePricingRow(row, FetchPricingRow(ctx, unitID))
	}

	plans, err := BuildPaymentPlans(ctx, row)
	if err != nil {
		return unitNotFound(language, unitID), nil
	}

	session.LastUnitID = unitID
	session.PaymentPlanUsed = true

	payload := models.PaymentPlanData{
		Type:     "payment_plan",
		Language: language,
		UnitID:   unitID,
		Title:    unitTitle(row, language),
		Plans:    plans,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return PaymentPlanMarker + string(data), nil
}

// findUnitRow searches the last carousel results for the unit.
func findUnitRow(session *SessionMemory, unitID string) map[string]interface{} {
	for _, row := range session.LastResults {
		if rowString(row, "unit_id") == unitID {
			return row
		}
	}
	return nil
}

func askWhichUnit(language string) string {
	switch language {
	case "ar":
		return "من فضلك حدد رقم الوحدة التي تريد معرفة خطة السداد الخاصة بها."
	case "franco":
		return "Momken te2oly ra2m el wa7da elly 3ayez te3raf khetet el daf3 beta3etha?"
	default:
		return "Please tell me the unit ID you'd like the payment plan for."
	}
}

func unitNotFound(language, unitID string) string {
	switch language {
	case "ar":
		return fmt.Sprintf("آسف، لم أجد الوحدة رقم %s. هل يمكنك التأكد من الرقم؟", unitID)
	case "franco":
		return fmt.Sprintf("Ana asef, mal2etsh el wa7da ra2m %s. Momken tet2aked men el ra2m?", unitID)
	default:
		return fmt.Sprintf("Sorry, I couldn't find unit %s. Could you double-check the ID?", unitID)
	}
}

// rowFloat reads a numeric row value, tolerating string-typed columns.
func rowFloat(row map[string]interface{}, key string) float64 {
	v, ok := row[key]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// unitTitle builds the card headline from the model and compound names.
func unitTitle(row map[string]interface{}, language string) string {
	model := rowString(row, "model_name")
	if model == "" {
		model = rowString(row, "model_text")
	}
	compound := rowString(row, "compound_name")
	if compound == "" {
		compound = rowString(row, "compound_text")
	}
	if language == "franco" {
		model = TranslateFrancoValues(model)
		compound = TranslateFrancoValues(compound)
	}
	switch {
	case model != "" && compound != "":
		return model + " - " + compound
	case compound != "":
		return compound
	case model != "":
		return model
	default:
		return rowString(row, "unt_code")
	}
}
