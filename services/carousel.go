package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"aqar-chatbot/config"
	"aqar-chatbot/models"
)

// detailKeywords flag a request for one unit's full details rather than a
// fresh search.
var detailKeywords = []string{
	"details", "detail", "more info", "more information", "tell me more",
	"full info", "specifications", "specs",
	"تفاصيل", "التفاصيل", "معلومات اكتر", "معلومات أكثر", "مواصفات",
	"tafaseel", "tafasel", "ma3lomat aktar", "mowasfat",
}

// IsDetailRequest reports whether the user wants a unit detail card.
func IsDetailRequest(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range detailKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// carouselFieldOrder fixes the rendering order of card fields.
var carouselFieldOrder = []string{"type", "compound", "region", "area", "rooms", "bathrooms", "floor", "finishing", "delivery"}

// detailFieldOrder extends the card fields for the full detail view.
var detailFieldOrder = []string{"type", "compound", "region", "developer", "area", "rooms", "bathrooms", "floor", "finishing", "delivery", "down_payment", "installment", "payment_plan", "status"}

// BuildCarousel renders the structured carousel payload for up to five
// rows. The returned string replaces the text answer entirely.
func BuildCarousel(rows []map[string]interface{}, language string, alternative bool) (string, error) {
	cards := make([]models.PropertyCard, 0, len(rows))
	for i, row := range rows {
		if i >= 5 {
			break
		}
		cards = append(cards, buildCard(row, language, i+1))
	}

	payload := models.CarouselData{
		Type:              "property_carousel",
		Language:          language,
		AlternativeSearch: alternative,
		Properties:        cards,
	}
	if alternative {
		payload.Preamble = config.AlternativeSearchPreamble[language]
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal carousel: %w", err)
	}
	return CarouselMarker + string(data), nil
}

// BuildUnitDetail renders the detail card for a single row.
func BuildUnitDetail(row map[string]interface{}, language string) (string, error) {
	fields := make(map[string]string)
	order := make([]string, 0, len(detailFieldOrder))
	for _, key := range detailFieldOrder {
		label := config.Label(language, key)
		value := fieldValue(row, key, language)
		if value == "" {
			value = config.Label(language, "not_specified")
		}
		fields[label] = value
		order = append(order, label)
	}

	payload := models.UnitDetailData{
		Type:     "unit_detail",
		Language: language,
		UnitID:   rowString(row, "unit_id"),
		Title:    unitTitle(row, language),
		Image:    rowString(row, "unit_image"),
		Fields:   fields,
		Order:    order,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal unit detail: %w", err)
	}
	return DetailStartMarker + string(data) + DetailEndMarker, nil
}

func buildCard(row map[string]interface{}, language string, option int) models.PropertyCard {
	fields := make(map[string]string)
	order := make([]string, 0, len(carouselFieldOrder))
	for _, key := range carouselFieldOrder {
		value := fieldValue(row, key, language)
		if value == "" {
			continue
		}
		label := config.Label(language, key)
		fields[label] = value
		order = append(order, label)
	}

	status := rowString(row, "status_text")
	if language == "franco" {
		status = TranslateFrancoValues(status)
	}

	card := models.PropertyCard{
		Option:     option,
		UnitID:     rowString(row, "unit_id"),
		Title:      unitTitle(row, language),
		Image:      rowString(row, "unit_image"),
		Fields:     fields,
		FieldOrder: order,
		Price:      FormatPrice(rowFloat(row, "price"), language),
		Status:     status,
	}

	if offer := RowPromoDiscount(row); offer != nil {
		if price := rowFloat(row, "price"); price > 0 {
			card.Discount = &models.CardDiscount{
				Percent:         offer.Percent,
				DiscountedPrice: FormatPrice(price*(1-offer.Percent/100), language),
				PromoText:       offer.Source,
			}
		}
	}
	return card
}

// fieldValue maps a semantic field key to the row columns that back it and
// formats the value for the language.
func fieldValue(row map[string]interface{}, key, language string) string {
	var raw string
	switch key {
	case "type":
		raw = firstNonEmpty(rowString(row, "usage_text"), rowString(row, "category"))
	case "compound":
		raw = firstNonEmpty(rowString(row, "compound_name"), rowString(row, "compound_text"))
	case "region":
		raw = rowString(row, "region_text")
	case "developer":
		raw = rowString(row, "developer_name")
	case "area":
		if v := rowFloat(row, "area"); v > 0 {
			return strconv.FormatFloat(v, 'f', -1, 64) + " " + config.Label(language, "sqm")
		}
		return ""
	case "rooms":
		raw = nonZero(rowString(row, "room"))
	case "bathrooms":
		raw = nonZero(rowString(row, "bathroom"))
	case "floor":
		raw = nonZero(rowString(row, "floor"))
	case "finishing":
		raw = rowString(row, "finishing")
	case "delivery":
		raw = rowString(row, "delivery_date")
	case "down_payment":
		if v := rowFloat(row, "down_payment"); v > 0 {
			return FormatPrice(v, language)
		}
		return ""
	case "installment":
		if v := rowFloat(row, "monthly_installment"); v > 0 {
			return FormatPrice(v, language)
		}
		return ""
	case "payment_plan":
		raw = rowString(row, "payment_plan")
	case "status":
		raw = rowString(row, "status_text")
	}

	raw = strings.TrimSpace(raw)
	if raw == "0" || strings.EqualFold(raw, "null") {
		return ""
	}
	if language == "franco" {
		raw = TranslateFrancoValues(raw)
	}
	return raw
}

// FormatPrice renders a price with thousands separators and the localized
// currency, or the per-language "price on request" string for zero.
func FormatPrice(price float64, language string) string {
	if price <= 0 {
		return config.Label(language, "price_on_request")
	}
	return groupThousands(int64(price + 0.5)) + " " + config.Label(language, "egp")
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonZero(v string) string {
	if v == "0" || v == "" {
		return ""
	}
	return v
}
