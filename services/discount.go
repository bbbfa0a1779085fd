package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
)

// DiscountOffer is a single applicable discount with its origin.
type DiscountOffer struct {
	Percent float64
	Source  string
}

var promoPercentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// TierDiscount returns the cash-plan discount for a payment duration and
// down payment ratio. Shorter plans with higher upfront cash earn more.
func TierDiscount(years int, downPaymentRatio float64) float64 {
	switch {
	case years <= 3 && downPaymentRatio <= 0.10:
		return 21
	case years <= 5 && downPaymentRatio <= 0.15:
		return 15
	case years <= 7:
		return 10
	default:
		return 0
	}
}

// PromoDiscount looks up an active promo for the unit and extracts its
// percentage from the English promo text. Missing promos are not an error.
func PromoDiscount(ctx context.Context, unitID string) (*DiscountOffer, error) {
	if propertyDB == nil {
		return nil, fmt.Errorf("property database not initialized")
	}

	var promo struct {
		Title string
		Text  string
	}
	err := propertyDB.WithContext(ctx).
		Table("promo").
		Select("promo_text.title, promo_text.text").
		Joins("JOIN promo_text ON promo_text.prom_id = promo.prom_id").
		Where("promo.unt_id = ? AND promo_text.lang_id = 1", unitID).
		Limit(1).
		Scan(&promo).Error
	if err != nil {
		return nil, fmt.Errorf("promo lookup failed: %w", err)
	}
	promoText := promo.Text
	if promoText == "" {
		promoText = promo.Title
	}
	if promoText == "" {
		return nil, nil
	}

	offer := offerFromPromoText(promoText)
	if offer == nil {
		slog.Debug("Promo text carries no percentage", "unitID", unitID, "text", promoText)
	}
	return offer, nil
}

// RowPromoDiscount reads the promo carried on a search row itself
// (has_promo plus promo_text columns), used when the promo tables have
// no entry for the unit.
func RowPromoDiscount(row map[string]interface{}) *DiscountOffer {
	flag := rowString(row, "has_promo")
	if flag == "" || flag == "0" || flag == "false" {
		return nil
	}
	return offerFromPromoText(rowString(row, "promo_text"))
}

func offerFromPromoText(text string) *DiscountOffer {
	m := promoPercentPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil || percent <= 0 || percent >= 100 {
		return nil
	}
	return &DiscountOffer{Percent: percent, Source: text}
}

// BestDiscount picks the single highest-value offer. Discounts never stack.
func BestDiscount(offers []DiscountOffer) DiscountOffer {
	best := DiscountOffer{}
	for _, o := range offers {
		if o.Percent > best.Percent {
			best = o
		}
	}
	return best
}
