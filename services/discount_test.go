package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierDiscount(t *testing.T) {
	tests := []struct {
		name      string
		years     int
		downRatio float64
		want      float64
	}{
		{"short plan low down payment", 3, 0.10, 21},
		{"short plan high down payment falls to next tier", 3, 0.20, 10},
		{"five year plan", 5, 0.15, 15},
		{"five year plan high down payment", 5, 0.30, 10},
		{"seven year plan", 7, 0.50, 10},
		{"too long", 10, 0.05, 0},
		{"zero down payment short plan", 2, 0, 21},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TierDiscount(tc.years, tc.downRatio))
		})
	}
}

func TestBestDiscount(t *testing.T) {
	best := BestDiscount([]DiscountOffer{
		{Percent: 10, Source: "tier"},
		{Percent: 15, Source: "promo"},
		{Percent: 5, Source: "other"},
	})
	assert.Equal(t, 15.0, best.Percent)
	assert.Equal(t, "promo", best.Source)

	assert.Equal(t, 0.0, BestDiscount(nil).Percent)
}

func TestRowPromoDiscount(t *testing.T) {
	tests := []struct {
		name        string
		row         map[string]interface{}
		wantPercent float64
	}{
		{
			"promo flag with percentage",
			map[string]interface{}{"has_promo": "1", "promo_text": "Launch offer 10% off"},
			10,
		},
		{
			"promo flag without percentage",
			map[string]interface{}{"has_promo": "1", "promo_text": "Free club membership"},
			0,
		},
		{
			"flag off ignores text",
			map[string]interface{}{"has_promo": "0", "promo_text": "20% discount"},
			0,
		},
		{
			"missing columns",
			map[string]interface{}{"unit_id": "4521"},
			0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			offer := RowPromoDiscount(tc.row)
			if tc.wantPercent == 0 {
				assert.Nil(t, offer)
			} else {
				require.NotNil(t, offer)
				assert.Equal(t, tc.wantPercent, offer.Percent)
			}
		})
	}
}

func TestPromoPercentPattern(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Limited offer: 12% off all units!", "12"},
		{"Save 7.5 % this month", "7.5"},
		{"No discount mentioned", ""},
	}
	for _, tc := range tests {
		m := promoPercentPattern.FindStringSubmatch(tc.text)
		if tc.want == "" {
			assert.Nil(t, m)
		} else {
			assert.Equal(t, tc.want, m[1])
		}
	}
}
