package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPaymentQuery(t *testing.T) {
	assert.True(t, IsPaymentQuery("what's the payment plan for unit 12345?"))
	assert.True(t, IsPaymentQuery("كام قسط الشقة دي؟"))
	assert.True(t, IsPaymentQuery("3ayez a3raf el mo2adem"))
	assert.False(t, IsPaymentQuery("show me flats in new cairo"))
}

func TestExtractUnitIDExplicit(t *testing.T) {
	sess := &SessionMemory{}

	assert.Equal(t, "4521", ExtractUnitID("payment plan for unit 4521", sess))
	assert.Equal(t, "4521", ExtractUnitID("property #4521 installments", sess))
	assert.Equal(t, "78901", ExtractUnitID("what about 78901", sess))
}

func TestExtractUnitIDOrdinal(t *testing.T) {
	sess := &SessionMemory{
		LastResults: []map[string]interface{}{
			{"unit_id": "101"},
			{"unit_id": "102"},
			{"unit_id": "103"},
		},
	}

	assert.Equal(t, "101", ExtractUnitID("payment plan for the first one", sess))
	assert.Equal(t, "102", ExtractUnitID("the second option please", sess))
	assert.Equal(t, "103", ExtractUnitID("what about the third", sess))
}

func TestExtractUnitIDContext(t *testing.T) {
	single := &SessionMemory{
		LastResults: []map[string]interface{}{{"unit_id": "555"}},
	}
	assert.Equal(t, "555", ExtractUnitID("how much is this one", single))

	remembered := &SessionMemory{LastUnitID: "777"}
	assert.Equal(t, "777", ExtractUnitID("tell me about that unit", remembered))
}

func TestExtractUnitIDConfirmation(t *testing.T) {
	sess := &SessionMemory{LastUnitID: "888"}
	assert.Equal(t, "888", ExtractUnitID("yes", sess))
	assert.Equal(t, "888", ExtractUnitID("yes please", sess))

	empty := &SessionMemory{}
	assert.Equal(t, "", ExtractUnitID("yes", empty))
}

func TestExtractUnitIDAmbiguous(t *testing.T) {
	sess := &SessionMemory{
		LastResults: []map[string]interface{}{
			{"unit_id": "101"},
			{"unit_id": "102"},
		},
	}
	assert.Equal(t, "", ExtractUnitID("payment plan please", sess))
}

func TestParsePlanYears(t *testing.T) {
	assert.Equal(t, []int{3, 7}, ParsePlanYears("(3),(7)"))
	assert.Equal(t, []int{5}, ParsePlanYears("cash or (5) years"))
	assert.Equal(t, []int{3, 5, 7}, ParsePlanYears(""), "empty falls back to the standard ladder")
	assert.Equal(t, []int{3, 5, 7}, ParsePlanYears("no durations here"))
}

func TestBuildPaymentPlans(t *testing.T) {
	row := map[string]interface{}{
		"unit_id":      "",
		"price":        "1000000",
		"down_payment": "100000",
		"deposit":      "0",
		"payment_plan": "(3),(7)",
	}

	plans, err := BuildPaymentPlans(context.Background(), row)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	// 3 years, 10% down: qualifies for the 21% tier.
	three := plans[0]
	assert.Equal(t, 3, three.Years)
	assert.Equal(t, 36, three.Months)
	assert.Equal(t, 21.0, three.DiscountPercent)
	assert.InDelta(t, 790000, three.DiscountedPrice, 0.01)
	assert.InDelta(t, (790000.0-100000)/36, three.MonthlyInstallment, 0.01)

	// 7 years: 10% tier.
	seven := plans[1]
	assert.Equal(t, 7, seven.Years)
	assert.Equal(t, 10.0, seven.DiscountPercent)
	assert.InDelta(t, 900000, seven.DiscountedPrice, 0.01)
	assert.InDelta(t, (900000.0-100000)/84, seven.MonthlyInstallment, 0.01)
}

func TestBuildPaymentPlansRowPromo(t *testing.T) {
	row := map[string]interface{}{
		"unit_id":      "",
		"price":        "1000000",
		"down_payment": "200000",
		"deposit":      "0",
		"payment_plan": "(3)",
		"has_promo":    "1",
		"promo_text":   "Summer deal: 30% off",
	}

	plans, err := BuildPaymentPlans(context.Background(), row)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	// The 30% promo beats the 10% tier for a 20% down payment.
	plan := plans[0]
	assert.Equal(t, 30.0, plan.DiscountPercent)
	assert.Equal(t, "Summer deal: 30% off", plan.DiscountSource)
	assert.InDelta(t, 700000, plan.DiscountedPrice, 0.01)
	assert.InDelta(t, (700000.0-200000)/36, plan.MonthlyInstallment, 0.01)
}

func TestMergePricingRow(t *testing.T) {
	dst := map[string]interface{}{
		"unit_id":      "4521",
		"price":        "0",
		"down_payment": "150000",
		"payment_plan": "",
	}
	src := map[string]interface{}{
		"price":        "2000000",
		"down_payment": "999999",
		"payment_plan": "(5),(7)",
		"has_promo":    "1",
		"promo_text":   "5% off",
	}

	mergePricingRow(dst, src)

	assert.Equal(t, 2000000.0, rowFloat(dst, "price"))
	assert.Equal(t, "(5),(7)", rowString(dst, "payment_plan"))
	assert.Equal(t, "1", rowString(dst, "has_promo"))
	// Values already on the row stay.
	assert.Equal(t, 150000.0, rowFloat(dst, "down_payment"))

	// A nil source is a no-op.
	mergePricingRow(dst, nil)
	assert.Equal(t, 2000000.0, rowFloat(dst, "price"))
}

func TestBuildPaymentPlansNoPrice(t *testing.T) {
	_, err := BuildPaymentPlans(context.Background(), map[string]interface{}{"price": "0"})
	assert.Error(t, err)
}

func TestRowFloat(t *testing.T) {
	row := map[string]interface{}{
		"a": "1,500,000",
		"b": float64(2.5),
		"c": nil,
		"d": "not a number",
	}
	assert.Equal(t, 1500000.0, rowFloat(row, "a"))
	assert.Equal(t, 2.5, rowFloat(row, "b"))
	assert.Equal(t, 0.0, rowFloat(row, "c"))
	assert.Equal(t, 0.0, rowFloat(row, "d"))
	assert.Equal(t, 0.0, rowFloat(row, "missing"))
}
