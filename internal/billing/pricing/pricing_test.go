package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLine(t *testing.T) {
	line := ComputeLine(4, 25.5, 19)
	assert.InDelta(t, 102.0, line.TotalHT, 0.001)
	assert.InDelta(t, 19.38, line.TVA, 0.001)
	assert.InDelta(t, 121.38, line.TotalTTC, 0.001)
}

func TestComputeLineZeroRate(t *testing.T) {
	line := ComputeLine(3, 10, 0)
	assert.InDelta(t, 30.0, line.TotalHT, 0.001)
	assert.Zero(t, line.TVA)
	assert.InDelta(t, 30.0, line.TotalTTC, 0.001)
}

func TestTotalTTCWithoutDiscount(t *testing.T) {
	assert.InDelta(t, 239.0, TotalTTC(200, 38, 0, 1), 0.001)
}

func TestTotalTTCScalesVATWithDiscount(t *testing.T) {
	// 200 HT at 19% with a 20 dinar discount: the VAT drops by the
	// same 10% the goods dropped, then one dinar of stamp duty.
	got := TotalTTC(200, 38, 20, 1)
	assert.InDelta(t, 215.20, got, 0.001)
}

func TestTotalTTCDiscountOnZeroHT(t *testing.T) {
	// No goods means no proportion to scale; the plain sum applies.
	got := TotalTTC(0, 0, 15, 1)
	assert.InDelta(t, 1.0, got, 0.001)
}

func TestTotalTTCStampDutyNeverDiscounted(t *testing.T) {
	full := TotalTTC(100, 19, 0, 1)
	discounted := TotalTTC(100, 19, 50, 1)
	assert.InDelta(t, 120.0, full, 0.001)
	assert.InDelta(t, 60.5, discounted, 0.001)
}

func TestFloorZero(t *testing.T) {
	assert.Equal(t, 0.0, FloorZero(-12.5))
	assert.Equal(t, 42.0, FloorZero(42))
}

func TestOrderTotalKeepsNegative(t *testing.T) {
	got := OrderTotal(50, 80, 7)
	assert.InDelta(t, -23.0, got, 0.001)
}

func TestOrderTotalWithShipping(t *testing.T) {
	assert.InDelta(t, 107.0, OrderTotal(100, 0, 7), 0.001)
}
