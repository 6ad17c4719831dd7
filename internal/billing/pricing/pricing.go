// Package pricing holds the money arithmetic shared by every sales
// document variant. All amounts are dinars carried as float64 and
// rounded to two decimals at each derivation step.
package pricing

import "math"

// LineTotals is the priced form of a single document line.
type LineTotals struct {
	TotalHT  float64
	TVA      float64
	TotalTTC float64
}

// ComputeLine prices one line. The VAT amount is derived from the
// line's pre-tax total; callers pass a zero rate for untaxed variants,
// which leaves TTC equal to HT.
func ComputeLine(quantity int, unitPrice, taxRate float64) LineTotals {
	ht := Round2(float64(quantity) * unitPrice)
	tva := Round2(ht * taxRate / 100)
	return LineTotals{
		TotalHT:  ht,
		TVA:      tva,
		TotalTTC: Round2(ht + tva),
	}
}

// TotalTTC composes the document total from the aggregated line totals.
// A global discount is taken off the pre-tax total and the VAT is
// scaled down by the same proportion, so the discount never erases more
// tax than the discounted goods carried. Stamp duty is added last and
// is never discounted.
func TotalTTC(totalHT, totalTVA, discount, stampDuty float64) float64 {
	if discount > 0 && totalHT > 0 {
		ratio := discount / totalHT
		return Round2((totalHT - discount) + (totalTVA - totalTVA*ratio) + stampDuty)
	}
	return Round2(totalHT + totalTVA + stampDuty)
}

// FloorZero clamps a total at zero. Over-discounted invoices settle at
// zero rather than going negative.
func FloorZero(v float64) float64 {
	return math.Max(v, 0)
}

// OrderTotal composes a sales order total. Orders carry a delivery fee
// instead of VAT and stamp duty, and the historical books keep negative
// totals when the discount exceeds the goods value, so no clamp here.
func OrderTotal(totalHT, discount, shippingFee float64) float64 {
	return Round2((totalHT - discount) + shippingFee)
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
