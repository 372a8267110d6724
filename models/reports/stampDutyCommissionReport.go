package reports

import (
	"context"

	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
)

// Tiered stamp-duty schedule. Amounts up to the floor are exempt; each tier
// charges its marginal rate on the slice of the amount falling inside it.
var stampDutyBrackets = []struct {
	upper decimal.Decimal
	rate  decimal.Decimal
}{
	{decimal.NewFromInt(50), decimal.Zero},
	{decimal.NewFromInt(250), decimal.NewFromFloat(0.004)},
	{decimal.NewFromInt(500), decimal.NewFromFloat(0.005)},
	{decimal.NewFromInt(2000), decimal.NewFromFloat(0.006)},
	{decimal.NewFromInt(10000), decimal.NewFromFloat(0.007)},
	{decimal.Decimal{}, decimal.NewFromFloat(0.008)}, // no upper bound
}

// ComputeStampDuty applies the marginal schedule to an amount and rounds the
// total to 2 decimals.
func ComputeStampDuty(amount decimal.Decimal) decimal.Decimal {

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	duty := decimal.Zero
	lower := decimal.Zero
	for i, bracket := range stampDutyBrackets {
		last := i == len(stampDutyBrackets)-1

		upper := bracket.upper
		if !last && amount.LessThanOrEqual(upper) {
			upper = amount
		}
		if last {
			upper = amount
		}
		if upper.GreaterThan(lower) {
			duty = duty.Add(upper.Sub(lower).Mul(bracket.rate))
		}
		if !last && amount.LessThanOrEqual(bracket.upper) {
			break
		}
		lower = bracket.upper
	}
	return utils.Round2(duty)
}

type StampDutyCommissionRow struct {
	SalesCommissionRow
	PaidFraction   decimal.Decimal `json:"paid_fraction"`
	StampDuty      decimal.Decimal `json:"stamp_duty"`
	VatClawback    decimal.Decimal `json:"vat_clawback"`
	EligibleAmount decimal.Decimal `json:"eligible_amount"`
	Incentive      decimal.Decimal `json:"incentive"`
}

// GetStampDutyCommissionReport extends the base report with the statutory
// deductions: stamp duty on the invoice grand total and a VAT clawback scaled
// by how much of the invoice has actually been paid. The incentive is the
// commission rate applied to what remains.
func GetStampDutyCommissionReport(ctx context.Context, filter SalesCommissionFilter) ([]*StampDutyCommissionRow, error) {

	base, err := GetSalesCommissionReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	records := make([]*StampDutyCommissionRow, 0, len(base))
	for _, row := range base {
		extended := &StampDutyCommissionRow{SalesCommissionRow: *row}

		if row.GrandTotal.GreaterThan(decimal.Zero) {
			extended.PaidFraction = row.TotalAllocated.Div(row.GrandTotal)
			if extended.PaidFraction.GreaterThan(decimal.NewFromInt(1)) {
				extended.PaidFraction = decimal.NewFromInt(1)
			}
		}

		extended.StampDuty = ComputeStampDuty(row.GrandTotal)
		extended.VatClawback = utils.Round2(row.TotalTaxes.Mul(extended.PaidFraction))
		extended.EligibleAmount = utils.Round2(
			row.GrandTotal.Sub(extended.StampDuty).Sub(extended.VatClawback))

		rate := row.CommissionRate
		if rate.GreaterThan(decimal.NewFromInt(1)) {
			rate = rate.Div(hundred)
		}
		extended.Incentive = utils.Round2(extended.EligibleAmount.Mul(rate))

		records = append(records, extended)
	}
	return records, nil
}
