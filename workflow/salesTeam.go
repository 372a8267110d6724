package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/commission_backend/models"
	"bitbucket.org/mmdatafocus/commission_backend/utils"
	"github.com/shopspring/decimal"
)

// SalesTeamMember is one resolved commission participant for an invoice,
// independent of where the row was found (invoice, order or customer).
type SalesTeamMember struct {
	SalesPersonId       int
	CommissionRate      decimal.Decimal
	AllocatedPercentage decimal.Decimal
}

// SalesPersonDetail reports one person's share of a single recalculation.
type SalesPersonDetail struct {
	SalesPersonId   int             `json:"sales_person_id"`
	SalesPersonName *string         `json:"sales_person_name,omitempty"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	Incentive       decimal.Decimal `json:"incentive"`
}

// NormalizeCommissionRate folds percent-style rates into fractions. Users
// enter 5 meaning 5%, but imported data may already carry 0.05. Anything
// above 1 is treated as a percentage.
func NormalizeCommissionRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}

// ResolveSalesTeam finds the commission participants for an invoice. It checks
// the invoice's own sales team first, then the first sales order its line items
// bill from, then the customer master. The first non-empty tier wins; within a
// tier each sales person is kept once, first occurrence. An invoice with no
// sales team anywhere cannot earn commission, so that is an error.
func ResolveSalesTeam(ctx context.Context, invoice *models.SalesInvoice) ([]SalesTeamMember, error) {

	if members := dedupMembers(invoice.SalesTeam); len(members) > 0 {
		return members, nil
	}

	if orderId := invoice.FirstSalesOrderId(); orderId != 0 {
		order, err := models.GetSalesOrder(ctx, orderId)
		if err != nil && err != utils.ErrorRecordNotFound {
			return nil, err
		}
		if order != nil {
			if members := dedupMembers(order.SalesTeam); len(members) > 0 {
				return members, nil
			}
		}
	}

	customer, err := models.GetCustomer(ctx, invoice.CustomerId)
	if err != nil && err != utils.ErrorRecordNotFound {
		return nil, err
	}
	if customer != nil {
		if members := dedupMembers(customer.SalesTeam); len(members) > 0 {
			return members, nil
		}
	}
	return nil, fmt.Errorf("no sales team found for invoice %s", invoice.InvoiceNumber)
}

func dedupMembers(rows []models.SalesTeamEntry) []SalesTeamMember {

	seen := map[int]bool{}
	members := make([]SalesTeamMember, 0, len(rows))
	for _, row := range rows {
		if row.SalesPersonId == 0 || seen[row.SalesPersonId] {
			continue
		}
		seen[row.SalesPersonId] = true
		members = append(members, SalesTeamMember{
			SalesPersonId:       row.SalesPersonId,
			CommissionRate:      row.CommissionRate,
			AllocatedPercentage: row.AllocatedPercentage,
		})
	}
	return members
}

// ReconcileSalesTeam rewrites the invoice's in-memory sales team for one
// payment's recalculation. Template rows (no payment provenance) are dropped;
// rows already produced by this payment for the same person are updated in
// place; missing participants get new rows. Rows written by other payments
// are left untouched. Returns how many rows now belong to this payment and
// the per-person figures.
func ReconcileSalesTeam(invoice *models.SalesInvoice, paymentEntryId int, paymentDate time.Time, team []SalesTeamMember, netContribution decimal.Decimal) (int, []SalesPersonDetail) {

	teamPersons := map[int]bool{}
	for _, member := range team {
		teamPersons[member.SalesPersonId] = true
	}

	kept := make([]models.SalesTeamEntry, 0, len(invoice.SalesTeam)+len(team))
	existing := map[int]int{}
	for _, row := range invoice.SalesTeam {
		if row.PaymentEntryId == 0 {
			continue
		}
		if row.PaymentEntryId == paymentEntryId {
			if !teamPersons[row.SalesPersonId] {
				continue
			}
			existing[row.SalesPersonId] = len(kept)
		}
		kept = append(kept, row)
	}

	details := make([]SalesPersonDetail, 0, len(team))
	calculationDate := paymentDate
	for _, member := range team {
		// The allocated percentage is carried through for reporting but does
		// not weight the incentive; the commission base is the full net
		// contribution for every member.
		rate := NormalizeCommissionRate(member.CommissionRate)
		incentive := utils.Round2(netContribution.Mul(rate))

		if idx, ok := existing[member.SalesPersonId]; ok {
			kept[idx].CommissionRate = member.CommissionRate
			kept[idx].AllocatedPercentage = member.AllocatedPercentage
			kept[idx].Incentives = incentive
			kept[idx].CalculationDate = &calculationDate
		} else {
			kept = append(kept, models.SalesTeamEntry{
				SalesInvoiceId:      invoice.ID,
				SalesPersonId:       member.SalesPersonId,
				CommissionRate:      member.CommissionRate,
				AllocatedPercentage: member.AllocatedPercentage,
				Incentives:          incentive,
				PaymentEntryId:      paymentEntryId,
				CalculationDate:     &calculationDate,
			})
		}
		details = append(details, SalesPersonDetail{
			SalesPersonId:  member.SalesPersonId,
			CommissionRate: rate,
			Incentive:      incentive,
		})
	}

	invoice.SalesTeam = kept

	ownRows := 0
	for _, row := range kept {
		if row.PaymentEntryId == paymentEntryId {
			ownRows++
		}
	}
	return ownRows, details
}

// RemoveSalesTeamForPayment drops the rows a cancelled payment wrote onto the
// invoice, leaving other payments' rows alone. Returns how many were removed.
func RemoveSalesTeamForPayment(invoice *models.SalesInvoice, paymentEntryId int) int {

	kept := invoice.SalesTeam[:0]
	removed := 0
	for _, row := range invoice.SalesTeam {
		if row.PaymentEntryId == paymentEntryId {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	invoice.SalesTeam = kept
	return removed
}
