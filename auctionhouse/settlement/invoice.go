package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

var hundred = decimal.NewFromInt(100)

// GSTTypeFor selects the tax regime for a buyer: a buyer billed in the
// company's own state pays CGST+SGST, anyone else pays IGST.
func GSTTypeFor(buyerStateCode, companyStateCode string) models.GSTType {
	if buyerStateCode == companyStateCode {
		return models.GSTTypeCGSTSGST
	}
	return models.GSTTypeIGST
}

// BuyerTotals is the computed money block of a buyer invoice. All amounts are
// whole rupees, rounded half away from zero.
type BuyerTotals struct {
	Subtotal   int64
	CGSTAmount int64
	SGSTAmount int64
	IGSTAmount int64
	GrandTotal int64
}

// ComputeBuyerTotals derives invoice totals from the hammer prices and charge
// lines. It is a pure function of its inputs: running it twice over the same
// lot list always yields the same totals, which is what lets invoices be
// recomputed from scratch on every mutation instead of patched incrementally.
func ComputeBuyerTotals(hammerPrices []int64, packing, insurance int64, gstType models.GSTType, gstRate float64) BuyerTotals {
	var subtotal int64
	for _, price := range hammerPrices {
		subtotal += price
	}

	taxable := decimal.NewFromInt(subtotal + packing + insurance)
	rate := decimal.NewFromFloat(gstRate)

	var totals BuyerTotals
	totals.Subtotal = subtotal

	if gstType == models.GSTTypeCGSTSGST {
		// The rate splits evenly into the central and state halves, each
		// rounded on its own the way GST invoices state them.
		half := taxable.Mul(rate).Div(hundred).Div(decimal.NewFromInt(2)).Round(0)
		totals.CGSTAmount = half.IntPart()
		totals.SGSTAmount = half.IntPart()
	} else {
		totals.IGSTAmount = taxable.Mul(rate).Div(hundred).Round(0).IntPart()
	}

	totals.GrandTotal = taxable.IntPart() + totals.CGSTAmount + totals.SGSTAmount + totals.IGSTAmount
	return totals
}

// ComputeCommission splits a hammer price into the company's commission and
// the vendor's net payable at the given percentage rate.
func ComputeCommission(hammerPrice int64, commissionRate float64) (commission, netPayable int64) {
	commission = decimal.NewFromInt(hammerPrice).
		Mul(decimal.NewFromFloat(commissionRate)).
		Div(hundred).
		Round(0).
		IntPart()
	return commission, hammerPrice - commission
}

// VendorTotals is the computed money block of a vendor invoice.
type VendorTotals struct {
	TotalHammer     int64
	TotalCommission int64
	NetPayable      int64
}

// ComputeVendorTotals sums the per-lot commission lines into invoice totals.
func ComputeVendorTotals(lots []*models.VendorInvoiceLot) VendorTotals {
	var totals VendorTotals
	for _, lot := range lots {
		totals.TotalHammer += lot.HammerPrice
		totals.TotalCommission += lot.CommissionAmount
		totals.NetPayable += lot.NetPayable
	}
	return totals
}
