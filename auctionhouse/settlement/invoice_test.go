package settlement

import (
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

func TestGSTTypeFor(t *testing.T) {
	// Same state as the company: tax splits into central and state halves.
	check.Equal(t, models.GSTTypeCGSTSGST, GSTTypeFor("27", "27"))
	// Interstate buyer: integrated GST.
	check.Equal(t, models.GSTTypeIGST, GSTTypeFor("09", "27"))
}

func TestComputeCommission(t *testing.T) {
	commission, net := ComputeCommission(20000, 10)
	check.Equal(t, int64(2000), commission)
	check.Equal(t, int64(18000), net)

	// Fractional results round half away from zero.
	commission, net = ComputeCommission(9999, 12.5)
	check.Equal(t, int64(1250), commission)
	check.Equal(t, int64(8749), net)

	commission, net = ComputeCommission(5000, 0)
	check.Equal(t, int64(0), commission)
	check.Equal(t, int64(5000), net)
}

func TestComputeBuyerTotalsIGST(t *testing.T) {
	totals := ComputeBuyerTotals([]int64{12000, 8000}, 500, 250, models.GSTTypeIGST, 18)

	check.Equal(t, int64(20000), totals.Subtotal)
	check.Equal(t, int64(0), totals.CGSTAmount)
	check.Equal(t, int64(0), totals.SGSTAmount)
	// 18% of 20750.
	check.Equal(t, int64(3735), totals.IGSTAmount)
	check.Equal(t, int64(24485), totals.GrandTotal)
}

func TestComputeBuyerTotalsCGSTSGST(t *testing.T) {
	totals := ComputeBuyerTotals([]int64{12000, 8000}, 500, 250, models.GSTTypeCGSTSGST, 18)

	check.Equal(t, int64(20000), totals.Subtotal)
	// 9% of 20750 each, rounded per half.
	check.Equal(t, int64(1868), totals.CGSTAmount)
	check.Equal(t, int64(1868), totals.SGSTAmount)
	check.Equal(t, int64(0), totals.IGSTAmount)
	check.Equal(t, int64(24486), totals.GrandTotal)
}

func TestComputeBuyerTotalsDeterministic(t *testing.T) {
	prices := []int64{4950, 15000, 333}

	first := ComputeBuyerTotals(prices, 100, 50, models.GSTTypeIGST, 18)
	second := ComputeBuyerTotals(prices, 100, 50, models.GSTTypeIGST, 18)
	check.Equal(t, first, second)
}

func TestComputeBuyerTotalsEmpty(t *testing.T) {
	totals := ComputeBuyerTotals(nil, 0, 0, models.GSTTypeIGST, 18)
	check.Equal(t, int64(0), totals.Subtotal)
	check.Equal(t, int64(0), totals.GrandTotal)
}

func TestComputeVendorTotals(t *testing.T) {
	lots := []*models.VendorInvoiceLot{
		{HammerPrice: 20000, CommissionAmount: 2000, NetPayable: 18000},
		{HammerPrice: 5000, CommissionAmount: 500, NetPayable: 4500},
	}

	totals := ComputeVendorTotals(lots)
	check.Equal(t, int64(25000), totals.TotalHammer)
	check.Equal(t, int64(2500), totals.TotalCommission)
	check.Equal(t, int64(22500), totals.NetPayable)
}
