package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GSTType string

const (
	GSTTypeIGST     GSTType = "igst"
	GSTTypeCGSTSGST GSTType = "cgst_sgst"
)

type BuyerInvoice struct {
	bun.BaseModel `bun:"table:buyer_invoices,alias:bi"`

	ID        int64  `bun:"id,pk,autoincrement"`
	InvoiceNo string `bun:"invoice_no,notnull,unique"`
	AuctionID int64  `bun:"auction_id,notnull"`
	BuyerID   int64  `bun:"buyer_id,notnull"`

	BillingName    string  `bun:"billing_name,notnull"`
	BillingAddress string  `bun:"billing_address"`
	BillingState   string  `bun:"billing_state"`
	StateCode      string  `bun:"state_code,notnull"`
	GSTType        GSTType `bun:"gst_type,notnull"`

	// Charge lines. Taxable value = subtotal + packing + insurance; totals are
	// recomputed from scratch out of lot_ownerships on every mutation.
	PackingCharge   int64 `bun:"packing_charge,notnull,default:0"`
	InsuranceCharge int64 `bun:"insurance_charge,notnull,default:0"`

	Subtotal   int64 `bun:"subtotal,notnull,default:0"`
	CGSTAmount int64 `bun:"cgst_amount,notnull,default:0"`
	SGSTAmount int64 `bun:"sgst_amount,notnull,default:0"`
	IGSTAmount int64 `bun:"igst_amount,notnull,default:0"`
	GrandTotal int64 `bun:"grand_total,notnull,default:0"`

	Lots []*BuyerInvoiceLot `bun:"rel:has-many,join:id=invoice_id"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type BuyerInvoiceLot struct {
	bun.BaseModel `bun:"table:buyer_invoice_lots,alias:bil"`

	ID        int64 `bun:"id,pk,autoincrement"`
	InvoiceID int64 `bun:"invoice_id,notnull"`
	AuctionID int64 `bun:"auction_id,notnull"`
	LotNumber int   `bun:"lot_number,notnull"`

	HammerPrice      int64 `bun:"hammer_price,notnull"`
	SoldAfterAuction bool  `bun:"sold_after_auction,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
