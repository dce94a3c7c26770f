package models

import (
	"time"

	"github.com/uptrace/bun"
)

type VendorInvoice struct {
	bun.BaseModel `bun:"table:vendor_invoices,alias:vi"`

	ID        int64  `bun:"id,pk,autoincrement"`
	InvoiceNo string `bun:"invoice_no,notnull,unique"`
	AuctionID int64  `bun:"auction_id,notnull"`
	VendorID  int64  `bun:"vendor_id,notnull"`

	VendorName     string  `bun:"vendor_name,notnull"`
	StateCode      string  `bun:"state_code"`
	CommissionRate float64 `bun:"commission_rate,notnull"`
	BankName       string  `bun:"bank_name"`
	BankAccountNo  string  `bun:"bank_account_no"`
	BankIFSC       string  `bun:"bank_ifsc"`

	TotalHammer     int64 `bun:"total_hammer,notnull,default:0"`
	TotalCommission int64 `bun:"total_commission,notnull,default:0"`
	NetPayable      int64 `bun:"net_payable,notnull,default:0"`

	Lots []*VendorInvoiceLot `bun:"rel:has-many,join:id=invoice_id"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type VendorInvoiceLot struct {
	bun.BaseModel `bun:"table:vendor_invoice_lots,alias:vil"`

	ID        int64 `bun:"id,pk,autoincrement"`
	InvoiceID int64 `bun:"invoice_id,notnull"`
	AuctionID int64 `bun:"auction_id,notnull"`
	LotNumber int   `bun:"lot_number,notnull"`

	HammerPrice      int64 `bun:"hammer_price,notnull"`
	CommissionAmount int64 `bun:"commission_amount,notnull"`
	NetPayable       int64 `bun:"net_payable,notnull"`
	SoldAfterAuction bool  `bun:"sold_after_auction,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
