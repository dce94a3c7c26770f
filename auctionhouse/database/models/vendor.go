package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Vendor struct {
	bun.BaseModel `bun:"table:vendors,alias:v"`

	ID             int64   `bun:"id,pk,autoincrement"`
	Name           string  `bun:"name,notnull"`
	Email          string  `bun:"email"`
	Phone          string  `bun:"phone"`
	Address        string  `bun:"address"`
	State          string  `bun:"state"`
	StateCode      string  `bun:"state_code,notnull"`
	GSTIN          string  `bun:"gstin"`
	CommissionRate float64 `bun:"commission_rate,notnull"`

	// Payout details for the vendor invoice header.
	BankName      string `bun:"bank_name"`
	BankAccountNo string `bun:"bank_account_no"`
	BankIFSC      string `bun:"bank_ifsc"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
