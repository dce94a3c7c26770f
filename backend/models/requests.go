package models

import "time"

type IncrementSlabRequest struct {
	MinPrice  int64 `json:"min_price" validate:"min=0"`
	MaxPrice  int64 `json:"max_price" validate:"min=0"`
	Increment int64 `json:"increment" validate:"required,gt=0"`
}

type LotRequest struct {
	Number        int    `json:"number" validate:"min=0"`
	Title         string `json:"title" validate:"required,min=1,max=200"`
	VendorID      int64  `json:"vendor_id" validate:"min=0"`
	StartingPrice int64  `json:"starting_price" validate:"required,gt=0"`
	ReservePrice  int64  `json:"reserve_price" validate:"min=0"`
}

type CreateAuctionRequest struct {
	Title              string                 `json:"title" validate:"required,min=3,max=200"`
	Mode               string                 `json:"mode" validate:"required,oneof=single sequential"`
	Increments         []IncrementSlabRequest `json:"increments" validate:"required,min=1,dive"`
	LotDurationSeconds int64                  `json:"lot_duration_seconds" validate:"min=0"`
	StartTime          time.Time              `json:"start_time" validate:"required"`
	EndTime            time.Time              `json:"end_time" validate:"required"`
	Lots               []LotRequest           `json:"lots" validate:"required,min=1,dive"`
}

type PlaceBidRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type AssignUnsoldLotRequest struct {
	BuyerID int64 `json:"buyer_id" validate:"required,gt=0"`
	Price   int64 `json:"price" validate:"required,gt=0"`
}

type TransferLotsRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=buyer vendor"`
	FromID     int64  `json:"from_id" validate:"required,gt=0"`
	ToID       int64  `json:"to_id" validate:"required,gt=0"`
	LotNumbers []int  `json:"lot_numbers" validate:"required,min=1,dive,gt=0"`
}

type CreateUserRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=64"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	BillingAddress string `json:"billing_address" validate:"max=500"`
	BillingCity    string `json:"billing_city" validate:"max=100"`
	BillingState   string `json:"billing_state" validate:"max=100"`
	StateCode      string `json:"state_code" validate:"required,len=2"`
	GSTIN          string `json:"gstin" validate:"omitempty,len=15"`
	Budget         int64  `json:"budget" validate:"min=0"`
}

type CreateVendorRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=200"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone" validate:"omitempty,max=20"`
	Address        string  `json:"address" validate:"max=500"`
	State          string  `json:"state" validate:"max=100"`
	StateCode      string  `json:"state_code" validate:"required,len=2"`
	GSTIN          string  `json:"gstin" validate:"omitempty,len=15"`
	CommissionRate float64 `json:"commission_rate" validate:"required,gt=0,lte=100"`
	BankName       string  `json:"bank_name" validate:"max=200"`
	BankAccountNo  string  `json:"bank_account_no" validate:"max=30"`
	BankIFSC       string  `json:"bank_ifsc" validate:"omitempty,len=11"`
}

type AdjustBudgetRequest struct {
	Delta int64 `json:"delta" validate:"required"`
}
