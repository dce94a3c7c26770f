package models

import "time"

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func NewErrorResponse(code, message string, details map[string]string) APIResponse {
	return APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// BudgetResponse reports a user's bidding account after a read or adjustment.
type BudgetResponse struct {
	UserID      int64 `json:"user_id"`
	Budget      int64 `json:"budget"`
	FrozenTotal int64 `json:"frozen_total"`
	Available   int64 `json:"available"`
}

// BidResponse is the acknowledgement for an accepted bid.
type BidResponse struct {
	LotNumber int       `json:"lot_number"`
	BidderID  int64     `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
