package utils

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
	"github.com/numisbid/auctionhouse/backend/models"
)

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

// SendCreated sends a created resource JSON response
func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusCreated, models.NewSuccessResponse(data, message))
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message, details))
}

// SendBadRequest sends a bad request error response
func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

// SendNotFound sends a not found error response
func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// SendInternalServerError sends an internal server error response
func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// SendEngineError maps an auction or settlement engine error onto the HTTP
// surface: validation 400, budget 402, conflict 409, consistency and anything
// unclassified 500. Not-found lookups surface as 404.
func SendEngineError(c *fiber.Ctx, err error) error {
	code := auction.CodeOf(err)
	switch auction.KindOf(err) {
	case auction.KindValidation:
		return SendError(c, http.StatusBadRequest, strings.ToUpper(code), err.Error(), nil)
	case auction.KindBudget:
		return SendError(c, http.StatusPaymentRequired, strings.ToUpper(code), err.Error(), nil)
	case auction.KindConflict:
		return SendError(c, http.StatusConflict, strings.ToUpper(code), err.Error(), nil)
	case auction.KindConsistency:
		return SendError(c, http.StatusInternalServerError, strings.ToUpper(code), err.Error(), nil)
	}

	if strings.Contains(err.Error(), "not found") {
		return SendNotFound(c, err.Error())
	}
	return SendInternalServerError(c, "operation failed")
}
