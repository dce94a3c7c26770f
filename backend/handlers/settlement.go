package handlers

import (
	"github.com/gofiber/fiber/v2"

	webmodels "github.com/numisbid/auctionhouse/backend/models"
	"github.com/numisbid/auctionhouse/backend/utils"
)

func AssignUnsoldLot(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		lotNumber, err := c.ParamsInt("number")
		if err != nil {
			return utils.SendBadRequest(c, "invalid lot number", nil)
		}

		var req webmodels.AssignUnsoldLotRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		if err := webApp.Settlement.AssignUnsoldLot(c.UserContext(), auctionID, lotNumber, req.BuyerID, req.Price); err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, nil, "lot assigned")
	}
}

func TransferLots(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}

		var req webmodels.TransferLotsRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		ctx := c.UserContext()
		if req.Kind == "buyer" {
			err = webApp.Settlement.TransferBuyerLots(ctx, auctionID, req.FromID, req.ToID, req.LotNumbers)
		} else {
			err = webApp.Settlement.TransferVendorLots(ctx, auctionID, req.FromID, req.ToID, req.LotNumbers)
		}
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, nil, "lots transferred")
	}
}

func VendorInvoicesGenerate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}

		invoices, err := webApp.Settlement.GenerateVendorInvoices(c.UserContext(), auctionID)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, invoices, "vendor invoices generated")
	}
}

func VendorInvoicesList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		invoices, err := webApp.Invoices.GetVendorInvoicesByAuction(c.UserContext(), auctionID)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, invoices, "")
	}
}

func BuyerInvoicesList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		invoices, err := webApp.Invoices.GetBuyerInvoicesByAuction(c.UserContext(), auctionID)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, invoices, "")
	}
}

func BuyerInvoiceDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		buyerID, err := parseID(c, "buyerId")
		if err != nil {
			return utils.SendBadRequest(c, "invalid buyer id", nil)
		}

		invoice, err := webApp.Invoices.GetBuyerInvoice(c.UserContext(), auctionID, buyerID)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, invoice, "")
	}
}
