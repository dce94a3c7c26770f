package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	webmodels "github.com/numisbid/auctionhouse/backend/models"
	"github.com/numisbid/auctionhouse/backend/utils"
)

func AuctionCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CreateAuctionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		increments := make([]models.IncrementSlab, 0, len(req.Increments))
		for _, slab := range req.Increments {
			increments = append(increments, models.IncrementSlab{
				MinPrice:  slab.MinPrice,
				MaxPrice:  slab.MaxPrice,
				Increment: slab.Increment,
			})
		}
		lots := make([]auction.LotParams, 0, len(req.Lots))
		for _, lot := range req.Lots {
			lots = append(lots, auction.LotParams{
				Number:        lot.Number,
				Title:         lot.Title,
				VendorID:      lot.VendorID,
				StartingPrice: lot.StartingPrice,
				ReservePrice:  lot.ReservePrice,
			})
		}

		created, err := webApp.Engine.CreateAuction(c.UserContext(), auction.CreateAuctionParams{
			Title:       req.Title,
			Mode:        models.AuctionMode(req.Mode),
			Increments:  increments,
			LotDuration: time.Duration(req.LotDurationSeconds) * time.Second,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Lots:        lots,
		})
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendCreated(c, created, "auction created")
	}
}

func AuctionsActive(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctions, err := webApp.Auctions.GetActive(c.UserContext())
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, auctions, "")
	}
}

func AuctionByCode(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		found, err := webApp.Auctions.GetByCode(c.UserContext(), c.Params("code"))
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, found, "")
	}
}

func AuctionDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}

		detail, err := webApp.Auctions.GetWithLots(c.UserContext(), id)
		if err != nil {
			return utils.SendEngineError(c, err)
		}

		// Reserve prices are seller-private and never leave the API.
		for _, lot := range detail.Lots {
			lot.ReservePrice = 0
		}
		return utils.SendSuccess(c, detail, "")
	}
}

func AuctionCancel(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		if err := webApp.Engine.CancelAuction(c.UserContext(), id); err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, nil, "auction cancelled")
	}
}

func BidPlace(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		lotNumber, err := c.ParamsInt("number")
		if err != nil {
			return utils.SendBadRequest(c, "invalid lot number", nil)
		}

		var req webmodels.PlaceBidRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		bid, err := webApp.Engine.PlaceBid(c.UserContext(), auctionID, lotNumber, req.UserID, req.Amount)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendCreated(c, webmodels.BidResponse{
			LotNumber: lotNumber,
			BidderID:  bid.BidderID,
			Amount:    bid.Amount,
			Timestamp: bid.Timestamp,
		}, "bid accepted")
	}
}

func LotBids(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		lotNumber, err := c.ParamsInt("number")
		if err != nil {
			return utils.SendBadRequest(c, "invalid lot number", nil)
		}

		lot, err := webApp.Lots.GetByNumber(c.UserContext(), auctionID, lotNumber)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		bids, err := webApp.Lots.GetLotBids(c.UserContext(), lot.ID)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, bids, "")
	}
}

func OwnershipsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auctionID, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid auction id", nil)
		}
		rows, err := webApp.Ownerships.GetByAuction(c.UserContext(), auctionID)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, rows, "")
	}
}
