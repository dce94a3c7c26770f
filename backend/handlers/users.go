package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	webmodels "github.com/numisbid/auctionhouse/backend/models"
	"github.com/numisbid/auctionhouse/backend/utils"
)

func UserCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		user := &models.User{
			Username:       req.Username,
			Email:          req.Email,
			Phone:          req.Phone,
			BillingAddress: req.BillingAddress,
			BillingCity:    req.BillingCity,
			BillingState:   req.BillingState,
			StateCode:      req.StateCode,
			GSTIN:          req.GSTIN,
			Budget:         req.Budget,
		}
		if err := webApp.Users.Create(c.UserContext(), user); err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendCreated(c, user, "user created")
	}
}

func UserDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid user id", nil)
		}
		user, err := webApp.Users.GetByID(c.UserContext(), id)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, user, "")
	}
}

func BudgetDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid user id", nil)
		}
		user, err := webApp.Users.GetByID(c.UserContext(), id)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, webmodels.BudgetResponse{
			UserID:      user.ID,
			Budget:      user.Budget,
			FrozenTotal: user.FrozenTotal,
			Available:   user.Available(),
		}, "")
	}
}

func BudgetAdjust(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid user id", nil)
		}

		var req webmodels.AdjustBudgetRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		if err := webApp.Users.AdjustBudget(c.UserContext(), id, req.Delta); err != nil {
			return utils.SendEngineError(c, err)
		}

		user, err := webApp.Users.GetByID(c.UserContext(), id)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, webmodels.BudgetResponse{
			UserID:      user.ID,
			Budget:      user.Budget,
			FrozenTotal: user.FrozenTotal,
			Available:   user.Available(),
		}, "budget adjusted")
	}
}

func UserBids(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid user id", nil)
		}
		bids, err := webApp.Lots.GetUserBids(c.UserContext(), id)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, bids, "")
	}
}

func UserFreezes(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return utils.SendBadRequest(c, "invalid user id", nil)
		}
		freezes, err := webApp.Users.GetFreezes(c.UserContext(), id)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, freezes, "")
	}
}

func VendorCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CreateVendorRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", nil)
		}
		if details := utils.ValidateStruct(req); details != nil {
			return utils.SendBadRequest(c, "validation failed", details)
		}

		vendor := &models.Vendor{
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			Address:        req.Address,
			State:          req.State,
			StateCode:      req.StateCode,
			GSTIN:          req.GSTIN,
			CommissionRate: req.CommissionRate,
			BankName:       req.BankName,
			BankAccountNo:  req.BankAccountNo,
			BankIFSC:       req.BankIFSC,
		}
		if err := webApp.Vendors.Create(c.UserContext(), vendor); err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendCreated(c, vendor, "vendor created")
	}
}

func VendorsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendors, err := webApp.Vendors.List(c.UserContext())
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, vendors, "")
	}
}
