package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
	"github.com/numisbid/auctionhouse/auctionhouse/database/repositories"
	"github.com/numisbid/auctionhouse/auctionhouse/settlement"
)

// WebApp bundles the engines and repositories the handlers operate on.
type WebApp struct {
	Engine     *auction.Engine
	Settlement *settlement.Engine
	Auctions   repositories.AuctionRepository
	Lots       repositories.LotRepository
	Users      repositories.UserRepository
	Vendors    repositories.VendorRepository
	Ownerships repositories.OwnershipRepository
	Invoices   repositories.InvoiceRepository
	Version    string
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, webApp *WebApp) {
	app.Get("/health", HealthCheck(webApp))

	api := app.Group("/api")

	auctions := api.Group("/auctions")
	auctions.Post("/", AuctionCreate(webApp))
	auctions.Get("/active", AuctionsActive(webApp))
	auctions.Get("/code/:code", AuctionByCode(webApp))
	auctions.Get("/:id", AuctionDetail(webApp))
	auctions.Post("/:id/cancel", AuctionCancel(webApp))
	auctions.Post("/:id/lots/:number/bids", BidPlace(webApp))
	auctions.Get("/:id/lots/:number/bids", LotBids(webApp))
	auctions.Post("/:id/lots/:number/assign", AssignUnsoldLot(webApp))
	auctions.Post("/:id/transfers", TransferLots(webApp))
	auctions.Get("/:id/ownerships", OwnershipsList(webApp))
	auctions.Get("/:id/buyer-invoices", BuyerInvoicesList(webApp))
	auctions.Get("/:id/buyer-invoices/:buyerId", BuyerInvoiceDetail(webApp))
	auctions.Post("/:id/vendor-invoices", VendorInvoicesGenerate(webApp))
	auctions.Get("/:id/vendor-invoices", VendorInvoicesList(webApp))

	users := api.Group("/users")
	users.Post("/", UserCreate(webApp))
	users.Get("/:id", UserDetail(webApp))
	users.Get("/:id/budget", BudgetDetail(webApp))
	users.Post("/:id/budget", BudgetAdjust(webApp))
	users.Get("/:id/bids", UserBids(webApp))
	users.Get("/:id/freezes", UserFreezes(webApp))

	vendors := api.Group("/vendors")
	vendors.Post("/", VendorCreate(webApp))
	vendors.Get("/", VendorsList(webApp))
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": webApp.Version,
		})
	}
}

// parseID is a utility function to parse int64 route parameters
func parseID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}
