package auction

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/numisbid/auctionhouse/auctionhouse/database/repositories"
	"github.com/numisbid/auctionhouse/auctionhouse/txutil"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/uptrace/bun"
)

const (
	codeLength     = 6
	codeMaxRetries = 5
)

// Config carries the bidding rules the engine enforces on every auction.
type Config struct {
	QuietInterval      time.Duration
	BaseUnit           int64
	DefaultLotDuration time.Duration
}

// Engine owns the lot lifecycle: it accepts bids, advances the
// going-once/going-twice/gone countdown, promotes lots in sequence, and hands
// sold lots to the settler. Bid acceptance and countdown expiry for one lot
// serialize through the same per-lot mutex, so a bid that arrives before the
// expiry check grabs the lock wins and resets the countdown.
type Engine struct {
	auctions  repositories.AuctionRepository
	lots      repositories.LotRepository
	users     repositories.UserRepository
	tx        *txutil.Manager
	ledger    *Ledger
	sequencer *Sequencer
	settler   Settler
	publisher Publisher
	notifier  Notifier
	scheduler *Scheduler
	cfg       Config

	lotLocks *xsync.MapOf[int64, *sync.Mutex]
}

func NewEngine(
	auctions repositories.AuctionRepository,
	lots repositories.LotRepository,
	users repositories.UserRepository,
	txManager *txutil.Manager,
	ledger *Ledger,
	settler Settler,
	publisher Publisher,
	notifier Notifier,
	cfg Config,
) *Engine {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.QuietInterval <= 0 {
		cfg.QuietInterval = 30 * time.Second
	}

	e := &Engine{
		auctions:  auctions,
		lots:      lots,
		users:     users,
		tx:        txManager,
		ledger:    ledger,
		sequencer: &Sequencer{},
		settler:   settler,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
		lotLocks:  xsync.NewMapOf[int64, *sync.Mutex](),
	}
	e.scheduler = NewScheduler(e)
	return e
}

func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// LotParams describes one lot at auction creation time.
type LotParams struct {
	Number        int
	Title         string
	VendorID      int64
	StartingPrice int64
	ReservePrice  int64
}

// CreateAuctionParams describes a new auction. Lots are activated by the
// sequencer, never directly.
type CreateAuctionParams struct {
	Title       string
	Mode        models.AuctionMode
	Increments  []models.IncrementSlab
	LotDuration time.Duration
	StartTime   time.Time
	EndTime     time.Time
	Lots        []LotParams
}

// CreateAuction validates and persists a new auction with its lots in
// Upcoming state. The scheduler starts it once the start window opens.
func (e *Engine) CreateAuction(ctx context.Context, params CreateAuctionParams) (*models.Auction, error) {
	table := IncrementTable(params.Increments)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if len(params.Lots) == 0 {
		return nil, fmt.Errorf("%w: auction needs at least one lot", ErrInvalidRequest)
	}
	if params.Mode == models.AuctionModeSingle && len(params.Lots) != 1 {
		return nil, fmt.Errorf("%w: single-item auction must have exactly one lot", ErrInvalidRequest)
	}
	if !params.EndTime.After(params.StartTime) {
		return nil, fmt.Errorf("%w: end time must follow start time", ErrInvalidRequest)
	}

	lotDuration := params.LotDuration
	if lotDuration <= 0 {
		lotDuration = e.cfg.DefaultLotDuration
	}

	code, err := e.generateAuctionCode(ctx)
	if err != nil {
		return nil, err
	}

	auction := &models.Auction{
		AuctionCode: code,
		Title:       params.Title,
		Mode:        params.Mode,
		Status:      models.AuctionStatusPending,
		Increments:  params.Increments,
		LotDuration: lotDuration,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
	}

	seen := make(map[int]bool, len(params.Lots))
	lots := make([]*models.Lot, 0, len(params.Lots))
	for i, lp := range params.Lots {
		number := lp.Number
		if number == 0 {
			number = i + 1
		}
		if number < 1 || seen[number] {
			return nil, fmt.Errorf("%w: lot numbers must be unique and 1-based", ErrInvalidRequest)
		}
		seen[number] = true
		if lp.StartingPrice <= 0 {
			return nil, fmt.Errorf("%w: lot %d has no starting price", ErrInvalidRequest, number)
		}
		lots = append(lots, &models.Lot{
			Number:        number,
			Title:         lp.Title,
			VendorID:      lp.VendorID,
			StartingPrice: lp.StartingPrice,
			ReservePrice:  lp.ReservePrice,
			Status:        models.LotStatusUpcoming,
		})
	}

	if err := e.auctions.Create(ctx, auction, lots); err != nil {
		return nil, err
	}

	slog.Info("Auction created",
		slog.String("type", "auction"),
		slog.String("auction_code", auction.AuctionCode),
		slog.String("mode", string(auction.Mode)),
		slog.Int("lots", len(lots)))

	return auction, nil
}

// PlaceBid accepts a bid on a lot. Acceptance is serialized per lot: the
// in-process mutex orders concurrent submissions, the SERIALIZABLE
// transaction with a row lock guards against other processes. A rejected bid
// has no side effects.
func (e *Engine) PlaceBid(ctx context.Context, auctionID int64, lotNumber int, userID, amount int64) (*models.LotBid, error) {
	auction, err := e.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != models.AuctionStatusActive {
		return nil, fmt.Errorf("%w: auction is %s", ErrLotNotOpen, auction.Status)
	}

	probe, err := e.lots.GetByNumber(ctx, auctionID, lotNumber)
	if err != nil {
		return nil, err
	}

	mu := e.lockFor(probe.ID)
	mu.Lock()
	defer mu.Unlock()

	var (
		bid       *models.LotBid
		outbid    int64
		deadline  time.Time
		nextFloor int64
	)

	err = e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		lot := new(models.Lot)
		if err := tx.NewSelect().
			Model(lot).
			Where("id = ?", probe.ID).
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to lock lot: %w", err)
		}

		table := IncrementTable(auction.Increments)
		if err := ValidateBidAmount(lot, table, amount, e.cfg.BaseUnit); err != nil {
			return err
		}

		if err := e.ledger.Freeze(ctx, tx, userID, auctionID, lotNumber, amount); err != nil {
			return err
		}
		if lot.TopBidderID != 0 && lot.TopBidderID != userID {
			if err := e.ledger.Unfreeze(ctx, tx, lot.TopBidderID, auctionID, lotNumber); err != nil {
				return err
			}
			outbid = lot.TopBidderID
		}

		now := time.Now()
		bid = &models.LotBid{
			LotID:     lot.ID,
			AuctionID: auctionID,
			BidderID:  userID,
			Amount:    amount,
			Timestamp: now,
			CreatedAt: now,
		}
		if _, err := tx.NewInsert().Model(bid).Exec(ctx); err != nil {
			return fmt.Errorf("failed to record bid: %w", err)
		}

		deadline = now.Add(e.cfg.QuietInterval)
		if _, err := tx.NewUpdate().
			Model((*models.Lot)(nil)).
			Set("current_bid = ?", amount).
			Set("top_bidder_id = ?", userID).
			Set("status = ?", models.LotStatusActive).
			Set("last_bid_time = ?", now).
			Set("quiet_deadline = ?", deadline).
			Set("bid_count = bid_count + 1").
			Set("updated_at = ?", now).
			Where("id = ?", lot.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update lot with bid: %w", err)
		}

		if next, err := table.MinNextBid(amount); err == nil {
			nextFloor = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.scheduler.Schedule(probe.ID, deadline)
	e.publisher.Publish(ctx, Event{
		Type:       EventBidAccepted,
		AuctionID:  auctionID,
		LotNumber:  lotNumber,
		LotStatus:  models.LotStatusActive,
		BidderID:   userID,
		Amount:     amount,
		OccurredAt: time.Now(),
	})

	if outbid != 0 && nextFloor > 0 {
		go e.checkOutbidLimit(outbid, nextFloor)
	}

	slog.Info("Bid accepted",
		slog.String("type", "auction"),
		slog.Int64("auction_id", auctionID),
		slog.Int("lot_number", lotNumber),
		slog.Int64("bidder_id", userID),
		slog.Int64("amount", amount))

	return bid, nil
}

// HandleDueLot advances the countdown for one lot whose quiet deadline has
// passed. A bid that commits between scheduling and this call moves the
// deadline forward, in which case this is a no-op that re-arms the timer.
func (e *Engine) HandleDueLot(ctx context.Context, lotID int64) error {
	mu := e.lockFor(lotID)
	mu.Lock()
	defer mu.Unlock()

	var (
		events   []Event
		closed   *models.Lot
		deadline time.Time
		nextLot  *models.Lot
	)

	err := e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		lot := new(models.Lot)
		if err := tx.NewSelect().
			Model(lot).
			Where("id = ?", lotID).
			For("UPDATE").
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to lock lot: %w", err)
		}

		now := time.Now()
		next, due := NextTransition(lot, now)
		if !due {
			deadline = lot.QuietDeadline
			return nil
		}

		auction := new(models.Auction)
		if err := tx.NewSelect().
			Model(auction).
			Where("id = ?", lot.AuctionID).
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to get auction: %w", err)
		}

		switch next {
		case models.LotStatusGoingOnce, models.LotStatusGoingTwice:
			deadline = now.Add(e.cfg.QuietInterval)
			if _, err := tx.NewUpdate().
				Model((*models.Lot)(nil)).
				Set("status = ?", next).
				Set("quiet_deadline = ?", deadline).
				Set("updated_at = ?", now).
				Where("id = ?", lot.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to advance countdown: %w", err)
			}
			events = append(events, Event{
				Type:       EventCountdownWarning,
				AuctionID:  lot.AuctionID,
				LotNumber:  lot.Number,
				LotStatus:  next,
				Amount:     lot.CurrentBid,
				OccurredAt: now,
			})

		case models.LotStatusSold:
			if err := e.closeSold(ctx, tx, auction, lot, now); err != nil {
				return err
			}
			closed = lot
			activated, ended, err := e.advance(ctx, tx, auction, lot, now)
			if err != nil {
				return err
			}
			nextLot = activated
			events = e.closeEvents(events, lot, activated, ended, now)

		case models.LotStatusUnsold:
			if err := e.closeUnsold(ctx, tx, lot, now); err != nil {
				return err
			}
			closed = lot
			activated, ended, err := e.advance(ctx, tx, auction, lot, now)
			if err != nil {
				return err
			}
			nextLot = activated
			events = e.closeEvents(events, lot, activated, ended, now)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if closed == nil && !deadline.IsZero() {
		e.scheduler.Schedule(lotID, deadline)
	}
	if nextLot != nil {
		e.scheduler.Schedule(nextLot.ID, nextLot.QuietDeadline)
	}
	for _, event := range events {
		e.publisher.Publish(ctx, event)
	}
	if closed != nil {
		e.scheduler.Forget(lotID)
		e.notifier.NotifyLotClosed(ctx, closed)
	}
	return nil
}

// closeSold finalizes a sold lot: winner recorded, winner's freeze settled,
// losers released, and the lot handed to the settler, all in one
// transaction so the ownership ledger can never drift from the lot record.
func (e *Engine) closeSold(ctx context.Context, tx bun.Tx, auction *models.Auction, lot *models.Lot, now time.Time) error {
	winner := lot.TopBidderID
	if winner == 0 {
		return fmt.Errorf("%w: lot %d has bids but no top bidder", ErrConsistency, lot.Number)
	}

	if _, err := tx.NewUpdate().
		Model((*models.Lot)(nil)).
		Set("status = ?", models.LotStatusSold).
		Set("winner_id = ?", winner).
		Set("end_time = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", lot.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark lot sold: %w", err)
	}
	lot.Status = models.LotStatusSold
	lot.WinnerID = winner
	lot.EndTime = now

	if err := e.ledger.Settle(ctx, tx, winner, lot.AuctionID, lot.Number); err != nil {
		return err
	}
	if err := e.ledger.ReleaseLosers(ctx, tx, lot.AuctionID, lot.Number, winner); err != nil {
		return err
	}
	if e.settler != nil {
		if err := e.settler.SettleSold(ctx, tx, lot); err != nil {
			return err
		}
	}

	slog.Info("Lot sold",
		slog.String("type", "auction"),
		slog.Int64("auction_id", lot.AuctionID),
		slog.Int("lot_number", lot.Number),
		slog.Int64("winner_id", winner),
		slog.Int64("hammer_price", lot.CurrentBid))
	return nil
}

func (e *Engine) closeUnsold(ctx context.Context, tx bun.Tx, lot *models.Lot, now time.Time) error {
	if _, err := tx.NewUpdate().
		Model((*models.Lot)(nil)).
		Set("status = ?", models.LotStatusUnsold).
		Set("end_time = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", lot.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark lot unsold: %w", err)
	}
	lot.Status = models.LotStatusUnsold
	lot.EndTime = now

	// Everyone gets their coins back, including a top bidder below reserve.
	if err := e.ledger.ReleaseLosers(ctx, tx, lot.AuctionID, lot.Number, 0); err != nil {
		return err
	}

	slog.Info("Lot unsold",
		slog.String("type", "auction"),
		slog.Int64("auction_id", lot.AuctionID),
		slog.Int("lot_number", lot.Number),
		slog.Int("bid_count", lot.BidCount))
	return nil
}

func (e *Engine) advance(ctx context.Context, tx bun.Tx, auction *models.Auction, closed *models.Lot, now time.Time) (*models.Lot, bool, error) {
	if auction.Mode == models.AuctionModeSingle {
		if err := e.sequencer.endAuction(ctx, tx, auction.ID, now); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	return e.sequencer.AdvanceAfter(ctx, tx, auction, closed, now, e.cfg.QuietInterval)
}

func (e *Engine) closeEvents(events []Event, closed, activated *models.Lot, ended bool, now time.Time) []Event {
	closedEvent := Event{
		Type:       EventLotClosed,
		AuctionID:  closed.AuctionID,
		LotNumber:  closed.Number,
		LotStatus:  closed.Status,
		WinnerID:   closed.WinnerID,
		Amount:     closed.CurrentBid,
		OccurredAt: now,
	}
	if activated != nil {
		closedEvent.NextLot = activated.Number
	}
	events = append(events, closedEvent)
	if activated != nil {
		events = append(events, Event{
			Type:       EventLotActivated,
			AuctionID:  activated.AuctionID,
			LotNumber:  activated.Number,
			LotStatus:  models.LotStatusActive,
			OccurredAt: now,
		})
	}
	if ended {
		events = append(events, Event{
			Type:       EventAuctionEnded,
			AuctionID:  closed.AuctionID,
			OccurredAt: now,
		})
	}
	return events
}

// ActivateDue starts pending auctions whose start window has opened.
func (e *Engine) ActivateDue(ctx context.Context) error {
	due, err := e.auctions.GetPendingDue(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, auction := range due {
		if err := e.startAuction(ctx, auction); err != nil {
			slog.Error("Failed to start auction",
				slog.Int64("auction_id", auction.ID),
				slog.Any("error", err))
		}
	}
	return nil
}

func (e *Engine) startAuction(ctx context.Context, auction *models.Auction) error {
	var first *models.Lot

	err := e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		if _, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("status = ?", models.AuctionStatusActive).
			Set("updated_at = ?", now).
			Where("id = ? AND status = ?", auction.ID, models.AuctionStatusPending).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to activate auction: %w", err)
		}

		lot := new(models.Lot)
		if err := tx.NewSelect().
			Model(lot).
			Where("auction_id = ? AND status = ?", auction.ID, models.LotStatusUpcoming).
			Order("number ASC").
			Limit(1).
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to get first lot: %w", err)
		}

		if err := e.sequencer.ActivateLot(ctx, tx, auction, lot, now, e.cfg.QuietInterval); err != nil {
			return err
		}
		first = lot
		return nil
	})
	if err != nil {
		return err
	}

	e.scheduler.Schedule(first.ID, first.QuietDeadline)
	e.publisher.Publish(ctx, Event{
		Type:       EventLotActivated,
		AuctionID:  auction.ID,
		LotNumber:  first.Number,
		LotStatus:  models.LotStatusActive,
		OccurredAt: time.Now(),
	})

	slog.Info("Auction started",
		slog.String("type", "auction"),
		slog.Int64("auction_id", auction.ID),
		slog.String("auction_code", auction.AuctionCode),
		slog.Int("first_lot", first.Number))
	return nil
}

// CancelAuction terminates a pending or active auction. Open and upcoming
// lots close unsold and every freeze on them is released.
func (e *Engine) CancelAuction(ctx context.Context, auctionID int64) error {
	auction, err := e.auctions.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != models.AuctionStatusPending && auction.Status != models.AuctionStatusActive {
		return fmt.Errorf("%w: auction is %s", ErrLotNotOpen, auction.Status)
	}

	err = e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		var lots []*models.Lot
		if err := tx.NewSelect().
			Model(&lots).
			Where("auction_id = ?", auctionID).
			Where("status NOT IN (?)", bun.In([]models.LotStatus{models.LotStatusSold, models.LotStatusUnsold})).
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to lock lots: %w", err)
		}

		for _, lot := range lots {
			if err := e.ledger.ReleaseLosers(ctx, tx, auctionID, lot.Number, 0); err != nil {
				return err
			}
			e.scheduler.Forget(lot.ID)
		}

		if _, err := tx.NewUpdate().
			Model((*models.Lot)(nil)).
			Set("status = ?", models.LotStatusUnsold).
			Set("updated_at = ?", now).
			Where("auction_id = ?", auctionID).
			Where("status NOT IN (?)", bun.In([]models.LotStatus{models.LotStatusSold, models.LotStatusUnsold})).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to close lots: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.Auction)(nil)).
			Set("status = ?", models.AuctionStatusCancelled).
			Set("updated_at = ?", now).
			Where("id = ?", auctionID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to cancel auction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Auction cancelled",
		slog.String("type", "auction"),
		slog.Int64("auction_id", auctionID))
	return nil
}

// Recover re-arms countdown timers from stored quiet deadlines after a
// restart. Overdue lots fire immediately; the in-memory countdown was never
// the source of truth.
func (e *Engine) Recover(ctx context.Context) error {
	open, err := e.lots.GetOpen(ctx)
	if err != nil {
		return err
	}
	for _, lot := range open {
		e.scheduler.Schedule(lot.ID, lot.QuietDeadline)
	}

	slog.Info("Recovered open lots",
		slog.String("type", "auction"),
		slog.Int("count", len(open)))
	return nil
}

func (e *Engine) Shutdown() {
	e.scheduler.Shutdown()
}

func (e *Engine) lockFor(lotID int64) *sync.Mutex {
	mu, _ := e.lotLocks.LoadOrCompute(lotID, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	return mu
}

func (e *Engine) checkOutbidLimit(userID, minNextBid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e.ledger.CheckLimit(ctx, e.users.DB(), userID, minNextBid)
}

// generateAuctionCode produces a short unique human-readable auction code.
func (e *Engine) generateAuctionCode(ctx context.Context) (string, error) {
	for i := 0; i < codeMaxRetries; i++ {
		bytes := make([]byte, 4)
		if _, err := rand.Read(bytes); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}

		encoded := base32.StdEncoding.EncodeToString(bytes)
		code := strings.ToUpper(encoded[:codeLength])

		exists, err := e.auctions.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique auction code after %d attempts", codeMaxRetries)
}
