package auction

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const pollInterval = 5 * time.Second

// Scheduler turns durable quiet deadlines into HandleDueLot calls. Each open
// lot gets one cancellable timer; a polling ticker backstops missed timers
// and starts pending auctions, so nothing depends on a timer surviving a
// restart.
type Scheduler struct {
	engine   *Engine
	timers   sync.Map // lotID -> *time.Timer
	ticker   *time.Ticker
	shutdown chan struct{}
	once     sync.Once
}

func NewScheduler(engine *Engine) *Scheduler {
	return &Scheduler{
		engine:   engine,
		ticker:   time.NewTicker(pollInterval),
		shutdown: make(chan struct{}),
	}
}

// Start begins the polling loop.
func (s *Scheduler) Start() {
	go s.run()
}

// Schedule arms (or re-arms) the countdown timer for a lot. Scheduling with a
// past deadline fires immediately.
func (s *Scheduler) Schedule(lotID int64, deadline time.Time) {
	if deadline.IsZero() {
		return
	}

	s.Forget(lotID)
	timer := time.AfterFunc(time.Until(deadline), func() {
		s.timers.Delete(lotID)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.engine.HandleDueLot(ctx, lotID); err != nil {
			slog.Error("Failed to process due lot",
				slog.Int64("lot_id", lotID),
				slog.Any("error", err))
		}
	})
	s.timers.Store(lotID, timer)
}

// Forget drops the timer for a lot that no longer needs one.
func (s *Scheduler) Forget(lotID int64) {
	if existing, ok := s.timers.LoadAndDelete(lotID); ok {
		existing.(*time.Timer).Stop()
	}
}

func (s *Scheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			s.sweep(ctx)
			cancel()
		case <-s.shutdown:
			return
		}
	}
}

// sweep starts due auctions and catches lots whose timers were lost, e.g.
// after a crash between commit and Schedule.
func (s *Scheduler) sweep(ctx context.Context) {
	if err := s.engine.ActivateDue(ctx); err != nil {
		slog.Error("Failed to activate due auctions", slog.Any("error", err))
	}

	due, err := s.engine.lots.GetDue(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to scan due lots", slog.Any("error", err))
		return
	}
	for _, lot := range due {
		if _, armed := s.timers.Load(lot.ID); armed {
			continue
		}
		if err := s.engine.HandleDueLot(ctx, lot.ID); err != nil {
			slog.Error("Failed to process due lot",
				slog.Int64("lot_id", lot.ID),
				slog.Any("error", err))
		}
	}
}

// Shutdown stops the polling loop and every armed timer.
func (s *Scheduler) Shutdown() {
	s.once.Do(func() {
		close(s.shutdown)
		s.ticker.Stop()
		s.timers.Range(func(key, value any) bool {
			value.(*time.Timer).Stop()
			return true
		})
	})

	slog.Info("Lot scheduler shutdown completed")
}
