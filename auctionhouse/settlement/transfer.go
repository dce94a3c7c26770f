package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/numisbid/auctionhouse/auctionhouse/txutil"
)

// ValidateTransferSet checks a requested lot set against the source party's
// current holdings. With keepOne set the transfer may not strip the source of
// every lot, which is the rule for buyer invoices; vendor invoices may be
// emptied and are deleted instead.
func ValidateTransferSet(sourceLots, requested []int, keepOne bool) error {
	if len(requested) == 0 {
		return fmt.Errorf("%w: no lots requested", auction.ErrInvalidRequest)
	}

	owned := make(map[int]bool, len(sourceLots))
	for _, n := range sourceLots {
		owned[n] = true
	}

	moving := make(map[int]bool, len(requested))
	for _, n := range requested {
		if !owned[n] {
			return fmt.Errorf("%w: lot %d", auction.ErrNotOwned, n)
		}
		moving[n] = true
	}

	if keepOne && len(moving) >= len(owned) {
		return auction.ErrCannotEmptySource
	}
	return nil
}

// TransferBuyerLots moves settled lots from one buyer's invoice to another's.
// The source must keep at least one lot; the target invoice is created on
// first transfer. Both invoices and the lot records end recomputed and
// consistent, or the whole operation rolls back.
func (e *Engine) TransferBuyerLots(ctx context.Context, auctionID, fromBuyerID, toBuyerID int64, lotNumbers []int) error {
	if fromBuyerID == toBuyerID {
		return fmt.Errorf("%w: source and target buyer are the same", auction.ErrInvalidRequest)
	}

	err := e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		if err := e.lockInvoices(ctx, tx, (*models.BuyerInvoice)(nil),
			"auction_id = ? AND buyer_id IN (?)", auctionID, bun.In([]int64{fromBuyerID, toBuyerID})); err != nil {
			return err
		}

		var owned []*models.LotOwnership
		if err := tx.NewSelect().
			Model(&owned).
			Where("auction_id = ? AND buyer_id = ?", auctionID, fromBuyerID).
			Order("lot_number ASC").
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to lock owned lots: %w", err)
		}

		sourceNums := make([]int, 0, len(owned))
		for _, row := range owned {
			sourceNums = append(sourceNums, row.LotNumber)
		}
		if err := ValidateTransferSet(sourceNums, lotNumbers, true); err != nil {
			return err
		}

		if err := verifyLotRecords(ctx, tx, auctionID, lotNumbers, func(lot *models.Lot) error {
			if lot.WinnerID != fromBuyerID {
				return fmt.Errorf("%w: lot %d winner is %d, ledger says %d",
					auction.ErrConsistency, lot.Number, lot.WinnerID, fromBuyerID)
			}
			return nil
		}); err != nil {
			return err
		}

		now := time.Now()
		if _, err := tx.NewUpdate().
			Model((*models.LotOwnership)(nil)).
			Set("buyer_id = ?", toBuyerID).
			Set("updated_at = ?", now).
			Where("auction_id = ? AND buyer_id = ? AND lot_number IN (?)",
				auctionID, fromBuyerID, bun.In(lotNumbers)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to move ownership: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*models.Lot)(nil)).
			Set("winner_id = ?", toBuyerID).
			Set("updated_at = ?", now).
			Where("auction_id = ? AND number IN (?)", auctionID, bun.In(lotNumbers)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update lot winners: %w", err)
		}

		if err := e.rebuildBuyerInvoice(ctx, tx, auctionID, fromBuyerID); err != nil {
			return err
		}
		return e.rebuildBuyerInvoice(ctx, tx, auctionID, toBuyerID)
	})
	if err != nil {
		return err
	}

	slog.Info("Lots transferred between buyers",
		slog.String("type", "settlement"),
		slog.Int64("auction_id", auctionID),
		slog.Int64("from_buyer", fromBuyerID),
		slog.Int64("to_buyer", toBuyerID),
		slog.Int("lots", len(lotNumbers)))
	return nil
}

// TransferVendorLots moves settled lots from one vendor's invoice to
// another's. Unlike the buyer path the source may be emptied; the rebuild
// deletes the then-empty invoice.
func (e *Engine) TransferVendorLots(ctx context.Context, auctionID, fromVendorID, toVendorID int64, lotNumbers []int) error {
	if fromVendorID == toVendorID {
		return fmt.Errorf("%w: source and target vendor are the same", auction.ErrInvalidRequest)
	}

	err := e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		if err := e.lockInvoices(ctx, tx, (*models.VendorInvoice)(nil),
			"auction_id = ? AND vendor_id IN (?)", auctionID, bun.In([]int64{fromVendorID, toVendorID})); err != nil {
			return err
		}

		var owned []*models.LotOwnership
		if err := tx.NewSelect().
			Model(&owned).
			Where("auction_id = ? AND vendor_id = ?", auctionID, fromVendorID).
			Order("lot_number ASC").
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to lock supplied lots: %w", err)
		}

		sourceNums := make([]int, 0, len(owned))
		for _, row := range owned {
			sourceNums = append(sourceNums, row.LotNumber)
		}
		if err := ValidateTransferSet(sourceNums, lotNumbers, false); err != nil {
			return err
		}

		if err := verifyLotRecords(ctx, tx, auctionID, lotNumbers, func(lot *models.Lot) error {
			if lot.VendorID != fromVendorID {
				return fmt.Errorf("%w: lot %d vendor is %d, ledger says %d",
					auction.ErrConsistency, lot.Number, lot.VendorID, fromVendorID)
			}
			return nil
		}); err != nil {
			return err
		}

		now := time.Now()
		if _, err := tx.NewUpdate().
			Model((*models.LotOwnership)(nil)).
			Set("vendor_id = ?", toVendorID).
			Set("updated_at = ?", now).
			Where("auction_id = ? AND vendor_id = ? AND lot_number IN (?)",
				auctionID, fromVendorID, bun.In(lotNumbers)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to move ownership: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*models.Lot)(nil)).
			Set("vendor_id = ?", toVendorID).
			Set("updated_at = ?", now).
			Where("auction_id = ? AND number IN (?)", auctionID, bun.In(lotNumbers)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update lot vendors: %w", err)
		}

		if err := e.rebuildVendorInvoice(ctx, tx, auctionID, fromVendorID); err != nil {
			return err
		}
		return e.rebuildVendorInvoice(ctx, tx, auctionID, toVendorID)
	})
	if err != nil {
		return err
	}

	slog.Info("Lots transferred between vendors",
		slog.String("type", "settlement"),
		slog.Int64("auction_id", auctionID),
		slog.Int64("from_vendor", fromVendorID),
		slog.Int64("to_vendor", toVendorID),
		slog.Int("lots", len(lotNumbers)))
	return nil
}

// lockInvoices row-locks the source and target invoices. Ordering by id
// keeps concurrent transfers over the same invoice pair from deadlocking.
func (e *Engine) lockInvoices(ctx context.Context, tx bun.Tx, model any, where string, args ...any) error {
	var ids []int64
	if err := tx.NewSelect().
		Model(model).
		Column("id").
		Where(where, args...).
		Order("id ASC").
		For("UPDATE").
		Scan(ctx, &ids); err != nil {
		return fmt.Errorf("failed to lock invoices: %w", err)
	}
	return nil
}

// verifyLotRecords cross-checks the lot records against the ownership ledger
// before a transfer. A sold-status or ownership disagreement aborts the
// operation for manual reconciliation; it is never resolved by picking a
// side.
func verifyLotRecords(ctx context.Context, tx bun.Tx, auctionID int64, lotNumbers []int, check func(*models.Lot) error) error {
	var lots []*models.Lot
	if err := tx.NewSelect().
		Model(&lots).
		Where("auction_id = ? AND number IN (?)", auctionID, bun.In(lotNumbers)).
		For("UPDATE").
		Scan(ctx); err != nil {
		return fmt.Errorf("failed to lock lots: %w", err)
	}
	if len(lots) != len(dedupe(lotNumbers)) {
		return fmt.Errorf("%w: some lots do not exist", auction.ErrConsistency)
	}

	for _, lot := range lots {
		if lot.Status != models.LotStatusSold {
			return fmt.Errorf("%w: lot %d is %s", auction.ErrNotOwned, lot.Number, lot.Status)
		}
		if err := check(lot); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ns []int) []int {
	seen := make(map[int]bool, len(ns))
	out := make([]int, 0, len(ns))
	for _, n := range ns {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
