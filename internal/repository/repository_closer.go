package repository

import (
	"context"
	"fmt"
	"time"

	"fabmarket/internal/models"
)

// ExpiredPendingOrders selects orders of one kind whose deadline has elapsed
// while still Pending, bid ledgers included. The predicate keeps repeated and
// overlapping sweeps naturally idempotent.
func (repo *Repository) ExpiredPendingOrders(ctx context.Context, kind models.OrderKind, now time.Time, limit int) ([]models.Order, error) {
	query := `
	SELECT
		id,
		kind,
		owner_id,
		status,
		payload,
		start_price,
		calculated_price,
		max_price,
		auction_duration_min,
		auction_end_time,
		winning_bidder,
		winning_amount,
		winning_bid_at,
		accepted_by,
		closed_at,
		created_at,
		updated_at
	FROM orders
	WHERE kind = $1 AND status = $2 AND auction_end_time <= $3
	ORDER BY auction_end_time
	LIMIT $4
	`

	var limitParam interface{}
	if limit > 0 {
		limitParam = limit
	}

	rows, err := repo.db.QueryContext(ctx, query, kind, models.OrderPending, now, limitParam)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ExpiredPendingOrders: %w", err)
	}
	defer rows.Close()

	var result []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.ExpiredPendingOrders: row scan failed: %w", err)
		}
		result = append(result, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.ExpiredPendingOrders: %w", rows.Err())
	}

	err = repo.attachBids(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.ExpiredPendingOrders: %w", err)
	}

	return result, nil
}

// CloseOrders commits a sweep's closures in one transaction. Every update is
// guarded on status still being Pending; an order accepted since selection is
// skipped, not failed. Returns the number of orders actually closed.
func (repo *Repository) CloseOrders(ctx context.Context, closures []models.OrderClosure, now time.Time) (int, error) {
	if len(closures) == 0 {
		return 0, nil
	}

	query := `
	UPDATE orders
	SET (status, winning_bidder, winning_amount, winning_bid_at, closed_at, updated_at) =
	($1, $2, $3, $4, $5, $5)
	WHERE id = $6 AND status = $7
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.CloseOrders: failed to start transaction: %w", err)
	}

	closed := 0
	for _, closure := range closures {
		var bidder, amount, bidAt interface{}
		if closure.WinningBid != nil {
			bidder = closure.WinningBid.Bidder
			amount = closure.WinningBid.Amount
			bidAt = closure.WinningBid.CreatedAt
		}

		res, err := tx.ExecContext(ctx, query, models.OrderClosed, bidder, amount, bidAt, now, closure.OrderId, models.OrderPending)
		if err != nil {
			return 0, fmt.Errorf("repository.Repository.CloseOrders: %w", wrapRollbackErr(tx, err))
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("repository.Repository.CloseOrders: %w", wrapRollbackErr(tx, err))
		}
		closed += int(affected)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.CloseOrders: failed to commit transaction: %w", err)
	}

	return closed, nil
}
