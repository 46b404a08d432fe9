package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fabmarket/internal/models"

	"github.com/lib/pq"
)

// AppendBid appends a bid to the order's ledger in a single guarded insert:
// the row is produced only if the order is still Pending and its deadline has
// not elapsed at the supplied instant. Concurrent bidders each insert their
// own row, so no append can overwrite another.
func (repo *Repository) AppendBid(ctx context.Context, orderId, bidder string, amount float64, now time.Time) (models.Bid, error) {
	bid := models.Bid{
		OrderId: orderId,
		Bidder:  bidder,
		Amount:  amount,
	}

	query := `
	INSERT INTO bids (order_id, bidder, amount, created_at)
	SELECT o.id, $2, $3, $4
	FROM orders o
	WHERE o.id = $1 AND o.status = $5 AND o.auction_end_time > $4
	RETURNING id, created_at
	`

	row := repo.db.QueryRowContext(ctx, query, orderId, bidder, amount, now, models.OrderPending)
	err := row.Scan(&bid.Id, &bid.CreatedAt)
	if err == sql.ErrNoRows {
		return bid, fmt.Errorf("repository.Repository.AppendBid: %w", repo.classifyBidConflict(ctx, orderId))
	} else if err != nil {
		return bid, fmt.Errorf("repository.Repository.AppendBid: %w", err)
	}

	return bid, nil
}

func (repo *Repository) classifyBidConflict(ctx context.Context, orderId string) error {
	row := repo.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1", orderId)
	var status models.OrderStatus
	err := row.Scan(&status)
	if err == sql.ErrNoRows {
		return models.ErrNoOrder
	} else if err != nil {
		return err
	}
	return models.ErrAuctionClosed
}

func (repo *Repository) GetBids(ctx context.Context, orderId string) ([]models.Bid, error) {
	query := `
	SELECT id, order_id, bidder, amount, created_at
	FROM bids
	WHERE order_id = $1
	ORDER BY id
	`

	rows, err := repo.db.QueryContext(ctx, query, orderId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetBids: %w", err)
	}
	defer rows.Close()

	var result []models.Bid
	var bid models.Bid
	for rows.Next() {
		err = rows.Scan(&bid.Id, &bid.OrderId, &bid.Bidder, &bid.Amount, &bid.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetBids: rows scan error: %w", err)
		}
		result = append(result, bid)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetBids: %w", rows.Err())
	}

	return result, nil
}

// attachBids loads the ledgers of all listed orders in one query and assigns
// them in ledger order.
func (repo *Repository) attachBids(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].Id)
		index[orders[i].Id] = i
	}

	query := `
	SELECT id, order_id, bidder, amount, created_at
	FROM bids
	WHERE order_id = ANY($1::uuid[])
	ORDER BY id
	`

	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("repository.Repository.attachBids: %w", err)
	}
	defer rows.Close()

	var bid models.Bid
	for rows.Next() {
		err = rows.Scan(&bid.Id, &bid.OrderId, &bid.Bidder, &bid.Amount, &bid.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository.Repository.attachBids: rows scan error: %w", err)
		}
		i := index[bid.OrderId]
		orders[i].Bids = append(orders[i].Bids, bid)
	}

	if rows.Err() != nil {
		return fmt.Errorf("repository.Repository.attachBids: %w", rows.Err())
	}

	return nil
}
