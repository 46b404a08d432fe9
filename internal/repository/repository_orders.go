package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fabmarket/internal/models"

	"github.com/google/uuid"
)

func (repo *Repository) prepOrdersQuery(limit, offset int, orderId, ownerId, acceptedBy string, kind models.OrderKind, status models.OrderStatus) (query string, queryParams []interface{}) {
	query = `
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
	$conditions$
	ORDER BY created_at DESC
	LIMIT $1
	OFFSET $2
	`

	queryParams = make([]interface{}, 0, 7)
	conditions := make([]string, 0, 5)

	if limit <= 0 {
		queryParams = append(queryParams, nil)
	} else {
		queryParams = append(queryParams, limit)
	}
	queryParams = append(queryParams, offset)

	if len(orderId) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, orderId)
	}

	if len(ownerId) > 0 {
		conditions = append(conditions, "owner_id = $$")
		queryParams = append(queryParams, ownerId)
	}

	if len(acceptedBy) > 0 {
		conditions = append(conditions, "accepted_by = $$")
		queryParams = append(queryParams, acceptedBy)
	}

	if len(kind) > 0 {
		conditions = append(conditions, "kind = $$")
		queryParams = append(queryParams, string(kind))
	}

	if len(status) > 0 {
		conditions = append(conditions, "status = $$")
		queryParams = append(queryParams, string(status))
	}

	condStr := ""
	if len(conditions) > 0 {
		for i := 0; i < len(conditions); i++ {
			conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(i+3), -1)
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}
	query = strings.Replace(query, "$conditions$", condStr, -1)

	return query, queryParams
}

func scanOrder(rows *sql.Rows) (models.Order, error) {
	var order models.Order
	var payload []byte
	var startPrice, calculatedPrice, maxPrice, winningAmount sql.NullFloat64
	var winningBidder, acceptedBy sql.NullString
	var winningBidAt, closedAt sql.NullTime

	err := rows.Scan(&order.Id, &order.Kind, &order.OwnerId, &order.Status, &payload,
		&startPrice, &calculatedPrice, &maxPrice, &order.AuctionDurationMin, &order.AuctionEndTime,
		&winningBidder, &winningAmount, &winningBidAt, &acceptedBy, &closedAt,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return order, err
	}

	order.StartPrice = startPrice.Float64
	order.CalculatedPrice = calculatedPrice.Float64
	order.MaxPrice = maxPrice.Float64
	order.AcceptedBy = acceptedBy.String
	if closedAt.Valid {
		t := closedAt.Time
		order.ClosedAt = &t
	}
	if winningBidder.Valid {
		order.WinningBid = &models.Bid{
			OrderId:   order.Id,
			Bidder:    winningBidder.String,
			Amount:    winningAmount.Float64,
			CreatedAt: winningBidAt.Time,
		}
	}

	switch order.Kind {
	case models.KindProduct:
		order.Product = &models.ProductSpec{}
		err = json.Unmarshal(payload, order.Product)
	case models.KindLabor:
		order.Labor = &models.LaborSpec{}
		err = json.Unmarshal(payload, order.Labor)
	}
	if err != nil {
		return order, fmt.Errorf("payload unmarshal failed: %w", err)
	}

	return order, nil
}

func (repo *Repository) GetOrders(ctx context.Context, limit, offset int, ownerId, acceptedBy string, kind models.OrderKind, status models.OrderStatus) ([]models.Order, error) {
	query, queryParams := repo.prepOrdersQuery(limit, offset, "", ownerId, acceptedBy, kind, status)

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetOrders: %w", err)
	}
	defer rows.Close()

	var result []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetOrders: row scan failed: %w", err)
		}
		result = append(result, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetOrders: %w", rows.Err())
	}

	err = repo.attachBids(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetOrders: %w", err)
	}

	return result, nil
}

func (repo *Repository) GetOrderByUUID(ctx context.Context, UUID string) (models.Order, error) {
	var order models.Order
	query, queryParams := repo.prepOrdersQuery(1, 0, UUID, "", "", "", "")

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return order, fmt.Errorf("repository.Repository.GetOrderByUUID: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		order, err = scanOrder(rows)
		if err != nil {
			return order, fmt.Errorf("repository.Repository.GetOrderByUUID: row scan failed: %w", err)
		}
	} else {
		return order, fmt.Errorf("repository.Repository.GetOrderByUUID: no order found by UUID %s, %w", UUID, sql.ErrNoRows)
	}

	if rows.Err() != nil {
		return order, fmt.Errorf("repository.Repository.GetOrderByUUID: %w", rows.Err())
	}

	order.Bids, err = repo.GetBids(ctx, order.Id)
	if err != nil {
		return order, fmt.Errorf("repository.Repository.GetOrderByUUID: %w", err)
	}

	return order, nil
}

func (repo *Repository) AddOrder(ctx context.Context, order models.Order) (models.Order, error) {
	result := order
	result.Id = uuid.New().String()

	var payload interface{}
	switch order.Kind {
	case models.KindProduct:
		payload = order.Product
	case models.KindLabor:
		payload = order.Labor
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddOrder: payload marshal failed: %w", err)
	}

	query := `
	INSERT INTO orders
		(id, kind, owner_id, status, payload, start_price, calculated_price, max_price, auction_duration_min, auction_end_time)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING
		created_at, updated_at
	`

	row := repo.db.QueryRowContext(ctx, query, result.Id, result.Kind, result.OwnerId, result.Status, data,
		nullPrice(result.StartPrice), nullPrice(result.CalculatedPrice), nullPrice(result.MaxPrice),
		result.AuctionDurationMin, result.AuctionEndTime)
	err = row.Scan(&result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.Repository.AddOrder: %w", err)
	}

	return result, nil
}

// AcceptOrder transitions Pending -> Accepted with a compare-and-set on
// status. A concurrent closer sweep or another acceptance makes the update a
// no-op, reported as models.ErrAlreadyResolved.
func (repo *Repository) AcceptOrder(ctx context.Context, orderId, providerId string, now time.Time) error {
	query := `
	UPDATE orders
	SET (status, accepted_by, updated_at) = ($1, $2, $3)
	WHERE id = $4 AND status = $5
	`

	res, err := repo.db.ExecContext(ctx, query, models.OrderAccepted, providerId, now, orderId, models.OrderPending)
	if err != nil {
		return fmt.Errorf("repository.Repository.AcceptOrder: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.AcceptOrder: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("repository.Repository.AcceptOrder: %w", repo.classifyStatusConflict(ctx, orderId))
	}

	return nil
}

// UpdateOrderStatus applies a reviewer transition conditionally on the status
// the caller observed, so a concurrent change turns into a conflict instead of
// a lost update.
func (repo *Repository) UpdateOrderStatus(ctx context.Context, orderId string, from, to models.OrderStatus, now time.Time) error {
	query := `
	UPDATE orders
	SET (status, updated_at) = ($1, $2)
	WHERE id = $3 AND status = $4
	`

	res, err := repo.db.ExecContext(ctx, query, to, now, orderId, from)
	if err != nil {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("repository.Repository.UpdateOrderStatus: %w", repo.classifyStatusConflict(ctx, orderId))
	}

	return nil
}

// classifyStatusConflict tells a missing order apart from one whose status
// guard failed.
func (repo *Repository) classifyStatusConflict(ctx context.Context, orderId string) error {
	row := repo.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1", orderId)
	var status models.OrderStatus
	err := row.Scan(&status)
	if err == sql.ErrNoRows {
		return models.ErrNoOrder
	} else if err != nil {
		return err
	}
	return models.ErrAlreadyResolved
}

func nullPrice(price float64) interface{} {
	if price <= 0 {
		return nil
	}
	return price
}
