package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fabmarket/internal/models"
	"fabmarket/internal/pricing"
)

// Store is the slice of the order store the service mutates. All status
// changes behind it are compare-and-set on the current status and the bid
// append is atomic, so the service itself holds no locks.
type Store interface {
	AddOrder(ctx context.Context, order models.Order) (models.Order, error)
	GetOrderByUUID(ctx context.Context, UUID string) (models.Order, error)
	GetOrders(ctx context.Context, limit, offset int, ownerId, acceptedBy string, kind models.OrderKind, status models.OrderStatus) ([]models.Order, error)
	AppendBid(ctx context.Context, orderId, bidder string, amount float64, now time.Time) (models.Bid, error)
	AcceptOrder(ctx context.Context, orderId, providerId string, now time.Time) error
	UpdateOrderStatus(ctx context.Context, orderId string, from, to models.OrderStatus, now time.Time) error
}

type Service struct {
	store Store
	price pricing.Func
	now   func() time.Time
}

type option func(*Service)

// WithClock substitutes the wall clock, keeping deadline logic deterministic
// in tests.
func WithClock(now func() time.Time) option {
	return func(s *Service) {
		s.now = now
	}
}

func WithPricing(price pricing.Func) option {
	return func(s *Service) {
		s.price = price
	}
}

func NewService(store Store, opts ...option) *Service {
	s := &Service{
		store: store,
		price: pricing.Default,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

//// Orders

// CreateOrder opens an auction: the order starts Pending with a deadline of
// now plus the requested duration. Product orders get their reference price
// from the pricing function.
func (s *Service) CreateOrder(ctx context.Context, ownerId string, draft models.Order) (models.Order, error) {
	if err := validateDraft(draft); err != nil {
		return draft, fmt.Errorf("service.Service.CreateOrder: %w", err)
	}

	now := s.now()
	draft.OwnerId = ownerId
	draft.Status = models.OrderPending
	draft.AuctionEndTime = now.Add(time.Duration(draft.AuctionDurationMin) * time.Minute)
	if draft.Kind == models.KindProduct {
		draft.CalculatedPrice = s.price(*draft.Product)
	}

	order, err := s.store.AddOrder(ctx, draft)
	if err != nil {
		return order, fmt.Errorf("service.Service.CreateOrder: %w", err)
	}

	return order, nil
}

func validateDraft(draft models.Order) error {
	if !models.ValidOrderKind(draft.Kind) {
		return fmt.Errorf("%w: unknown order kind %q", models.ErrInvalidOrder, string(draft.Kind))
	}
	if draft.AuctionDurationMin <= 0 {
		return fmt.Errorf("%w: auction duration must be positive", models.ErrInvalidOrder)
	}
	if draft.StartPrice < 0 || draft.MaxPrice < 0 {
		return fmt.Errorf("%w: prices must not be negative", models.ErrInvalidOrder)
	}

	switch draft.Kind {
	case models.KindProduct:
		if draft.Product == nil {
			return fmt.Errorf("%w: product order requires a product spec", models.ErrInvalidOrder)
		}
		if draft.Product.Width <= 0 || draft.Product.Height <= 0 || draft.Product.DepthMM <= 0 {
			return fmt.Errorf("%w: product dimensions must be positive", models.ErrInvalidOrder)
		}
		if draft.Product.Quantity < 1 {
			return fmt.Errorf("%w: product quantity must be at least 1", models.ErrInvalidOrder)
		}
	case models.KindLabor:
		if draft.Labor == nil {
			return fmt.Errorf("%w: labor order requires a labor spec", models.ErrInvalidOrder)
		}
		if len(strings.TrimSpace(draft.Labor.Details)) == 0 {
			return fmt.Errorf("%w: labor order requires details", models.ErrInvalidOrder)
		}
	}

	return nil
}

func (s *Service) GetOrders(ctx context.Context, limit, offset int, kind models.OrderKind, status models.OrderStatus) ([]models.Order, error) {
	orders, err := s.store.GetOrders(ctx, limit, offset, "", "", kind, status)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetOrders: %w", err)
	}
	return orders, nil
}

func (s *Service) GetUserOrders(ctx context.Context, ownerId string, limit, offset int) ([]models.Order, error) {
	orders, err := s.store.GetOrders(ctx, limit, offset, ownerId, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUserOrders: %w", err)
	}
	return orders, nil
}

// GetAcceptedOrders lists orders the provider took by direct acceptance.
func (s *Service) GetAcceptedOrders(ctx context.Context, providerId string, limit, offset int) ([]models.Order, error) {
	orders, err := s.store.GetOrders(ctx, limit, offset, "", providerId, "", "")
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetAcceptedOrders: %w", err)
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, orderId string) (models.Order, error) {
	order, err := s.store.GetOrderByUUID(ctx, orderId)
	if errors.Is(err, sql.ErrNoRows) {
		return order, fmt.Errorf("service.Service.GetOrder: %w", models.ErrNoOrder)
	} else if err != nil {
		return order, fmt.Errorf("service.Service.GetOrder: %w", err)
	}
	return order, nil
}

//// Bidding

// SubmitBid validates the amount before touching the store, then appends via
// the store's guarded insert. The deadline is enforced here even before a
// sweep has run, so a bid that could never win is rejected immediately.
func (s *Service) SubmitBid(ctx context.Context, orderId, bidder string, amount float64) (models.Bid, error) {
	if !models.ValidBidAmount(amount) {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrInvalidAmount)
	}

	bid, err := s.store.AppendBid(ctx, orderId, bidder, amount, s.now())
	if err != nil {
		return bid, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	return bid, nil
}

// AcceptOrder lets a provider take a product order without bidding, ending
// the auction early. Exactly one of acceptance and closing wins for any
// order: both paths compare-and-set on status Pending.
func (s *Service) AcceptOrder(ctx context.Context, orderId, providerId string) (models.Order, error) {
	order, err := s.store.GetOrderByUUID(ctx, orderId)
	if errors.Is(err, sql.ErrNoRows) {
		return order, fmt.Errorf("service.Service.AcceptOrder: %w", models.ErrNoOrder)
	} else if err != nil {
		return order, fmt.Errorf("service.Service.AcceptOrder: %w", err)
	}

	if order.Kind != models.KindProduct {
		return order, fmt.Errorf("service.Service.AcceptOrder: labor orders resolve through bidding only: %w", models.ErrForbidden)
	}

	err = s.store.AcceptOrder(ctx, orderId, providerId, s.now())
	if err != nil {
		return order, fmt.Errorf("service.Service.AcceptOrder: %w", err)
	}

	order, err = s.store.GetOrderByUUID(ctx, orderId)
	if err != nil {
		return order, fmt.Errorf("service.Service.AcceptOrder: %w", err)
	}

	return order, nil
}

//// Review

// ReviewOrder applies an administrative verdict. Legal moves only: a resolved
// order may become Completed or Rejected, a Pending order may be Accepted.
// Closed is never a verdict, it belongs to the auction closer. The conditional
// update keys on the status observed here, so racing reviewers cannot
// double-apply.
func (s *Service) ReviewOrder(ctx context.Context, orderId string, status models.OrderStatus) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, fmt.Errorf("service.Service.ReviewOrder: %w: %q", models.ErrInvalidStatus, string(status))
	}
	if !models.ReviewableStatus(status) {
		return models.Order{}, fmt.Errorf("service.Service.ReviewOrder: %s is not a review verdict: %w", status, models.ErrInvalidStatus)
	}

	order, err := s.store.GetOrderByUUID(ctx, orderId)
	if errors.Is(err, sql.ErrNoRows) {
		return order, fmt.Errorf("service.Service.ReviewOrder: %w", models.ErrNoOrder)
	} else if err != nil {
		return order, fmt.Errorf("service.Service.ReviewOrder: %w", err)
	}

	if !models.CanTransition(order.Status, status) {
		return order, fmt.Errorf("service.Service.ReviewOrder: %s -> %s: %w", order.Status, status, models.ErrInvalidStatus)
	}

	err = s.store.UpdateOrderStatus(ctx, orderId, order.Status, status, s.now())
	if err != nil {
		return order, fmt.Errorf("service.Service.ReviewOrder: %w", err)
	}

	order, err = s.store.GetOrderByUUID(ctx, orderId)
	if err != nil {
		return order, fmt.Errorf("service.Service.ReviewOrder: %w", err)
	}

	return order, nil
}
