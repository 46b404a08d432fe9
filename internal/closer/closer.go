package closer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fabmarket/internal/models"
)

// Store is the slice of the order store the sweep needs. Selection is by
// predicate and closing is conditional, so concurrent or repeated sweeps stay
// idempotent without coordination.
type Store interface {
	ExpiredPendingOrders(ctx context.Context, kind models.OrderKind, now time.Time, limit int) ([]models.Order, error)
	CloseOrders(ctx context.Context, closures []models.OrderClosure, now time.Time) (int, error)
}

// Closer enforces auction deadlines: every interval it finds orders whose
// deadline elapsed while still Pending and transitions them to Closed with
// the winning bid, or with none when nobody bid.
type Closer struct {
	store     Store
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

type option func(*Closer)

func WithInterval(interval time.Duration) option {
	return func(c *Closer) {
		c.interval = interval
	}
}

func WithBatchSize(size int) option {
	return func(c *Closer) {
		c.batchSize = size
	}
}

func WithClock(now func() time.Time) option {
	return func(c *Closer) {
		c.now = now
	}
}

func New(store Store, opts ...option) *Closer {
	c := &Closer{
		store:     store,
		interval:  time.Minute,
		batchSize: 500,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run sweeps on a fixed interval until the context is canceled. A failed
// sweep is logged and retried on the next tick; nothing is persisted between
// attempts.
func (c *Closer) Run(ctx context.Context) {
	log.Printf("Auction closer started, sweeping every %s", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Auction closer stopped")
			return
		case <-ticker.C:
			err := c.Sweep(ctx)
			if err != nil {
				log.Println("Auction sweep error:", err)
			}
		}
	}
}

// Sweep processes each order kind independently: a failure in one kind's
// batch must not keep the other from closing.
func (c *Closer) Sweep(ctx context.Context) error {
	var errs []error
	for _, kind := range models.OrderKinds() {
		err := c.sweepKind(ctx, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("closer.Closer.Sweep: %s orders: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Closer) sweepKind(ctx context.Context, kind models.OrderKind) error {
	now := c.now()

	orders, err := c.store.ExpiredPendingOrders(ctx, kind, now, c.batchSize)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	closures := make([]models.OrderClosure, 0, len(orders))
	for _, order := range orders {
		closures = append(closures, models.OrderClosure{
			OrderId:    order.Id,
			WinningBid: models.SelectWinner(order.Bids),
		})
	}

	closed, err := c.store.CloseOrders(ctx, closures, now)
	if err != nil {
		return err
	}

	// Orders accepted between selection and commit lose their update to the
	// status guard; that is the expected outcome of the race.
	log.Printf("Closed %d of %d expired %s orders", closed, len(closures), kind)
	return nil
}
