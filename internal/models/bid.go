package models

import (
	"math"
	"time"
)

// Bid is one provider's offer on an order. Id is the position in the
// append-only ledger, assigned by the store.
type Bid struct {
	Id        int64     `json:"-"`
	OrderId   string    `json:"-"`
	Bidder    string    `json:"bidder"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidBidAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// SelectWinner picks the winning bid of a finished reverse auction: the lowest
// amount wins, ties go to the earliest createdAt and then to the earliest
// ledger entry. Returns nil for an empty ledger.
func SelectWinner(bids []Bid) *Bid {
	var win *Bid
	for i := range bids {
		bid := &bids[i]
		if win == nil || betterBid(bid, win) {
			win = bid
		}
	}
	return win
}

func betterBid(b, cur *Bid) bool {
	if b.Amount != cur.Amount {
		return b.Amount < cur.Amount
	}
	return b.CreatedAt.Before(cur.CreatedAt)
}
