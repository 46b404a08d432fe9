package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderAccepted  OrderStatus = "Accepted"
	OrderClosed    OrderStatus = "Closed"
	OrderCompleted OrderStatus = "Completed"
	OrderRejected  OrderStatus = "Rejected"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderAccepted, OrderClosed, OrderCompleted, OrderRejected:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an order may move from one status to another.
// Pending resolves exactly once, either to Accepted (direct acceptance) or to
// Closed (auction finished). Completed and Rejected are reviewer verdicts over
// a resolved order. No status ever moves backward.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderPending:
		return to == OrderAccepted || to == OrderClosed
	case OrderAccepted, OrderClosed:
		return to == OrderCompleted || to == OrderRejected
	default:
		return false
	}
}

// ReviewableStatus reports whether a status may be set through administrative
// review. Closed is excluded: only the auction closer closes orders, and it
// does so together with the winning bid and the close timestamp.
func ReviewableStatus(s OrderStatus) bool {
	switch s {
	case OrderAccepted, OrderCompleted, OrderRejected:
		return true
	default:
		return false
	}
}

type OrderKind string

const (
	KindProduct OrderKind = "Product"
	KindLabor   OrderKind = "Labor"
)

func ValidOrderKind(k OrderKind) bool {
	switch k {
	case KindProduct, KindLabor:
		return true
	default:
		return false
	}
}

// OrderKinds lists the kinds swept independently by the auction closer.
func OrderKinds() []OrderKind {
	return []OrderKind{KindProduct, KindLabor}
}

// ProductSpec describes a fabrication request: sheet dimensions in meters,
// thickness in millimeters.
type ProductSpec struct {
	ProductType string  `json:"productType"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	DepthMM     float64 `json:"depthMm"`
	Quantity    int     `json:"quantity"`
}

// LaborSpec describes a labor job in free text.
type LaborSpec struct {
	LaborType string `json:"laborType"`
	Details   string `json:"details"`
}

type Order struct {
	Id                 string       `json:"id"`
	Kind               OrderKind    `json:"kind"`
	OwnerId            string       `json:"ownerId"`
	Status             OrderStatus  `json:"status"`
	Product            *ProductSpec `json:"product,omitempty"`
	Labor              *LaborSpec   `json:"labor,omitempty"`
	StartPrice         float64      `json:"startPrice,omitempty"`
	CalculatedPrice    float64      `json:"calculatedPrice,omitempty"`
	MaxPrice           float64      `json:"maxPrice,omitempty"`
	AuctionDurationMin int          `json:"auctionDurationMin"`
	AuctionEndTime     time.Time    `json:"auctionEndTime"`
	Bids               []Bid        `json:"bids"`
	WinningBid         *Bid         `json:"winningBid,omitempty"`
	AcceptedBy         string       `json:"acceptedBy,omitempty"`
	ClosedAt           *time.Time   `json:"closedAt,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"-"`
}

// OrderClosure is one order's target state computed by a sweep, applied to the
// store conditionally on the order still being Pending.
type OrderClosure struct {
	OrderId    string
	WinningBid *Bid
}
