package controller

import (
	"encoding/json"
	"fmt"

	"fabmarket/internal/models"
)

// New order request

type NewOrderReq struct {
	Kind               models.OrderKind    `json:"kind"`
	Product            *models.ProductSpec `json:"product,omitempty"`
	Labor              *models.LaborSpec   `json:"labor,omitempty"`
	StartPrice         float64             `json:"startPrice,omitempty"`
	MaxPrice           float64             `json:"maxPrice,omitempty"`
	AuctionDurationMin int                 `json:"auctionDurationMin"`
}

func ParseNewOrderReq(data []byte) (*NewOrderReq, error) {
	req := &NewOrderReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if !models.ValidOrderKind(req.Kind) {
		return nil, fmt.Errorf("invalid order kind supplied: %s, should be one of: %s, %s", string(req.Kind), models.KindProduct, models.KindLabor)
	}

	if req.AuctionDurationMin <= 0 {
		return nil, fmt.Errorf("invalid auction duration supplied: %d, should be a positive number of minutes", req.AuctionDurationMin)
	}

	switch req.Kind {
	case models.KindProduct:
		if req.Product == nil {
			return nil, fmt.Errorf("product order requires a 'product' object")
		}
		if err = checkLengthLimit(req.Product.ProductType, "ProductType", 100); err != nil {
			return nil, err
		}
	case models.KindLabor:
		if req.Labor == nil {
			return nil, fmt.Errorf("labor order requires a 'labor' object")
		}
		if err = checkLengthLimit(req.Labor.LaborType, "LaborType", 100); err != nil {
			return nil, err
		}
		if err = checkLengthLimit(req.Labor.Details, "Details", 500); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// New bid request

// Amount is decoded as json.Number so non-numeric input is rejected before
// any store write.
type NewBidReq struct {
	Amount json.Number `json:"amount"`
}

func ParseNewBidReq(data []byte) (float64, error) {
	req := &NewBidReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return 0, fmt.Errorf("invalid bid amount supplied: %w", err)
	}

	amount, err := req.Amount.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid bid amount supplied: %s", req.Amount.String())
	}

	if !models.ValidBidAmount(amount) {
		return 0, fmt.Errorf("invalid bid amount supplied: %s, should be a positive number", req.Amount.String())
	}

	return amount, nil
}

// Set status request

type SetStatusReq struct {
	Status models.OrderStatus `json:"status"`
}

func ParseSetStatusReq(data []byte) (models.OrderStatus, error) {
	req := &SetStatusReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return "", err
	}

	if !models.ValidOrderStatus(req.Status) {
		return "", fmt.Errorf("invalid order status supplied: %s", string(req.Status))
	}

	return req.Status, nil
}

// Service

func checkLengthLimit(value, name string, limit int) error {
	if len(value) > limit {
		return fmt.Errorf("field %s exceeds maximum length of %d", name, limit)
	}
	return nil
}
