package pricing

import (
	"testing"

	"fabmarket/internal/models"
)

func TestDefaultBaseDepth(t *testing.T) {
	// 2x1 m sheet at base thickness: area times the base rate.
	spec := models.ProductSpec{Width: 2, Height: 1, DepthMM: 3, Quantity: 1}
	if got := Default(spec); got != 2_000_000 {
		t.Errorf("Expected price 2000000, got %v", got)
	}
}

func TestDefaultExtraDepth(t *testing.T) {
	// Each millimeter past 3 raises the unit price by 30%.
	spec := models.ProductSpec{Width: 1, Height: 1, DepthMM: 5, Quantity: 1}
	if got := Default(spec); got != 1_690_000 {
		t.Errorf("Expected price 1690000, got %v", got)
	}
}

func TestDefaultQuantity(t *testing.T) {
	spec := models.ProductSpec{Width: 1, Height: 1, DepthMM: 3, Quantity: 3}
	if got := Default(spec); got != 3_000_000 {
		t.Errorf("Expected price 3000000, got %v", got)
	}
}

func TestDefaultZeroQuantityTreatedAsOne(t *testing.T) {
	spec := models.ProductSpec{Width: 1, Height: 1, DepthMM: 3}
	if got := Default(spec); got != 1_000_000 {
		t.Errorf("Expected price 1000000, got %v", got)
	}
}

func TestDefaultThinnerThanBase(t *testing.T) {
	// Depth below base never discounts.
	spec := models.ProductSpec{Width: 1, Height: 1, DepthMM: 1, Quantity: 1}
	if got := Default(spec); got != 1_000_000 {
		t.Errorf("Expected price 1000000, got %v", got)
	}
}
