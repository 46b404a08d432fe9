package pricing

import (
	"math"

	"fabmarket/internal/models"
)

// Func computes the reference price of a product order from its spec.
// Injected into the service so product types can carry their own formulas.
type Func func(spec models.ProductSpec) float64

// Base rate is per square meter of sheet at 3 mm thickness; every extra
// millimeter of depth raises the unit price by 30%.
const (
	baseRate    = 1_000_000
	baseDepthMM = 3
)

func Default(spec models.ProductSpec) float64 {
	area := spec.Width * spec.Height
	extra := math.Max(0, spec.DepthMM-baseDepthMM)
	unit := baseRate * math.Pow(1.3, extra)

	quantity := spec.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return math.Round(unit * area * float64(quantity))
}
