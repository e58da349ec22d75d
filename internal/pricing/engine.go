// Package pricing turns a configuration selection and catalog data into a
// deterministic price quote. Computation is pure: no network, no storage.
package pricing

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/catalog"
)

// ErrInvalidQuantity is returned for non-positive quantities. Callers validate
// quantity before asking for a price; this is the engine's only error.
var ErrInvalidQuantity = errors.New("pricing: quantity must be a positive integer")

const (
	// placeholderBasePrice is shown while custom dimensions are not fully
	// entered, so the customer always sees a provisional price.
	placeholderBasePrice = 0.65

	// defaultSquareInchRate applies when the custom size row carries no rate.
	defaultSquareInchRate = 0.12

	// DefaultMinCustomBasePrice floors area-based pricing for tiny dimensions.
	DefaultMinCustomBasePrice = 0.50
)

// Selection is the subset of a configuration that affects price.
type Selection struct {
	MaterialID string
	SizeID     string
	FinishID   string
	Dimensions *catalog.CustomDimensions
	Quantity   int
}

// Quote is the full-precision price breakdown. Values are rounded to currency
// precision only at presentation boundaries, never here.
type Quote struct {
	UnitPrice           float64 `json:"unit_price"`
	DiscountedUnitPrice float64 `json:"discounted_unit_price"`
	DiscountPercent     float64 `json:"discount_percent"`
	Total               float64 `json:"total"`
	UndiscountedTotal   float64 `json:"undiscounted_total"`
}

// Engine holds the pricing knobs that are not catalog data.
type Engine struct {
	MinCustomBasePrice float64
}

func NewEngine() Engine {
	return Engine{MinCustomBasePrice: DefaultMinCustomBasePrice}
}

// Price computes the quote for sel against cat. Unresolvable material, size or
// finish ids degrade to documented fallbacks with a warning; the price display
// must never crash on inconsistent catalog data.
func (e Engine) Price(sel Selection, cat catalog.Catalog) (Quote, error) {
	if sel.Quantity < 1 {
		return Quote{}, ErrInvalidQuantity
	}

	multiplier := 1.0
	if material := cat.MaterialByID(sel.MaterialID); material != nil {
		multiplier = material.PriceMultiplier
	} else if len(cat.Materials) > 0 {
		log.Warn().Str("material_id", sel.MaterialID).Msg("pricing: unknown material, falling back to first")
		multiplier = cat.Materials[0].PriceMultiplier
	} else {
		log.Warn().Str("material_id", sel.MaterialID).Msg("pricing: catalog has no materials")
	}

	base := e.basePrice(sel, cat)

	finishAdd := 0.0
	if finish := cat.FinishByID(sel.FinishID); finish != nil {
		finishAdd = finish.PriceAdd
	}

	unit := base*multiplier + finishAdd

	pct := 0.0
	if tier := cat.TierForQuantity(sel.Quantity); tier != nil {
		pct = tier.DiscountPercent
	}

	discounted := unit * (1 - pct/100)
	qty := float64(sel.Quantity)

	return Quote{
		UnitPrice:           unit,
		DiscountedUnitPrice: discounted,
		DiscountPercent:     pct,
		Total:               discounted * qty,
		UndiscountedTotal:   unit * qty,
	}, nil
}

func (e Engine) basePrice(sel Selection, cat catalog.Catalog) float64 {
	size := cat.SizeByID(sel.SizeID)
	if size == nil {
		log.Warn().Str("size_id", sel.SizeID).Msg("pricing: unknown size, using placeholder base price")
		return placeholderBasePrice
	}

	if !size.IsCustom {
		return size.BasePrice
	}

	dims := sel.Dimensions
	if dims == nil || dims.Width <= 0 || dims.Height <= 0 {
		return placeholderBasePrice
	}

	rate := size.BasePrice
	if rate <= 0 {
		rate = defaultSquareInchRate
	}

	base := dims.Width * dims.Height * rate
	if base < e.MinCustomBasePrice {
		base = e.MinCustomBasePrice
	}

	return base
}

// Cents converts a price to integer minor currency units. Payment providers
// take cents; this is the only place a total is rounded before charging.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Round2 rounds to two decimals for API responses and display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
