package catalog

// Shape is a cut shape a customer can pick. Shape carries no pricing effect.
type Shape struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Popular bool   `json:"popular"`
}

// Material multiplies the base unit price.
type Material struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	PriceMultiplier float64 `json:"price_multiplier"`
}

// Size is either a fixed-price entry or the custom-dimension entry. For the
// custom entry BasePrice is the price per square inch, not a unit price.
type Size struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Label     string  `json:"label,omitempty"`
	BasePrice float64 `json:"base_price"`
	IsCustom  bool    `json:"is_custom"`
}

// Finish is a flat per-unit surcharge applied after the material multiplier.
type Finish struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PriceAdd float64 `json:"price_add"`
}

// QuantityTier maps a quantity range to a discount percentage. MaxQuantity nil
// means unbounded above. Tiers are kept sorted ascending by MinQuantity.
type QuantityTier struct {
	MinQuantity     int     `json:"min_quantity"`
	MaxQuantity     *int    `json:"max_quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// CustomDimensions are user-supplied, in inches.
type CustomDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Catalog is the full set of selectable options at a point in time. Entries are
// immutable after load.
type Catalog struct {
	Shapes        []Shape        `json:"shapes"`
	Materials     []Material     `json:"materials"`
	Sizes         []Size         `json:"sizes"`
	Finishes      []Finish       `json:"finishes"`
	QuantityTiers []QuantityTier `json:"quantity_tiers"`
}

func (c Catalog) ShapeByID(id string) *Shape {
	for i := range c.Shapes {
		if c.Shapes[i].ID == id {
			return &c.Shapes[i]
		}
	}
	return nil
}

func (c Catalog) MaterialByID(id string) *Material {
	for i := range c.Materials {
		if c.Materials[i].ID == id {
			return &c.Materials[i]
		}
	}
	return nil
}

func (c Catalog) SizeByID(id string) *Size {
	for i := range c.Sizes {
		if c.Sizes[i].ID == id {
			return &c.Sizes[i]
		}
	}
	return nil
}

func (c Catalog) FinishByID(id string) *Finish {
	for i := range c.Finishes {
		if c.Finishes[i].ID == id {
			return &c.Finishes[i]
		}
	}
	return nil
}

// TierForQuantity returns the tier whose inclusive range contains qty, or nil
// when qty falls below the smallest tier.
func (c Catalog) TierForQuantity(qty int) *QuantityTier {
	for i := range c.QuantityTiers {
		t := &c.QuantityTiers[i]
		if qty >= t.MinQuantity && (t.MaxQuantity == nil || qty <= *t.MaxQuantity) {
			return t
		}
	}
	return nil
}
