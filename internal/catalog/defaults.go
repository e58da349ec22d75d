package catalog

func upTo(n int) *int {
	return &n
}

// Defaults returns the built-in catalog. It is the fallback whenever the remote
// source is unavailable, so the configurator always has something to sell.
func Defaults() Catalog {
	return Catalog{
		Shapes: []Shape{
			{ID: "custom", Name: "Custom Shape", Icon: "🚀", Popular: true},
			{ID: "kiss-cut", Name: "Kiss-Cut", Icon: "📄"},
			{ID: "circle", Name: "Circle", Icon: "⚪"},
			{ID: "oval", Name: "Oval", Icon: "🥚"},
			{ID: "square", Name: "Square", Icon: "⬜"},
			{ID: "rectangle", Name: "Rectangle", Icon: "📱"},
		},
		Materials: []Material{
			{ID: "matte", Name: "Matte", PriceMultiplier: 1.0},
			{ID: "gloss", Name: "Gloss", PriceMultiplier: 1.1},
			{ID: "holographic", Name: "Holographic", PriceMultiplier: 1.5},
			{ID: "clear", Name: "Clear", PriceMultiplier: 1.3},
		},
		Sizes: []Size{
			{ID: "small", Name: "Small", Label: `2"`, BasePrice: 0.45},
			{ID: "medium", Name: "Medium", Label: `3"`, BasePrice: 0.65},
			{ID: "large", Name: "Large", Label: `4"`, BasePrice: 0.95},
			{ID: "xlarge", Name: "X-Large", Label: `5"`, BasePrice: 1.35},
			// BasePrice is per square inch for the custom entry.
			{ID: "custom", Name: "Custom size", BasePrice: 0.12, IsCustom: true},
		},
		Finishes: []Finish{
			{ID: "none", Name: "Standard", PriceAdd: 0},
		},
		QuantityTiers: []QuantityTier{
			{MinQuantity: 1, MaxQuantity: upTo(49), DiscountPercent: 0},
			{MinQuantity: 50, MaxQuantity: upTo(99), DiscountPercent: 15},
			{MinQuantity: 100, MaxQuantity: upTo(199), DiscountPercent: 25},
			{MinQuantity: 200, MaxQuantity: upTo(299), DiscountPercent: 30},
			{MinQuantity: 300, MaxQuantity: upTo(499), DiscountPercent: 35},
			{MinQuantity: 500, MaxQuantity: upTo(999), DiscountPercent: 40},
			{MinQuantity: 1000, MaxQuantity: upTo(2499), DiscountPercent: 45},
			{MinQuantity: 2500, MaxQuantity: nil, DiscountPercent: 50},
		},
	}
}
