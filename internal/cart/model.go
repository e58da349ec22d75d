package cart

import (
	"fmt"
	"time"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/catalog"
	"github.com/inkrunner/storefront/internal/pricing"
)

// Item is one finalized configuration in the cart. It is immutable once
// created: the catalog entries and the price quote are copies frozen at add
// time and never recomputed, even if catalog pricing changes later.
type Item struct {
	ID           string                    `json:"id"`
	ProductName  string                    `json:"product_name"`
	Shape        catalog.Shape             `json:"shape"`
	Material     catalog.Material          `json:"material"`
	Size         catalog.Size              `json:"size"`
	Finish       catalog.Finish            `json:"finish"`
	Dimensions   *catalog.CustomDimensions `json:"dimensions,omitempty"`
	Quantity     int                       `json:"quantity"`
	Instructions string                    `json:"instructions,omitempty"`
	Artwork      *artwork.File             `json:"artwork,omitempty"`
	Price        pricing.Quote             `json:"price"`
	AddedAt      time.Time                 `json:"added_at"`
}

// SizeDisplay renders the physical size for descriptions and receipts.
func (i Item) SizeDisplay() string {
	if i.Dimensions != nil {
		return fmt.Sprintf(`%g" × %g"`, i.Dimensions.Width, i.Dimensions.Height)
	}
	return i.Size.Name
}
