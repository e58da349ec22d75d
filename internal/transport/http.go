package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/catalog"
	"github.com/inkrunner/storefront/internal/checkout"
	"github.com/inkrunner/storefront/internal/configurator"
	"github.com/inkrunner/storefront/internal/handler"
	"github.com/inkrunner/storefront/internal/pricing"
)

// Deps carries the wired services the router needs.
type Deps struct {
	Catalog      catalog.Catalog
	Engine       pricing.Engine
	Cart         *cart.Service
	Artwork      *artwork.Service
	Configurator *configurator.Configurator
	Checkout     *checkout.Service
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	handler.NewPricingHandler(d.Catalog, d.Engine).RegisterRoutes(r)
	handler.NewCartHandler(d.Cart).RegisterRoutes(r)
	handler.NewArtworkHandler(d.Artwork, d.Configurator).RegisterRoutes(r)
	handler.NewConfiguratorHandler(d.Configurator).RegisterRoutes(r)
	handler.NewCheckoutHandler(d.Checkout, d.Cart).RegisterRoutes(r)

	return r
}
