package catalog

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
)

// Repository supplies catalog rows from the remote source. Implementations
// return only active rows in display order.
type Repository interface {
	Materials(ctx context.Context) ([]Material, error)
	Sizes(ctx context.Context) ([]Size, error)
	Finishes(ctx context.Context) ([]Finish, error)
	QuantityTiers(ctx context.Context) ([]QuantityTier, error)
}

// Provider assembles the catalog from the remote source, falling back to the
// built-in defaults per collection. A nil repository means defaults only.
type Provider struct {
	repo Repository
}

func NewProvider(repo Repository) *Provider {
	return &Provider{repo: repo}
}

// Load never fails: remote errors and empty collections degrade to defaults so
// the configurator stays usable. Quantity tiers are re-sorted before use;
// unsorted or overlapping input is logged as a data-integrity warning.
func (p *Provider) Load(ctx context.Context) Catalog {
	cat := Defaults()

	if p == nil || p.repo == nil {
		return cat
	}

	if materials, err := p.repo.Materials(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: failed to load materials, using defaults")
	} else if len(materials) > 0 {
		cat.Materials = materials
	}

	if sizes, err := p.repo.Sizes(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: failed to load sizes, using defaults")
	} else if len(sizes) > 0 {
		cat.Sizes = sizes
	}

	if finishes, err := p.repo.Finishes(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: failed to load finishes, using defaults")
	} else if len(finishes) > 0 {
		cat.Finishes = finishes
	}

	if tiers, err := p.repo.QuantityTiers(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: failed to load quantity tiers, using defaults")
	} else if len(tiers) > 0 {
		cat.QuantityTiers = tiers
	}

	normalizeTiers(&cat)

	return cat
}

func normalizeTiers(cat *Catalog) {
	tiers := cat.QuantityTiers

	sorted := sort.SliceIsSorted(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity < tiers[j].MinQuantity
	})
	if !sorted {
		log.Warn().Msg("catalog: quantity tiers arrived unsorted, re-sorting")
		sort.SliceStable(tiers, func(i, j int) bool {
			return tiers[i].MinQuantity < tiers[j].MinQuantity
		})
	}

	for i := 1; i < len(tiers); i++ {
		prev := tiers[i-1]
		if prev.MaxQuantity == nil || tiers[i].MinQuantity <= *prev.MaxQuantity {
			log.Warn().
				Int("min_quantity", tiers[i].MinQuantity).
				Msg("catalog: overlapping quantity tiers, first match wins")
		}
	}
}
