// Package configurator tracks the in-progress product selection through the
// linear wizard: options, artwork upload, review, then add to cart.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/catalog"
	"github.com/inkrunner/storefront/internal/pricing"
)

// Step is a wizard state.
type Step string

const (
	StepSelectingOptions Step = "selecting_options"
	StepUploadingArtwork Step = "uploading_artwork"
	StepReviewing        Step = "reviewing"
)

func (s Step) String() string {
	return string(s)
}

// stepOrder defines forward progression. Backward navigation may target any
// earlier step; skipping forward is not allowed.
var stepOrder = []Step{StepSelectingOptions, StepUploadingArtwork, StepReviewing}

var allowedTransitions = map[Step]map[Step]bool{
	StepSelectingOptions: {
		StepUploadingArtwork: true,
	},
	StepUploadingArtwork: {
		StepSelectingOptions: true,
		StepReviewing:        true,
	},
	StepReviewing: {
		StepSelectingOptions: true,
		StepUploadingArtwork: true,
	},
}

var (
	ErrUnknownOption   = errors.New("configurator: unknown option id")
	ErrInvalidQuantity = errors.New("configurator: quantity must be at least 1")
	ErrNotReviewing    = errors.New("configurator: must be reviewing to add to cart")
)

const defaultQuantity = 100

// Configuration is the mutable in-progress selection.
type Configuration struct {
	ShapeID      string                    `json:"shape_id"`
	MaterialID   string                    `json:"material_id"`
	SizeID       string                    `json:"size_id"`
	FinishID     string                    `json:"finish_id"`
	Dimensions   *catalog.CustomDimensions `json:"dimensions,omitempty"`
	Quantity     int                       `json:"quantity"`
	Instructions string                    `json:"instructions,omitempty"`
	Artwork      *artwork.File             `json:"artwork,omitempty"`
}

// Configurator is the wizard state machine. Single-session: one instance per
// running storefront. The mutex keeps the step and configuration consistent
// when request handlers mutate them from separate goroutines.
type Configurator struct {
	cat         catalog.Catalog
	engine      pricing.Engine
	cart        *cart.Service
	artwork     *artwork.Service
	productName string

	mu   sync.Mutex
	step Step
	cfg  Configuration
}

func New(cat catalog.Catalog, engine pricing.Engine, cartSvc *cart.Service, artworkSvc *artwork.Service, productName string) *Configurator {
	return &Configurator{
		cat:         cat,
		engine:      engine,
		cart:        cartSvc,
		artwork:     artworkSvc,
		productName: productName,
		step:        StepSelectingOptions,
		cfg:         defaultConfiguration(cat),
	}
}

// defaultConfiguration picks the popular entry of each collection, or the first
// one. Every selection has a default, so the options step never blocks.
func defaultConfiguration(cat catalog.Catalog) Configuration {
	cfg := Configuration{Quantity: defaultQuantity}

	for i := range cat.Shapes {
		if cfg.ShapeID == "" || cat.Shapes[i].Popular {
			cfg.ShapeID = cat.Shapes[i].ID
		}
		if cat.Shapes[i].Popular {
			break
		}
	}
	if len(cat.Materials) > 0 {
		cfg.MaterialID = cat.Materials[0].ID
	}
	for i := range cat.Sizes {
		if !cat.Sizes[i].IsCustom {
			cfg.SizeID = cat.Sizes[i].ID
			break
		}
	}
	if cfg.SizeID == "" && len(cat.Sizes) > 0 {
		cfg.SizeID = cat.Sizes[0].ID
	}
	if len(cat.Finishes) > 0 {
		cfg.FinishID = cat.Finishes[0].ID
	}

	return cfg
}

func (c *Configurator) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Configurator) Configuration() Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *Configurator) SetShape(id string) error {
	if c.cat.ShapeByID(id) == nil {
		return fmt.Errorf("%w: shape %q", ErrUnknownOption, id)
	}
	c.mu.Lock()
	c.cfg.ShapeID = id
	c.mu.Unlock()
	return nil
}

func (c *Configurator) SetMaterial(id string) error {
	if c.cat.MaterialByID(id) == nil {
		return fmt.Errorf("%w: material %q", ErrUnknownOption, id)
	}
	c.mu.Lock()
	c.cfg.MaterialID = id
	c.mu.Unlock()
	return nil
}

func (c *Configurator) SetSize(id string) error {
	size := c.cat.SizeByID(id)
	if size == nil {
		return fmt.Errorf("%w: size %q", ErrUnknownOption, id)
	}
	c.mu.Lock()
	c.cfg.SizeID = id
	if !size.IsCustom {
		c.cfg.Dimensions = nil
	}
	c.mu.Unlock()
	return nil
}

func (c *Configurator) SetFinish(id string) error {
	if c.cat.FinishByID(id) == nil {
		return fmt.Errorf("%w: finish %q", ErrUnknownOption, id)
	}
	c.mu.Lock()
	c.cfg.FinishID = id
	c.mu.Unlock()
	return nil
}

// SetDimensions accepts partial input: the quote shows a provisional price
// until both dimensions are positive.
func (c *Configurator) SetDimensions(width, height float64) {
	c.mu.Lock()
	c.cfg.Dimensions = &catalog.CustomDimensions{Width: width, Height: height}
	c.mu.Unlock()
}

func (c *Configurator) SetQuantity(qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	c.cfg.Quantity = qty
	c.mu.Unlock()
	return nil
}

func (c *Configurator) SetInstructions(text string) {
	c.mu.Lock()
	c.cfg.Instructions = text
	c.mu.Unlock()
}

// AttachArtwork records a completed upload. Only a finished upload may be
// attached; in-progress uploads have no File yet.
func (c *Configurator) AttachArtwork(f artwork.File) {
	c.mu.Lock()
	c.cfg.Artwork = &f
	c.mu.Unlock()
}

func (c *Configurator) DetachArtwork() {
	c.mu.Lock()
	c.cfg.Artwork = nil
	c.mu.Unlock()
}

// Quote derives the current price. It is recomputed on demand from the live
// configuration; there is no cache to fall out of date. Mutators keep the
// quantity valid, so a pricing failure here is a programming error and yields
// a zero quote rather than a crash.
func (c *Configurator) Quote() pricing.Quote {
	c.mu.Lock()
	sel := c.selection()
	c.mu.Unlock()

	quote, err := c.engine.Price(sel, c.cat)
	if err != nil {
		log.Warn().Err(err).Msg("configurator: failed to derive quote")
		return pricing.Quote{}
	}
	return quote
}

func (c *Configurator) selection() pricing.Selection {
	return pricing.Selection{
		MaterialID: c.cfg.MaterialID,
		SizeID:     c.cfg.SizeID,
		FinishID:   c.cfg.FinishID,
		Dimensions: c.cfg.Dimensions,
		Quantity:   c.cfg.Quantity,
	}
}

// CanAdvance reports whether the wizard may move forward from the current
// step. Leaving the artwork step requires a completed upload.
func (c *Configurator) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvance()
}

// canAdvance is called with the lock held.
func (c *Configurator) canAdvance() bool {
	switch c.step {
	case StepSelectingOptions:
		return true
	case StepUploadingArtwork:
		return c.cfg.Artwork != nil
	default:
		return false
	}
}

// Advance moves one step forward. It is a boolean signal, not an error: the
// caller shows the guard hint and stays put on false.
func (c *Configurator) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canAdvance() {
		return false
	}
	next := c.nextStep()
	if next == "" || !allowedTransitions[c.step][next] {
		return false
	}
	c.step = next
	return true
}

func (c *Configurator) nextStep() Step {
	for i, s := range stepOrder {
		if s == c.step && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return ""
}

// Back navigates to a previously completed step.
func (c *Configurator) Back(to Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stepIndex(to) < 0 || stepIndex(to) >= stepIndex(c.step) {
		return false
	}
	if !allowedTransitions[c.step][to] {
		return false
	}
	c.step = to
	return true
}

func stepIndex(s Step) int {
	for i, v := range stepOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// AddToCart finalizes the configuration: the current quote is frozen into a
// cart item, the item is pushed to the cart, and the wizard resets to a fresh
// default configuration.
func (c *Configurator) AddToCart(ctx context.Context) (cart.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepReviewing {
		return cart.Item{}, ErrNotReviewing
	}

	quote, err := c.engine.Price(c.selection(), c.cat)
	if err != nil {
		return cart.Item{}, fmt.Errorf("configurator: failed to price configuration: %w", err)
	}

	item := cart.Item{
		ProductName:  c.productName,
		Quantity:     c.cfg.Quantity,
		Instructions: c.cfg.Instructions,
		Dimensions:   c.cfg.Dimensions,
		Artwork:      c.cfg.Artwork,
		Price:        quote,
	}
	if shape := c.cat.ShapeByID(c.cfg.ShapeID); shape != nil {
		item.Shape = *shape
	}
	if material := c.cat.MaterialByID(c.cfg.MaterialID); material != nil {
		item.Material = *material
	}
	if size := c.cat.SizeByID(c.cfg.SizeID); size != nil {
		item.Size = *size
	}
	if finish := c.cat.FinishByID(c.cfg.FinishID); finish != nil {
		item.Finish = *finish
	}

	added, err := c.cart.Add(ctx, item)
	if err != nil {
		return cart.Item{}, fmt.Errorf("configurator: failed to add item to cart: %w", err)
	}

	// The artwork now belongs to the cart item; keep the blob, drop the
	// session tracking.
	if c.cfg.Artwork != nil {
		c.artwork.Release(c.cfg.Artwork.Path)
	}

	c.reset()

	log.Info().Str("item_id", added.ID).Msg("configurator: configuration finalized")

	return added, nil
}

// Abandon discards the in-progress selection without touching the cart.
// Temp artwork cleanup is advisory: a failed deletion is logged by the artwork
// service and the wizard still resets.
func (c *Configurator) Abandon(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Artwork != nil {
		c.artwork.Remove(ctx, c.cfg.Artwork.Path)
	}
	c.reset()
}

// reset is called with the lock held.
func (c *Configurator) reset() {
	c.cfg = defaultConfiguration(c.cat)
	c.step = StepSelectingOptions
}
