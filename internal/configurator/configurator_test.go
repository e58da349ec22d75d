package configurator_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/catalog"
	"github.com/inkrunner/storefront/internal/configurator"
	"github.com/inkrunner/storefront/internal/pricing"
)

type mockBlobStore struct {
	uploads []string
	deletes []string
}

func (m *mockBlobStore) Upload(ctx context.Context, path, contentType string, size int64, r io.Reader) error {
	m.uploads = append(m.uploads, path)
	return nil
}

func (m *mockBlobStore) Delete(ctx context.Context, path string) error {
	m.deletes = append(m.deletes, path)
	return nil
}

func (m *mockBlobStore) SignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	return "https://blobs.example.com/" + path, nil
}

type fixture struct {
	cfg   *configurator.Configurator
	cart  *cart.Service
	blobs *mockBlobStore
	art   *artwork.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	blobs := &mockBlobStore{}
	art := artwork.NewService(blobs, 5)
	cartSvc := cart.NewService(context.Background(), cart.NewMemoryStore())

	return &fixture{
		cfg:   configurator.New(catalog.Defaults(), pricing.NewEngine(), cartSvc, art, "Custom Stickers"),
		cart:  cartSvc,
		blobs: blobs,
		art:   art,
	}
}

func (f *fixture) uploadArtwork(t *testing.T) artwork.File {
	t.Helper()
	file, err := f.art.Upload(context.Background(), "logo.png", 2048, strings.NewReader("png bytes"))
	require.NoError(t, err)
	f.cfg.AttachArtwork(file)
	return file
}

func (f *fixture) advanceToReviewing(t *testing.T) {
	t.Helper()
	require.True(t, f.cfg.Advance())
	f.uploadArtwork(t)
	require.True(t, f.cfg.Advance())
	require.Equal(t, configurator.StepReviewing, f.cfg.Step())
}

func TestNew_DefaultConfiguration(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, configurator.StepSelectingOptions, f.cfg.Step())

	got := f.cfg.Configuration()
	assert.Equal(t, "custom", got.ShapeID) // the popular shape wins
	assert.Equal(t, "matte", got.MaterialID)
	assert.Equal(t, "small", got.SizeID)
	assert.Equal(t, "none", got.FinishID)
	assert.Equal(t, 100, got.Quantity)
	assert.Nil(t, got.Artwork)
}

func TestConfigurator_SetUnknownOption(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.cfg.SetShape("hexagon"), configurator.ErrUnknownOption)
	assert.ErrorIs(t, f.cfg.SetMaterial("velvet"), configurator.ErrUnknownOption)
	assert.ErrorIs(t, f.cfg.SetSize("gigantic"), configurator.ErrUnknownOption)
	assert.ErrorIs(t, f.cfg.SetFinish("sparkle"), configurator.ErrUnknownOption)

	// rejected values leave the configuration untouched
	got := f.cfg.Configuration()
	assert.Equal(t, "custom", got.ShapeID)
	assert.Equal(t, "matte", got.MaterialID)
}

func TestConfigurator_SetQuantity(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.cfg.SetQuantity(500))
	assert.Equal(t, 500, f.cfg.Configuration().Quantity)

	assert.ErrorIs(t, f.cfg.SetQuantity(0), configurator.ErrInvalidQuantity)
	assert.Equal(t, 500, f.cfg.Configuration().Quantity)
}

func TestConfigurator_SwitchingOffCustomSizeClearsDimensions(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.cfg.SetSize("custom"))
	f.cfg.SetDimensions(4, 3)
	require.NotNil(t, f.cfg.Configuration().Dimensions)

	require.NoError(t, f.cfg.SetSize("medium"))
	assert.Nil(t, f.cfg.Configuration().Dimensions)
}

func TestConfigurator_QuoteTracksConfiguration(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.cfg.SetMaterial("matte"))
	require.NoError(t, f.cfg.SetSize("medium"))
	require.NoError(t, f.cfg.SetQuantity(100))

	quote := f.cfg.Quote()
	assert.InDelta(t, 0.65, quote.UnitPrice, 1e-9)
	assert.Equal(t, 25.0, quote.DiscountPercent)

	require.NoError(t, f.cfg.SetQuantity(10))
	assert.Equal(t, 0.0, f.cfg.Quote().DiscountPercent)
}

func TestConfigurator_AdvanceRequiresArtwork(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.cfg.Advance())
	require.Equal(t, configurator.StepUploadingArtwork, f.cfg.Step())

	assert.False(t, f.cfg.CanAdvance())
	assert.False(t, f.cfg.Advance())
	assert.Equal(t, configurator.StepUploadingArtwork, f.cfg.Step())

	f.uploadArtwork(t)

	assert.True(t, f.cfg.CanAdvance())
	assert.True(t, f.cfg.Advance())
	assert.Equal(t, configurator.StepReviewing, f.cfg.Step())
}

func TestConfigurator_CannotAdvancePastReviewing(t *testing.T) {
	f := newFixture(t)
	f.advanceToReviewing(t)

	assert.False(t, f.cfg.CanAdvance())
	assert.False(t, f.cfg.Advance())
	assert.Equal(t, configurator.StepReviewing, f.cfg.Step())
}

func TestConfigurator_Back(t *testing.T) {
	f := newFixture(t)
	f.advanceToReviewing(t)

	// backward to any earlier step is allowed
	assert.True(t, f.cfg.Back(configurator.StepSelectingOptions))
	assert.Equal(t, configurator.StepSelectingOptions, f.cfg.Step())

	// backward never moves forward
	assert.False(t, f.cfg.Back(configurator.StepReviewing))
	assert.False(t, f.cfg.Back(configurator.StepSelectingOptions))
	assert.Equal(t, configurator.StepSelectingOptions, f.cfg.Step())
}

func TestConfigurator_BackPreservesSelections(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.cfg.SetMaterial("gloss"))
	f.advanceToReviewing(t)

	require.True(t, f.cfg.Back(configurator.StepUploadingArtwork))

	got := f.cfg.Configuration()
	assert.Equal(t, "gloss", got.MaterialID)
	assert.NotNil(t, got.Artwork)
}

func TestConfigurator_AddToCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.cfg.SetMaterial("gloss"))
	require.NoError(t, f.cfg.SetSize("medium"))
	require.NoError(t, f.cfg.SetQuantity(1000))
	f.cfg.SetInstructions("die-cut around the logo")
	f.advanceToReviewing(t)

	wantQuote := f.cfg.Quote()

	item, err := f.cfg.AddToCart(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Custom Stickers", item.ProductName)
	assert.Equal(t, "gloss", item.Material.ID)
	assert.Equal(t, "medium", item.Size.ID)
	assert.Equal(t, 1000, item.Quantity)
	assert.Equal(t, "die-cut around the logo", item.Instructions)
	assert.Equal(t, wantQuote, item.Price)
	require.NotNil(t, item.Artwork)

	// the artwork blob survives; only session tracking is dropped
	assert.Empty(t, f.blobs.deletes)
	assert.Empty(t, f.art.Files())

	// wizard resets for the next configuration
	assert.Equal(t, configurator.StepSelectingOptions, f.cfg.Step())
	assert.Equal(t, "matte", f.cfg.Configuration().MaterialID)
	assert.Nil(t, f.cfg.Configuration().Artwork)

	assert.Equal(t, 1, f.cart.ItemCount())
}

func TestConfigurator_AddToCart_FrozenPriceSurvivesReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.cfg.SetQuantity(1000))
	f.advanceToReviewing(t)

	item, err := f.cfg.AddToCart(ctx)
	require.NoError(t, err)

	// later wizard activity must not touch the stored item
	require.NoError(t, f.cfg.SetQuantity(1))
	assert.Equal(t, item.Price, f.cart.Items()[0].Price)
}

func TestConfigurator_AddToCart_NotReviewing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cfg.AddToCart(ctx)
	assert.ErrorIs(t, err, configurator.ErrNotReviewing)

	require.True(t, f.cfg.Advance())
	_, err = f.cfg.AddToCart(ctx)
	assert.ErrorIs(t, err, configurator.ErrNotReviewing)

	assert.Equal(t, 0, f.cart.ItemCount())
}

func TestConfigurator_ConcurrentMutations(t *testing.T) {
	f := newFixture(t)

	// handlers mutate the wizard from separate goroutines; state must stay
	// consistent (run with -race)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for qty := 1; qty <= 25; qty++ {
				assert.NoError(t, f.cfg.SetQuantity(qty))
				assert.NoError(t, f.cfg.SetMaterial("gloss"))
				_ = f.cfg.Quote()
				_ = f.cfg.Configuration()
				_ = f.cfg.CanAdvance()
			}
		}()
	}
	wg.Wait()

	got := f.cfg.Configuration()
	assert.Equal(t, "gloss", got.MaterialID)
	assert.GreaterOrEqual(t, got.Quantity, 1)
	assert.LessOrEqual(t, got.Quantity, 25)
}

func TestConfigurator_Abandon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.True(t, f.cfg.Advance())
	file := f.uploadArtwork(t)
	require.True(t, f.cfg.Advance())

	f.cfg.Abandon(ctx)

	// temp artwork is cleaned up, nothing reaches the cart
	assert.Equal(t, []string{file.Path}, f.blobs.deletes)
	assert.Empty(t, f.art.Files())
	assert.Equal(t, 0, f.cart.ItemCount())
	assert.Equal(t, configurator.StepSelectingOptions, f.cfg.Step())
	assert.Nil(t, f.cfg.Configuration().Artwork)
}
