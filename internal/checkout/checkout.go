// Package checkout serializes the cart for the hosted payment flow. Tax and
// fulfillment are handled downstream by the payment provider.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/pricing"
)

// ErrEmptyCart rejects checkout with nothing to pay for.
var ErrEmptyCart = errors.New("checkout: no items in cart")

// SessionClient abstracts the payment provider's checkout-session API.
type SessionClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeClient struct {
	api *client.API
}

func (c stripeClient) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c stripeClient) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.Get(id, params)
}

// NewStripeClient builds an explicitly constructed Stripe client. The caller
// owns its lifecycle; there is no package-level handle.
func NewStripeClient(secretKey string) SessionClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return stripeClient{api: api}
}

// Session is the created payment session the customer is redirected to.
type Session struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// SessionStatus is the post-payment session lookup result.
type SessionStatus struct {
	ID            string                  `json:"id"`
	Status        string                  `json:"status"`
	PaymentStatus string                  `json:"payment_status"`
	CustomerEmail string                  `json:"customer_email,omitempty"`
	AmountTotal   int64                   `json:"amount_total"`
	Shipping      *stripe.ShippingDetails `json:"shipping,omitempty"`
}

// Service creates and retrieves payment sessions.
type Service struct {
	client  SessionClient
	baseURL string
}

func NewService(client SessionClient, baseURL string) *Service {
	return &Service{client: client, baseURL: baseURL}
}

// CreateSession opens a hosted payment session for the cart. Provider failures
// are wrapped and surfaced as retry-able errors; they never crash the
// storefront.
func (s *Service) CreateSession(ctx context.Context, items []cart.Item, customerEmail string) (Session, error) {
	if len(items) == 0 {
		return Session{}, ErrEmptyCart
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for i := range items {
		lineItems = append(lineItems, lineItem(items[i]))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US", "CA", "MX"}),
		},
		ShippingOptions: shippingOptions(),
		SuccessURL:      stripe.String(s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:       stripe.String(s.baseURL + "/cart"),
	}
	params.Context = ctx
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	sess, err := s.client.New(params)
	if err != nil {
		log.Error().Err(err).Int("items", len(items)).Msg("checkout: failed to create payment session")
		return Session{}, fmt.Errorf("checkout: failed to create payment session: %w", err)
	}

	log.Info().Str("session_id", sess.ID).Int("items", len(items)).Msg("checkout: payment session created")

	return Session{ID: sess.ID, URL: sess.URL}, nil
}

// GetSession retrieves a payment session by id.
func (s *Service) GetSession(ctx context.Context, id string) (SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	sess, err := s.client.Get(id, params)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("checkout: failed to retrieve session %s: %w", id, err)
	}

	email := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email = sess.CustomerDetails.Email
	}

	return SessionStatus{
		ID:            sess.ID,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: email,
		AmountTotal:   sess.AmountTotal,
		Shipping:      sess.ShippingDetails,
	}, nil
}

// lineItem maps a cart item to one line entry. Each configured item is unique,
// so the line quantity is 1 and the unit amount is the frozen item total. This
// is the boundary where the full-precision total becomes integer cents.
func lineItem(item cart.Item) *stripe.CheckoutSessionLineItemParams {
	name := item.ProductName
	if name == "" {
		name = "Custom Stickers"
	}

	description := fmt.Sprintf("%s • %s • %s • Qty: %d",
		item.Shape.Name, item.Material.Name, item.SizeDisplay(), item.Quantity)

	artworkPath := ""
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
	}
	if item.Artwork != nil {
		artworkPath = item.Artwork.Path
		if item.Artwork.URL != "" {
			product.Images = stripe.StringSlice([]string{item.Artwork.URL})
		}
	}
	product.Metadata = map[string]string{
		"shape":        item.Shape.Name,
		"material":     item.Material.Name,
		"size":         item.SizeDisplay(),
		"quantity":     strconv.Itoa(item.Quantity),
		"instructions": item.Instructions,
		"design_path":  artworkPath,
	}

	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(string(stripe.CurrencyUSD)),
			ProductData: product,
			UnitAmount:  stripe.Int64(pricing.Cents(item.Price.Total)),
		},
		Quantity: stripe.Int64(1),
	}
}

func shippingOptions() []*stripe.CheckoutSessionShippingOptionParams {
	return []*stripe.CheckoutSessionShippingOptionParams{
		{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripe.String("fixed_amount"),
				DisplayName: stripe.String("Free Shipping"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(0),
					Currency: stripe.String(string(stripe.CurrencyUSD)),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(5),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(7),
					},
				},
			},
		},
		{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripe.String("fixed_amount"),
				DisplayName: stripe.String("Express Shipping"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(1500),
					Currency: stripe.String(string(stripe.CurrencyUSD)),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(2),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(3),
					},
				},
			},
		},
	}
}
