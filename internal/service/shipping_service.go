package service

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/sse"
	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// Aggregation defaults. Weights are grams, dimensions centimetres, money dong.
const (
	DefaultUnitWeight       = 300
	DefaultLength           = 20
	DefaultWidth            = 15
	DefaultHeight           = 10
	HeavyUnitHeight         = 3
	HeavyWeightThreshold    = 20000
	MaxInsuranceValue       = 5000000
	defaultManifestItemName = "Item"
)

// Carrier is the part of the GHN client the shipping flow uses.
type Carrier interface {
	ValidateConfig() error
	CalculateFee(ctx context.Context, req ghn.FeeRequest) (*ghn.ShippingQuote, error)
	GetAvailableServices(ctx context.Context, fromDistrictID, toDistrictID int) ([]ghn.AvailableService, error)
	GetOrderDetail(ctx context.Context, orderCode string) (*ghn.OrderDetail, error)
	CreateOrder(ctx context.Context, req ghn.CreateOrderRequest) (*ghn.CreatedOrder, error)
}

// QuoteRecorder persists computed quotes.
type QuoteRecorder interface {
	Create(ctx context.Context, record *models.QuoteRecord) error
}

// ShipmentEstimate is the aggregated parcel submitted for a fee quote.
type ShipmentEstimate struct {
	ServiceTypeID  int           `json:"serviceTypeId"`
	Weight         int           `json:"weight"`
	Length         int           `json:"length"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	InsuranceValue int           `json:"insuranceValue"`
	Items          []ghn.FeeItem `json:"items,omitempty"`
}

// Heavy reports whether the estimate uses the heavy service tier.
func (e *ShipmentEstimate) Heavy() bool {
	return e.ServiceTypeID == ghn.ServiceTypeHeavy
}

// QuoteInput is one cart quote request. Catalog is the caller's
// credential-bound product lookup and may be nil.
type QuoteInput struct {
	Lines       []models.CartLine
	Destination models.Destination
	Catalog     ProductLookup
	SessionID   string
}

// QuoteResult is a carrier quote together with the parcel it was computed for.
type QuoteResult struct {
	Quote          *ghn.ShippingQuote `json:"quote"`
	Estimate       *ShipmentEstimate  `json:"estimate"`
	FormattedTotal string             `json:"formattedTotal"`
}

// ShippingService turns carts into carrier fee quotes.
type ShippingService struct {
	carrier  Carrier
	resolver *DimensionResolver
	recorder QuoteRecorder
	notifier sse.QuoteNotifier
	order    OrderDefaults
}

// NewShippingService constructs a ShippingService.
func NewShippingService(carrier Carrier, resolver *DimensionResolver) *ShippingService {
	if resolver == nil {
		resolver = NewDimensionResolver(nil)
	}
	return &ShippingService{
		carrier:  carrier,
		resolver: resolver,
		order:    OrderDefaults{RequiredNote: ghn.RequiredNoteViewNoTrial},
	}
}

// SetQuoteRecorder enables the quote log.
func (s *ShippingService) SetQuoteRecorder(recorder QuoteRecorder) {
	s.recorder = recorder
}

// SetNotifier publishes recorded quotes to admin dashboards.
func (s *ShippingService) SetNotifier(notifier sse.QuoteNotifier) {
	s.notifier = notifier
}

// ValidateConfig reports whether the carrier is usable.
func (s *ShippingService) ValidateConfig() error {
	return s.carrier.ValidateConfig()
}

// BuildEstimate resolves every line, one at a time in cart order, and
// aggregates the result.
func (s *ShippingService) BuildEstimate(ctx context.Context, lines []models.CartLine, lookup ProductLookup) (*ShipmentEstimate, error) {
	if len(lines) == 0 {
		return nil, utils.ErrEmptyCart
	}

	resolved := make([]ResolvedDimensions, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resolved = append(resolved, s.resolver.Resolve(ctx, lookup, line))
	}

	estimate := Aggregate(lines, resolved)
	return &estimate, nil
}

// QuoteCart computes the shipping fee of a cart to a destination.
func (s *ShippingService) QuoteCart(ctx context.Context, in QuoteInput) (*QuoteResult, error) {
	if len(in.Lines) == 0 {
		return nil, utils.ErrEmptyCart
	}
	if !in.Destination.Complete() {
		return nil, utils.ErrIncompleteDestination
	}
	if err := s.carrier.ValidateConfig(); err != nil {
		return nil, err
	}

	estimate, err := s.BuildEstimate(ctx, in.Lines, in.Catalog)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("to_district_id", in.Destination.DistrictID).
		Str("to_ward_code", in.Destination.WardCode).
		Int("service_type_id", estimate.ServiceTypeID).
		Int("weight", estimate.Weight).
		Int("length", estimate.Length).
		Int("width", estimate.Width).
		Int("height", estimate.Height).
		Int("insurance_value", estimate.InsuranceValue).
		Int("items_count", len(estimate.Items)).
		Msg("Cart shipment aggregated")

	quote, err := s.carrier.CalculateFee(ctx, ghn.FeeRequest{
		ServiceTypeID:  estimate.ServiceTypeID,
		ToDistrictID:   in.Destination.DistrictID,
		ToWardCode:     in.Destination.WardCode,
		Weight:         estimate.Weight,
		Length:         estimate.Length,
		Width:          estimate.Width,
		Height:         estimate.Height,
		InsuranceValue: estimate.InsuranceValue,
		Items:          estimate.Items,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, in, estimate, quote)

	return &QuoteResult{
		Quote:          quote,
		Estimate:       estimate,
		FormattedTotal: utils.FormatPrice(float64(quote.Total)),
	}, nil
}

// AvailableServices lists carrier services between two districts.
func (s *ShippingService) AvailableServices(ctx context.Context, fromDistrictID, toDistrictID int) ([]ghn.AvailableService, error) {
	return s.carrier.GetAvailableServices(ctx, fromDistrictID, toDistrictID)
}

// OrderDetail fetches a carrier shipping order.
func (s *ShippingService) OrderDetail(ctx context.Context, orderCode string) (*ghn.OrderDetail, error) {
	return s.carrier.GetOrderDetail(ctx, orderCode)
}

// record writes the quote log. Failures never affect the caller.
func (s *ShippingService) record(ctx context.Context, in QuoteInput, estimate *ShipmentEstimate, quote *ghn.ShippingQuote) {
	if s.recorder == nil {
		return
	}
	rec := &models.QuoteRecord{
		ToDistrictID:   in.Destination.DistrictID,
		ToWardCode:     in.Destination.WardCode,
		ServiceTypeID:  estimate.ServiceTypeID,
		Weight:         estimate.Weight,
		Length:         estimate.Length,
		Width:          estimate.Width,
		Height:         estimate.Height,
		InsuranceValue: estimate.InsuranceValue,
		ItemCount:      len(in.Lines),
		Total:          quote.Total,
		ServiceFee:     quote.ServiceFee,
		InsuranceFee:   quote.InsuranceFee,
	}
	if in.SessionID != "" {
		id := in.SessionID
		rec.SessionID = &id
	}
	if err := s.recorder.Create(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("Failed to record shipping quote")
		return
	}
	if s.notifier != nil {
		s.notifier.NotifyQuoteCreated(rec)
	}
}

// Aggregate combines resolved lines into one parcel: summed weight, the
// largest length/width/height, capped insurance and the service tier.
// resolved[i] must belong to lines[i].
func Aggregate(lines []models.CartLine, resolved []ResolvedDimensions) ShipmentEstimate {
	var totalWeight, maxLength, maxWidth, maxHeight float64
	for _, d := range resolved {
		if d.Weight != nil {
			totalWeight += *d.Weight
		}
		if d.Length != nil {
			maxLength = math.Max(maxLength, *d.Length)
		}
		if d.Width != nil {
			maxWidth = math.Max(maxWidth, *d.Width)
		}
		if d.Height != nil {
			maxHeight = math.Max(maxHeight, *d.Height)
		}
	}

	if math.IsNaN(totalWeight) || math.IsInf(totalWeight, 0) || totalWeight <= 0 {
		totalWeight = 0
		for _, line := range lines {
			totalWeight += float64(DefaultUnitWeight * line.Qty())
		}
	}
	if !(maxLength > 0) {
		maxLength = DefaultLength
	}
	if !(maxWidth > 0) {
		maxWidth = DefaultWidth
	}
	if !(maxHeight > 0) {
		maxHeight = DefaultHeight
	}

	var totalValue float64
	for _, line := range lines {
		totalValue += line.LineTotal()
	}
	insurance := math.Max(0, math.Min(totalValue, MaxInsuranceValue))

	estimate := ShipmentEstimate{
		ServiceTypeID:  ghn.ServiceTypeStandard,
		Weight:         roundInt(totalWeight),
		Length:         roundInt(maxLength),
		Width:          roundInt(maxWidth),
		Height:         roundInt(maxHeight),
		InsuranceValue: roundInt(insurance),
	}

	if totalWeight > HeavyWeightThreshold {
		estimate.ServiceTypeID = ghn.ServiceTypeHeavy
		estimate.Items = manifest(lines, resolved)
	}
	return estimate
}

// manifest builds the per-line item list of the heavy tier. Each missing
// attribute is defaulted on its own; a missing height is 3cm per unit.
func manifest(lines []models.CartLine, resolved []ResolvedDimensions) []ghn.FeeItem {
	items := make([]ghn.FeeItem, 0, len(resolved))
	for i, d := range resolved {
		qty := d.Qty
		if qty < 1 {
			qty = 1
		}

		name := defaultManifestItemName
		if i < len(lines) && lines[i].Title != "" {
			name = lines[i].Title
		}

		items = append(items, ghn.FeeItem{
			Name:     name,
			Quantity: qty,
			Weight:   roundInt(valueOr(d.Weight, float64(DefaultUnitWeight*qty))),
			Length:   roundInt(valueOr(d.Length, DefaultLength)),
			Width:    roundInt(valueOr(d.Width, DefaultWidth)),
			Height:   roundInt(valueOr(d.Height, float64(HeavyUnitHeight*qty))),
		})
	}
	return items
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func roundInt(v float64) int {
	return int(utils.RoundHalfUp(v))
}
