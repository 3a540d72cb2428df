package service

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// Payment methods sent by the storefront.
const (
	PaymentMethodCOD  = "cod"
	PaymentMethodMoMo = "momo"
)

const (
	MinOrderWeight       = 300
	defaultRecipientName = "Customer"
)

// OrderDefaults are the shop-wide fields of every carrier order.
type OrderDefaults struct {
	Sender       ghn.Sender
	Note         string
	RequiredNote string
}

// Recipient is the person a parcel is delivered to.
type Recipient struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
}

// Address joins the address lines.
func (r Recipient) Address() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{r.AddressLine1, r.AddressLine2} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrderInput is a placed storefront order to hand over to the carrier.
// CodAmount overrides the collected amount for payment methods other than
// cod and momo.
type OrderInput struct {
	Lines         []models.CartLine
	Recipient     Recipient
	Destination   models.Destination
	PaymentMethod string
	CodAmount     *float64
	ServiceID     int
	Catalog       ProductLookup
}

// OrderResult is the created carrier order and the request it was built from.
type OrderResult struct {
	Order             *ghn.CreatedOrder       `json:"order"`
	Request           *ghn.CreateOrderRequest `json:"request"`
	FormattedTotalFee string                  `json:"formattedTotalFee"`
}

// SetOrderDefaults sets the sender and notes put on created orders. An
// empty RequiredNote keeps the current one.
func (s *ShippingService) SetOrderDefaults(d OrderDefaults) {
	if d.RequiredNote == "" {
		d.RequiredNote = s.order.RequiredNote
	}
	s.order = d
}

// PaymentTypeFor decides who pays delivery. Free-shipping products and
// prepaid MoMo orders are paid by the shop, cod by the buyer; any other
// method is paid by the buyer only when money is collected on delivery.
func PaymentTypeFor(freeShip bool, paymentMethod string, codAmount int) int {
	switch {
	case freeShip:
		return ghn.PaymentTypeSeller
	case paymentMethod == PaymentMethodCOD:
		return ghn.PaymentTypeBuyer
	case paymentMethod == PaymentMethodMoMo:
		return ghn.PaymentTypeSeller
	case codAmount > 0:
		return ghn.PaymentTypeBuyer
	default:
		return ghn.PaymentTypeSeller
	}
}

// PrepareOrder builds the carrier request for an order without sending it.
// Every line becomes one item with per-unit weight; the parcel weighs the
// sum of the items (at least 300g) and takes the largest item dimensions.
func (s *ShippingService) PrepareOrder(ctx context.Context, in OrderInput) (*ghn.CreateOrderRequest, error) {
	if len(in.Lines) == 0 {
		return nil, utils.ErrEmptyCart
	}
	if !in.Destination.Complete() {
		return nil, utils.ErrIncompleteDestination
	}
	if strings.TrimSpace(in.Recipient.Phone) == "" || in.Recipient.Address() == "" {
		return nil, utils.ErrIncompleteRecipient
	}

	items := make([]ghn.OrderItem, 0, len(in.Lines))
	var totalValue float64
	freeShip := false
	for _, line := range in.Lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items = append(items, orderItem(line, s.resolver.Resolve(ctx, in.Catalog, line)))
		totalValue += line.LineTotal()
		freeShip = freeShip || line.FreeShipping()
	}

	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	cod := codAmount(method, in.CodAmount, totalValue)

	req := &ghn.CreateOrderRequest{
		Sender:        s.order.Sender,
		PaymentTypeID: PaymentTypeFor(freeShip, method, cod),
		Note:          s.order.Note,
		RequiredNote:  s.order.RequiredNote,
		ToName:        strings.TrimSpace(in.Recipient.Name),
		ToPhone:       strings.TrimSpace(in.Recipient.Phone),
		ToAddress:     in.Recipient.Address(),
		ToWardCode:    in.Destination.WardCode,
		ToDistrictID:  in.Destination.DistrictID,
		CodAmount:     cod,
		ServiceID:     in.ServiceID,
		ServiceTypeID: ghn.ServiceTypeStandard,
		Items:         items,
	}
	if req.ToName == "" {
		req.ToName = defaultRecipientName
	}

	weight := 0
	for _, it := range items {
		weight += it.Weight * it.Quantity
		req.Length = max(req.Length, it.Length)
		req.Width = max(req.Width, it.Width)
		req.Height = max(req.Height, it.Height)
	}
	req.Weight = max(weight, MinOrderWeight)
	if req.Weight > HeavyWeightThreshold {
		req.ServiceTypeID = ghn.ServiceTypeHeavy
	}
	return req, nil
}

// CreateOrder prepares the order and submits it to the carrier once.
func (s *ShippingService) CreateOrder(ctx context.Context, in OrderInput) (*OrderResult, error) {
	if err := s.carrier.ValidateConfig(); err != nil {
		return nil, err
	}

	req, err := s.PrepareOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	order, err := s.carrier.CreateOrder(ctx, *req)
	if err != nil {
		log.Error().
			Err(err).
			Int("to_district_id", req.ToDistrictID).
			Int("payment_type_id", req.PaymentTypeID).
			Int("weight", req.Weight).
			Msg("GHN order creation failed")
		return nil, err
	}

	log.Info().
		Str("order_code", order.OrderCode).
		Int("payment_type_id", req.PaymentTypeID).
		Int("cod_amount", req.CodAmount).
		Int("total_fee", order.TotalFee).
		Msg("GHN order created")

	return &OrderResult{
		Order:             order,
		Request:           req,
		FormattedTotalFee: utils.FormatPrice(float64(order.TotalFee)),
	}, nil
}

// codAmount is the whole order value for cod, nothing for momo, and the
// caller's override (or the order value) otherwise.
func codAmount(method string, override *float64, totalValue float64) int {
	switch {
	case method == PaymentMethodCOD:
		return roundInt(totalValue)
	case method == PaymentMethodMoMo:
		return 0
	case override != nil && !math.IsNaN(*override) && !math.IsInf(*override, 0):
		return roundInt(math.Max(0, *override))
	default:
		return roundInt(totalValue)
	}
}

// orderItem turns a resolved line into an order item. Missing values take
// the per-unit defaults 300g and 20×15×10cm.
func orderItem(line models.CartLine, d ResolvedDimensions) ghn.OrderItem {
	qty := d.Qty
	if qty < 1 {
		qty = 1
	}
	name := line.Title
	if name == "" {
		name = defaultManifestItemName
	}

	unitWeight := float64(DefaultUnitWeight)
	if d.Weight != nil && *d.Weight > 0 && !math.IsInf(*d.Weight, 0) {
		unitWeight = *d.Weight / float64(qty)
	}

	return ghn.OrderItem{
		Name:     name,
		Quantity: qty,
		Price:    roundInt(math.Max(0, float64(line.Price))),
		Weight:   max(roundInt(unitWeight), 1),
		Length:   positiveOr(d.Length, DefaultLength),
		Width:    positiveOr(d.Width, DefaultWidth),
		Height:   positiveOr(d.Height, DefaultHeight),
	}
}

func positiveOr(v *float64, def int) int {
	if v == nil || !(*v > 0) || math.IsInf(*v, 0) {
		return def
	}
	if n := roundInt(*v); n > 0 {
		return n
	}
	return def
}
