package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

var buyer = Recipient{Name: "Nguyễn Văn A", Phone: "0912345678", AddressLine1: "12 Láng Hạ", AddressLine2: "Tầng 3"}

func TestPaymentTypeFor(t *testing.T) {
	tests := map[string]struct {
		freeShip bool
		method   string
		cod      int
		want     int
	}{
		"free ship wins over cod": {freeShip: true, method: PaymentMethodCOD, cod: 100000, want: ghn.PaymentTypeSeller},
		"cod":                     {method: PaymentMethodCOD, cod: 100000, want: ghn.PaymentTypeBuyer},
		"momo":                    {method: PaymentMethodMoMo, want: ghn.PaymentTypeSeller},
		"other with collection":   {method: "bank_transfer", cod: 5000, want: ghn.PaymentTypeBuyer},
		"other prepaid":           {method: "bank_transfer", want: ghn.PaymentTypeSeller},
		"no method":               {want: ghn.PaymentTypeSeller},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, PaymentTypeFor(tc.freeShip, tc.method, tc.cod))
		})
	}
}

func TestPrepareOrder_CodAmount(t *testing.T) {
	override := 50000.0
	lines := []models.CartLine{{ID: 1, Title: "Truyện Kiều", Quantity: 2, Price: 120000, Weight: models.MeasureOf(300)}}
	svc := NewShippingService(&fakeCarrier{}, nil)

	tests := map[string]struct {
		method   string
		override *float64
		wantCod  int
		wantType int
	}{
		"cod collects order value":      {method: "COD", override: &override, wantCod: 240000, wantType: ghn.PaymentTypeBuyer},
		"momo collects nothing":         {method: "momo", override: &override, wantCod: 0, wantType: ghn.PaymentTypeSeller},
		"other uses override":           {method: "vnpay", override: &override, wantCod: 50000, wantType: ghn.PaymentTypeBuyer},
		"other defaults to order value": {method: "vnpay", wantCod: 240000, wantType: ghn.PaymentTypeBuyer},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := svc.PrepareOrder(context.Background(), OrderInput{
				Lines:         lines,
				Recipient:     buyer,
				Destination:   hanoiWard,
				PaymentMethod: tc.method,
				CodAmount:     tc.override,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantCod, req.CodAmount)
			assert.Equal(t, tc.wantType, req.PaymentTypeID)
		})
	}
}

func TestPrepareOrder_ItemsAndParcel(t *testing.T) {
	lookup := &fakeLookup{books: map[int]*catalog.Product{2: product(450, 24, 16, 3)}}
	svc := NewShippingService(&fakeCarrier{}, nil)
	svc.SetOrderDefaults(OrderDefaults{Sender: ghn.Sender{Name: "TheBookStore"}, Note: "TheBookStore"})

	req, err := svc.PrepareOrder(context.Background(), OrderInput{
		Lines: []models.CartLine{
			{ID: 1, Title: "Sổ tay", Quantity: 3, Price: 15000, Weight: models.MeasureOf(120), Height: models.MeasureOf(2)},
			{ID: 2, Title: "Đất rừng phương Nam", Quantity: 2, Price: 89000},
			{ID: 3, Quantity: 1, Price: 5000},
		},
		Recipient:   buyer,
		Destination: hanoiWard,
		Catalog:     lookup,
		ServiceID:   53320,
	})
	require.NoError(t, err)

	require.Len(t, req.Items, 3)
	assert.Equal(t, ghn.OrderItem{Name: "Sổ tay", Quantity: 3, Price: 15000, Weight: 120, Length: 20, Width: 15, Height: 2}, req.Items[0])
	assert.Equal(t, ghn.OrderItem{Name: "Đất rừng phương Nam", Quantity: 2, Price: 89000, Weight: 450, Length: 24, Width: 16, Height: 3}, req.Items[1])
	assert.Equal(t, ghn.OrderItem{Name: "Item", Quantity: 1, Price: 5000, Weight: 300, Length: 20, Width: 15, Height: 10}, req.Items[2])

	assert.Equal(t, 3*120+2*450+300, req.Weight)
	assert.Equal(t, 24, req.Length)
	assert.Equal(t, 16, req.Width)
	assert.Equal(t, 10, req.Height)
	assert.Equal(t, ghn.ServiceTypeStandard, req.ServiceTypeID)
	assert.Equal(t, 53320, req.ServiceID)

	assert.Equal(t, "12 Láng Hạ, Tầng 3", req.ToAddress)
	assert.Equal(t, "TheBookStore", req.Sender.Name)
	assert.Equal(t, ghn.RequiredNoteViewNoTrial, req.RequiredNote, "defaults keep the required note")
}

func TestPrepareOrder_MinimumWeightAndHeavyTier(t *testing.T) {
	svc := NewShippingService(&fakeCarrier{}, nil)
	ctx := context.Background()

	light, err := svc.PrepareOrder(ctx, OrderInput{
		Lines:       []models.CartLine{{ID: 1, Quantity: 1, Weight: models.MeasureOf(80)}},
		Recipient:   buyer,
		Destination: hanoiWard,
	})
	require.NoError(t, err)
	assert.Equal(t, MinOrderWeight, light.Weight)

	heavy, err := svc.PrepareOrder(ctx, OrderInput{
		Lines:       []models.CartLine{{ID: 1, Quantity: 30, Weight: models.MeasureOf(800)}},
		Recipient:   buyer,
		Destination: hanoiWard,
	})
	require.NoError(t, err)
	assert.Equal(t, 24000, heavy.Weight)
	assert.Equal(t, 800, heavy.Items[0].Weight, "item weight is per unit")
	assert.Equal(t, ghn.ServiceTypeHeavy, heavy.ServiceTypeID)
}

func TestPrepareOrder_FreeShipLine(t *testing.T) {
	svc := NewShippingService(&fakeCarrier{}, nil)
	req, err := svc.PrepareOrder(context.Background(), OrderInput{
		Lines: []models.CartLine{
			{ID: 1, Quantity: 1, Price: 100000},
			{ID: 2, Quantity: 1, Price: 20000, IsFreeShip: true},
		},
		Recipient:     buyer,
		Destination:   hanoiWard,
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)
	assert.Equal(t, ghn.PaymentTypeSeller, req.PaymentTypeID)
	assert.Equal(t, 120000, req.CodAmount, "the shop pays delivery but cod is still collected")
}

func TestPrepareOrder_Validation(t *testing.T) {
	svc := NewShippingService(&fakeCarrier{}, nil)
	lines := []models.CartLine{{ID: 1, Quantity: 1}}

	tests := map[string]struct {
		in   OrderInput
		want error
	}{
		"empty cart":    {in: OrderInput{Recipient: buyer, Destination: hanoiWard}, want: utils.ErrEmptyCart},
		"no ward":       {in: OrderInput{Lines: lines, Recipient: buyer, Destination: models.Destination{DistrictID: 1482}}, want: utils.ErrIncompleteDestination},
		"no phone":      {in: OrderInput{Lines: lines, Recipient: Recipient{AddressLine1: "12 Láng Hạ"}, Destination: hanoiWard}, want: utils.ErrIncompleteRecipient},
		"blank address": {in: OrderInput{Lines: lines, Recipient: Recipient{Phone: "0912345678", AddressLine1: "  "}, Destination: hanoiWard}, want: utils.ErrIncompleteRecipient},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PrepareOrder(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateOrder_SubmitsOnce(t *testing.T) {
	carrier := &fakeCarrier{}
	svc := NewShippingService(carrier, nil)

	res, err := svc.CreateOrder(context.Background(), OrderInput{
		Lines:       []models.CartLine{{ID: 1, Title: "Truyện Kiều", Quantity: 2, Price: 120000}},
		Recipient:   Recipient{Phone: "0912345678", AddressLine1: "12 Láng Hạ"},
		Destination: hanoiWard,
	})
	require.NoError(t, err)
	assert.Equal(t, "LKD7XN", res.Order.OrderCode)
	assert.Equal(t, "36.300₫", res.FormattedTotalFee)
	require.Len(t, carrier.orders, 1)
	assert.Equal(t, "Customer", carrier.orders[0].ToName)
	assert.Equal(t, 600, carrier.orders[0].Weight)
}

func TestCreateOrder_ConfigErrorBeforePreparing(t *testing.T) {
	carrier := &fakeCarrier{configErr: &ghn.Error{Kind: ghn.KindConfig, Message: "missing token"}}
	svc := NewShippingService(carrier, nil)

	_, err := svc.CreateOrder(context.Background(), OrderInput{})
	assert.True(t, ghn.IsKind(err, ghn.KindConfig))
	assert.Empty(t, carrier.orders)
}

func TestCreateOrder_CarrierRejection(t *testing.T) {
	carrier := &fakeCarrier{orderErr: &ghn.Error{Kind: ghn.KindQuote, Op: "create_order", Message: "invalid phone"}}
	svc := NewShippingService(carrier, nil)

	_, err := svc.CreateOrder(context.Background(), OrderInput{
		Lines:       []models.CartLine{{ID: 1, Quantity: 1}},
		Recipient:   buyer,
		Destination: hanoiWard,
	})
	assert.True(t, ghn.IsKind(err, ghn.KindQuote))
}
