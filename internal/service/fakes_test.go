package service

import (
	"context"
	"errors"
	"sync"

	"github.com/GTDGit/bookstore_api/internal/cache"
	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

type fakeLookup struct {
	books      map[int]*catalog.Product
	stationery map[int]*catalog.Product
	bookCalls  []int
	statCalls  []int
}

func (f *fakeLookup) GetBook(_ context.Context, id int) (*catalog.Product, error) {
	f.bookCalls = append(f.bookCalls, id)
	if p, ok := f.books[id]; ok {
		return p, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeLookup) GetStationery(_ context.Context, id int) (*catalog.Product, error) {
	f.statCalls = append(f.statCalls, id)
	if p, ok := f.stationery[id]; ok {
		return p, nil
	}
	return nil, errors.New("stationery backend unavailable")
}

type fakeDimensionCache struct {
	data   map[int]*cache.CachedDimensions
	getErr error
	sets   int
}

func (f *fakeDimensionCache) Get(_ context.Context, id int) (*cache.CachedDimensions, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data[id], nil
}

func (f *fakeDimensionCache) Set(_ context.Context, id int, kind cache.ProductKind, dims models.Dimensions) error {
	if f.data == nil {
		f.data = map[int]*cache.CachedDimensions{}
	}
	f.data[id] = &cache.CachedDimensions{Kind: kind, Dimensions: dims}
	f.sets++
	return nil
}

type fakeCarrier struct {
	mu        sync.Mutex
	configErr error
	feeErr    error
	quote     *ghn.ShippingQuote
	requests  []ghn.FeeRequest
	services  []ghn.AvailableService
	order     *ghn.OrderDetail
	created   *ghn.CreatedOrder
	orderErr  error
	orders    []ghn.CreateOrderRequest
}

func (f *fakeCarrier) ValidateConfig() error { return f.configErr }

func (f *fakeCarrier) CalculateFee(_ context.Context, req ghn.FeeRequest) (*ghn.ShippingQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.feeErr != nil {
		return nil, f.feeErr
	}
	if f.quote != nil {
		return f.quote, nil
	}
	return &ghn.ShippingQuote{Total: 36300, ServiceFee: 36300}, nil
}

func (f *fakeCarrier) GetAvailableServices(_ context.Context, _, _ int) ([]ghn.AvailableService, error) {
	return f.services, nil
}

func (f *fakeCarrier) GetOrderDetail(_ context.Context, code string) (*ghn.OrderDetail, error) {
	if f.order == nil {
		return nil, &ghn.Error{Kind: ghn.KindResponse, Op: "order_detail", Message: "order not found"}
	}
	return f.order, nil
}

func (f *fakeCarrier) CreateOrder(_ context.Context, req ghn.CreateOrderRequest) (*ghn.CreatedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, req)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if f.created != nil {
		return f.created, nil
	}
	return &ghn.CreatedOrder{OrderCode: "LKD7XN", TotalFee: 36300}, nil
}

func (f *fakeCarrier) lastRequest() ghn.FeeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeRecorder struct {
	records []*models.QuoteRecord
	err     error
}

func (f *fakeRecorder) Create(_ context.Context, rec *models.QuoteRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return nil
}

type fakeNotifier struct {
	created []*models.QuoteRecord
}

func (f *fakeNotifier) NotifyQuoteCreated(rec *models.QuoteRecord) {
	f.created = append(f.created, rec)
}

func product(weight, length, width, height float64) *catalog.Product {
	return &catalog.Product{
		Weight: models.MeasureOf(weight),
		Length: models.MeasureOf(length),
		Width:  models.MeasureOf(width),
		Height: models.MeasureOf(height),
	}
}

func fptr(v float64) *float64 { return &v }
