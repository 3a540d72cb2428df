package ghn

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// GetProvinces lists every province. Concurrent calls share one request.
func (c *Client) GetProvinces(ctx context.Context) ([]Province, error) {
	return shared(ctx, c, "provinces", c.fetchProvinces)
}

func (c *Client) fetchProvinces(ctx context.Context) ([]Province, error) {
	const op = "get_provinces"

	var raw []provinceData
	if err := c.call(ctx, op, http.MethodGet, "/master-data/province", nil, false, KindResponse, &raw); err != nil {
		return nil, err
	}
	if err := validateEach(op, raw); err != nil {
		return nil, err
	}

	provinces := make([]Province, 0, len(raw))
	for _, p := range raw {
		provinces = append(provinces, p.toProvince())
	}
	return provinces, nil
}

// GetDistricts lists the districts of a province.
func (c *Client) GetDistricts(ctx context.Context, provinceID int) ([]District, error) {
	return shared(ctx, c, "districts:"+strconv.Itoa(provinceID), func(ctx context.Context) ([]District, error) {
		return c.fetchDistricts(ctx, provinceID)
	})
}

func (c *Client) fetchDistricts(ctx context.Context, provinceID int) ([]District, error) {
	const op = "get_districts"

	var raw []districtData
	req := DistrictRequest{ProvinceID: provinceID}
	if err := c.call(ctx, op, http.MethodPost, "/master-data/district", req, false, KindResponse, &raw); err != nil {
		return nil, err
	}
	if err := validateEach(op, raw); err != nil {
		return nil, err
	}

	districts := make([]District, 0, len(raw))
	for _, d := range raw {
		districts = append(districts, d.toDistrict())
	}
	return districts, nil
}

// GetWards lists the wards of a district.
func (c *Client) GetWards(ctx context.Context, districtID int) ([]Ward, error) {
	return shared(ctx, c, "wards:"+strconv.Itoa(districtID), func(ctx context.Context) ([]Ward, error) {
		return c.fetchWards(ctx, districtID)
	})
}

func (c *Client) fetchWards(ctx context.Context, districtID int) ([]Ward, error) {
	const op = "get_wards"

	var raw []wardData
	req := WardRequest{DistrictID: districtID}
	if err := c.call(ctx, op, http.MethodPost, "/master-data/ward", req, false, KindResponse, &raw); err != nil {
		return nil, err
	}
	if err := validateEach(op, raw); err != nil {
		return nil, err
	}

	wards := make([]Ward, 0, len(raw))
	for _, w := range raw {
		wards = append(wards, w.toWard())
	}
	return wards, nil
}

// GetAvailableServices lists the services GHN runs between two districts.
func (c *Client) GetAvailableServices(ctx context.Context, fromDistrictID, toDistrictID int) ([]AvailableService, error) {
	const op = "available_services"

	// Validate() guarantees a numeric shop id before any request is sent.
	shopID, _ := strconv.Atoi(c.config.ShopID)
	req := AvailableServicesRequest{
		ShopID:       shopID,
		FromDistrict: fromDistrictID,
		ToDistrict:   toDistrictID,
	}

	var raw []serviceData
	if err := c.call(ctx, op, http.MethodPost, "/v2/shipping-order/available-services", req, false, KindResponse, &raw); err != nil {
		return nil, err
	}
	if err := validateEach(op, raw); err != nil {
		return nil, err
	}

	services := make([]AvailableService, 0, len(raw))
	for _, s := range raw {
		services = append(services, AvailableService{
			ServiceID:     s.ServiceID,
			ShortName:     s.ShortName,
			ServiceTypeID: s.ServiceTypeID,
		})
	}
	return services, nil
}

// CalculateFee requests a fee quote. A rejected request yields a KindQuote error.
func (c *Client) CalculateFee(ctx context.Context, req FeeRequest) (*ShippingQuote, error) {
	const op = "calculate_fee"

	if req.ToDistrictID == 0 || strings.TrimSpace(req.ToWardCode) == "" {
		return nil, &Error{Kind: KindQuote, Op: op, Message: "destination district and ward are required"}
	}
	req = req.withDefaults()

	var raw feeData
	if err := c.call(ctx, op, http.MethodPost, "/v2/shipping-order/fee", req, true, KindQuote, &raw); err != nil {
		return nil, err
	}
	if err := validate.Struct(raw); err != nil {
		return nil, &Error{Kind: KindQuote, Op: op, Message: "fee response has no total", Err: err}
	}
	return raw.toQuote(), nil
}

// GetOrderDetail fetches a shipping order by its GHN order code.
func (c *Client) GetOrderDetail(ctx context.Context, orderCode string) (*OrderDetail, error) {
	const op = "order_detail"

	var raw json.RawMessage
	req := OrderDetailRequest{OrderCode: orderCode}
	if err := c.call(ctx, op, http.MethodPost, "/v2/shipping-order/detail", req, true, KindResponse, &raw); err != nil {
		return nil, err
	}

	var data orderDetailData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &Error{Kind: KindResponse, Op: op, Message: "unexpected data shape", Err: err}
	}
	if err := validate.Struct(data); err != nil {
		return nil, &Error{Kind: KindResponse, Op: op, Message: "order detail has no order code", Err: err}
	}
	return &OrderDetail{OrderCode: data.OrderCode, Status: data.Status, Raw: raw}, nil
}

// CreateOrder submits a shipping order. It is sent exactly once: a request
// that timed out may still have created the order, so it is never retried.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreatedOrder, error) {
	const op = "create_order"

	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, &Error{Kind: KindQuote, Op: op, Message: "order request is incomplete", Err: err}
	}

	var raw createOrderData
	if err := c.invoke(ctx, op, http.MethodPost, "/v2/shipping-order/create", req, true, KindQuote, 1, &raw); err != nil {
		return nil, err
	}
	if err := validate.Struct(raw); err != nil {
		return nil, &Error{Kind: KindResponse, Op: op, Message: "created order has no order code", Err: err}
	}
	return raw.toCreatedOrder(), nil
}
