package ghn

import "encoding/json"

// envelope is the {code, message, data} wrapper GHN puts around every body.
// A 2xx HTTP status does not imply success; Code must be 200.
type envelope struct {
	Code    *int            `json:"code" validate:"required"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const codeSuccess = 200

// provinceData is the raw carrier shape of a province.
type provinceData struct {
	ProvinceID    int      `json:"ProvinceID" validate:"required"`
	ProvinceName  string   `json:"ProvinceName" validate:"required"`
	Code          string   `json:"Code"`
	NameExtension []string `json:"NameExtension"`
}

// districtData is the raw carrier shape of a district.
type districtData struct {
	DistrictID    int      `json:"DistrictID" validate:"required"`
	ProvinceID    int      `json:"ProvinceID"`
	DistrictName  string   `json:"DistrictName" validate:"required"`
	Code          string   `json:"Code"`
	Type          int      `json:"Type"`
	SupportType   int      `json:"SupportType"`
	NameExtension []string `json:"NameExtension"`
}

// wardData is the raw carrier shape of a ward. Wards are keyed by a string
// code, not an integer id.
type wardData struct {
	WardCode      string   `json:"WardCode" validate:"required"`
	DistrictID    int      `json:"DistrictID"`
	WardName      string   `json:"WardName" validate:"required"`
	CanUpdateCOD  bool     `json:"CanUpdateCOD"`
	SupportType   int      `json:"SupportType"`
	NameExtension []string `json:"NameExtension"`
}

type serviceData struct {
	ServiceID     int    `json:"service_id" validate:"required"`
	ShortName     string `json:"short_name"`
	ServiceTypeID int    `json:"service_type_id"`
}

type feeData struct {
	Total                 *int `json:"total" validate:"required"`
	ServiceFee            int  `json:"service_fee"`
	InsuranceFee          int  `json:"insurance_fee"`
	PickStationFee        int  `json:"pick_station_fee"`
	CouponValue           int  `json:"coupon_value"`
	CodFee                int  `json:"cod_fee"`
	PickRemoteAreasFee    int  `json:"pick_remote_areas_fee"`
	DeliverRemoteAreasFee int  `json:"deliver_remote_areas_fee"`
	CodFailedFee          int  `json:"cod_failed_fee"`
}

type orderDetailData struct {
	OrderCode string `json:"order_code" validate:"required"`
	Status    string `json:"status"`
}

type orderFeeData struct {
	MainService int `json:"main_service"`
	Insurance   int `json:"insurance"`
	StationDO   int `json:"station_do"`
	StationPU   int `json:"station_pu"`
	Return      int `json:"return"`
	R2S         int `json:"r2s"`
	Coupon      int `json:"coupon"`
}

type createOrderData struct {
	OrderCode            string       `json:"order_code" validate:"required"`
	SortCode             string       `json:"sort_code"`
	TransType            string       `json:"trans_type"`
	TotalFee             int          `json:"total_fee"`
	ExpectedDeliveryTime string       `json:"expected_delivery_time"`
	Fee                  orderFeeData `json:"fee"`
}

// Province is a first-level administrative region.
type Province struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	NameExtension []string `json:"nameExtension"`
}

// District is a second-level administrative region inside a Province.
type District struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	ProvinceID    int      `json:"provinceId"`
	Type          int      `json:"type"`
	SupportType   int      `json:"supportType"`
	NameExtension []string `json:"nameExtension"`
}

// Ward is a third-level administrative region inside a District.
type Ward struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	DistrictID    int      `json:"districtId"`
	CanUpdateCOD  bool     `json:"canUpdateCod"`
	SupportType   int      `json:"supportType"`
	NameExtension []string `json:"nameExtension"`
}

// AvailableService is a carrier service offered between two districts.
type AvailableService struct {
	ServiceID     int    `json:"serviceId"`
	ShortName     string `json:"shortName"`
	ServiceTypeID int    `json:"serviceTypeId"`
}

// ShippingQuote is the fee breakdown returned for one shipment estimate.
type ShippingQuote struct {
	Total                 int `json:"total"`
	ServiceFee            int `json:"serviceFee"`
	InsuranceFee          int `json:"insuranceFee"`
	PickStationFee        int `json:"pickStationFee"`
	CouponValue           int `json:"couponValue"`
	CodFee                int `json:"codFee"`
	PickRemoteAreasFee    int `json:"pickRemoteAreasFee"`
	DeliverRemoteAreasFee int `json:"deliverRemoteAreasFee"`
	CodFailedFee          int `json:"codFailedFee"`
}

// OrderDetail is the subset of a GHN shipping order the storefront tracks.
// Raw keeps the full carrier payload.
type OrderDetail struct {
	OrderCode string          `json:"orderCode"`
	Status    string          `json:"status"`
	Raw       json.RawMessage `json:"raw"`
}

func (p provinceData) toProvince() Province {
	return Province{
		ID:            p.ProvinceID,
		Name:          p.ProvinceName,
		Code:          p.Code,
		NameExtension: nonNil(p.NameExtension),
	}
}

func (d districtData) toDistrict() District {
	return District{
		ID:            d.DistrictID,
		Name:          d.DistrictName,
		Code:          d.Code,
		ProvinceID:    d.ProvinceID,
		Type:          d.Type,
		SupportType:   d.SupportType,
		NameExtension: nonNil(d.NameExtension),
	}
}

func (w wardData) toWard() Ward {
	return Ward{
		Code:          w.WardCode,
		Name:          w.WardName,
		DistrictID:    w.DistrictID,
		CanUpdateCOD:  w.CanUpdateCOD,
		SupportType:   w.SupportType,
		NameExtension: nonNil(w.NameExtension),
	}
}

func (f feeData) toQuote() *ShippingQuote {
	return &ShippingQuote{
		Total:                 *f.Total,
		ServiceFee:            f.ServiceFee,
		InsuranceFee:          f.InsuranceFee,
		PickStationFee:        f.PickStationFee,
		CouponValue:           f.CouponValue,
		CodFee:                f.CodFee,
		PickRemoteAreasFee:    f.PickRemoteAreasFee,
		DeliverRemoteAreasFee: f.DeliverRemoteAreasFee,
		CodFailedFee:          f.CodFailedFee,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// OrderFee is the fee breakdown of a created order.
type OrderFee struct {
	MainService int `json:"mainService"`
	Insurance   int `json:"insurance"`
	StationDO   int `json:"stationDo"`
	StationPU   int `json:"stationPu"`
	Return      int `json:"return"`
	R2S         int `json:"r2s"`
	Coupon      int `json:"coupon"`
}

// CreatedOrder is the carrier's answer to a successful order creation.
type CreatedOrder struct {
	OrderCode            string   `json:"orderCode"`
	SortCode             string   `json:"sortCode"`
	TransType            string   `json:"transType"`
	TotalFee             int      `json:"totalFee"`
	ExpectedDeliveryTime string   `json:"expectedDeliveryTime"`
	Fee                  OrderFee `json:"fee"`
}

func (d createOrderData) toCreatedOrder() *CreatedOrder {
	return &CreatedOrder{
		OrderCode:            d.OrderCode,
		SortCode:             d.SortCode,
		TransType:            d.TransType,
		TotalFee:             d.TotalFee,
		ExpectedDeliveryTime: d.ExpectedDeliveryTime,
		Fee:                  OrderFee(d.Fee),
	}
}
