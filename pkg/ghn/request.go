package ghn

// Service type ids understood by the fee endpoint.
const (
	ServiceTypeStandard = 2
	ServiceTypeHeavy    = 5
)

// DistrictRequest lists the districts of a province.
type DistrictRequest struct {
	ProvinceID int `json:"province_id"`
}

// WardRequest lists the wards of a district.
type WardRequest struct {
	DistrictID int `json:"district_id"`
}

// AvailableServicesRequest asks which services run between two districts.
type AvailableServicesRequest struct {
	ShopID       int `json:"shop_id"`
	FromDistrict int `json:"from_district"`
	ToDistrict   int `json:"to_district"`
}

// FeeItem is one entry of the item manifest required by the heavy service.
type FeeItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Length   int    `json:"length"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Weight   int    `json:"weight"`
}

// FeeRequest is the payload of POST /v2/shipping-order/fee.
// Weight is in grams, dimensions in centimetres.
type FeeRequest struct {
	ServiceTypeID  int       `json:"service_type_id"`
	FromDistrictID int       `json:"from_district_id,omitempty"`
	FromWardCode   string    `json:"from_ward_code,omitempty"`
	ToDistrictID   int       `json:"to_district_id"`
	ToWardCode     string    `json:"to_ward_code"`
	Weight         int       `json:"weight"`
	Length         int       `json:"length"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	InsuranceValue int       `json:"insurance_value"`
	Coupon         *string   `json:"coupon"`
	Items          []FeeItem `json:"items,omitempty"`
}

// Request defaults applied when the caller leaves a field at zero.
const (
	defaultFeeWeight = 500
	defaultFeeLength = 20
	defaultFeeWidth  = 15
	defaultFeeHeight = 10
)

// withDefaults fills zero-valued fields and drops the item manifest for
// anything other than the heavy service.
func (r FeeRequest) withDefaults() FeeRequest {
	if r.ServiceTypeID == 0 {
		r.ServiceTypeID = ServiceTypeStandard
	}
	if r.Weight == 0 {
		r.Weight = defaultFeeWeight
	}
	if r.Length == 0 {
		r.Length = defaultFeeLength
	}
	if r.Width == 0 {
		r.Width = defaultFeeWidth
	}
	if r.Height == 0 {
		r.Height = defaultFeeHeight
	}

	if r.ServiceTypeID != ServiceTypeHeavy || len(r.Items) == 0 {
		r.Items = nil
		return r
	}

	items := make([]FeeItem, len(r.Items))
	for i, it := range r.Items {
		if it.Name == "" {
			it.Name = "Book"
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		if it.Length == 0 {
			it.Length = r.Length
		}
		if it.Width == 0 {
			it.Width = r.Width
		}
		if it.Height == 0 {
			it.Height = r.Height
		}
		if it.Weight == 0 {
			it.Weight = r.Weight
		}
		items[i] = it
	}
	r.Items = items
	return r
}

// OrderDetailRequest fetches a shipping order by its GHN code.
type OrderDetailRequest struct {
	OrderCode string `json:"order_code"`
}

// Payment type ids of the order endpoint: who pays the delivery fee.
const (
	PaymentTypeSeller = 1
	PaymentTypeBuyer  = 2
)

// RequiredNoteViewNoTrial lets the recipient look at the parcel but not
// try it before paying.
const RequiredNoteViewNoTrial = "CHOXEMHANGKHONGTHU"

// OrderItem is one line of a shipping order. Weight is per unit.
type OrderItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Price    int    `json:"price" validate:"min=0"`
	Length   int    `json:"length"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Weight   int    `json:"weight"`
}

// Sender is the pickup party. Empty fields make GHN fall back to the
// shop's registered address.
type Sender struct {
	Name         string `json:"from_name,omitempty"`
	Phone        string `json:"from_phone,omitempty"`
	Address      string `json:"from_address,omitempty"`
	WardName     string `json:"from_ward_name,omitempty"`
	DistrictName string `json:"from_district_name,omitempty"`
	ProvinceName string `json:"from_province_name,omitempty"`
}

// CreateOrderRequest is the payload of POST /v2/shipping-order/create.
type CreateOrderRequest struct {
	Sender

	PaymentTypeID int    `json:"payment_type_id" validate:"oneof=1 2"`
	Note          string `json:"note,omitempty"`
	RequiredNote  string `json:"required_note" validate:"required"`

	ToName       string `json:"to_name" validate:"required"`
	ToPhone      string `json:"to_phone" validate:"required"`
	ToAddress    string `json:"to_address" validate:"required"`
	ToWardCode   string `json:"to_ward_code" validate:"required"`
	ToDistrictID int    `json:"to_district_id" validate:"required"`

	CodAmount     int         `json:"cod_amount" validate:"min=0"`
	Weight        int         `json:"weight" validate:"min=1"`
	Length        int         `json:"length" validate:"min=1"`
	Width         int         `json:"width" validate:"min=1"`
	Height        int         `json:"height" validate:"min=1"`
	ServiceID     int         `json:"service_id,omitempty"`
	ServiceTypeID int         `json:"service_type_id"`
	Items         []OrderItem `json:"items" validate:"dive"`
}
