package models

import "time"

// QuoteRecord is one computed shipping quote as kept in the quote log.
type QuoteRecord struct {
	ID             int64     `db:"id" json:"id"`
	SessionID      *string   `db:"session_id" json:"sessionId,omitempty"`
	ToDistrictID   int       `db:"to_district_id" json:"toDistrictId"`
	ToWardCode     string    `db:"to_ward_code" json:"toWardCode"`
	ServiceTypeID  int       `db:"service_type_id" json:"serviceTypeId"`
	Weight         int       `db:"weight" json:"weight"`
	Length         int       `db:"length" json:"length"`
	Width          int       `db:"width" json:"width"`
	Height         int       `db:"height" json:"height"`
	InsuranceValue int       `db:"insurance_value" json:"insuranceValue"`
	ItemCount      int       `db:"item_count" json:"itemCount"`
	Total          int       `db:"total" json:"total"`
	ServiceFee     int       `db:"service_fee" json:"serviceFee"`
	InsuranceFee   int       `db:"insurance_fee" json:"insuranceFee"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
