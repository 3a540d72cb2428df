package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/GTDGit/bookstore_api/internal/utils"
)

// Price is a unit price in dong. It decodes from a JSON number or from a
// formatted string such as "125.000₫".
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		*p = Price(utils.ParsePrice(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	*p = Price(f)
	return nil
}

// CartLine is one line of a checkout cart as sent by the storefront.
// Dimension fields are optional; the *_grams / *_cm spellings used by the
// catalog are accepted too.
type CartLine struct {
	ID       int     `json:"id" binding:"required"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    Price   `json:"price"`
	Weight   Measure `json:"weight"`
	Length   Measure `json:"length"`
	Width    Measure `json:"width"`
	Height   Measure `json:"height"`

	WeightGrams Measure `json:"weight_grams"`
	LengthCM    Measure `json:"length_cm"`
	WidthCM     Measure `json:"width_cm"`
	HeightCM    Measure `json:"height_cm"`

	FreeShip   bool `json:"isFreeShip"`
	IsFreeShip bool `json:"is_free_ship"`
}

// Qty returns the quantity, treating anything below 1 as 1.
func (l CartLine) Qty() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// Dimensions returns the dimensions carried on the line itself.
func (l CartLine) Dimensions() Dimensions {
	return Dimensions{
		Weight: l.Weight.Or(l.WeightGrams),
		Length: l.Length.Or(l.LengthCM),
		Width:  l.Width.Or(l.WidthCM),
		Height: l.Height.Or(l.HeightCM),
	}
}

// FreeShipping reports whether the shop pays delivery for this product.
func (l CartLine) FreeShipping() bool {
	return l.FreeShip || l.IsFreeShip
}

// LineTotal is price × quantity.
func (l CartLine) LineTotal() float64 {
	return float64(l.Price) * float64(l.Qty())
}

// Destination identifies where a shipment goes: a GHN district id and the
// string code of a ward in it.
type Destination struct {
	DistrictID int    `json:"districtId"`
	WardCode   string `json:"wardCode"`
}

// Complete reports whether both parts are set.
func (d Destination) Complete() bool {
	return d.DistrictID != 0 && d.WardCode != ""
}
