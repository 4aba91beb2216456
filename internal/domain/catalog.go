package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot the cart reads when an item is added.
// The cart never writes back to catalog state.
type Product struct {
	ID              string   `json:"id"`
	VendorID        string   `json:"vendor_id"`
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	OriginalPrice   *float64 `json:"original_price,omitempty"`
	HasFreeShipping bool     `json:"has_free_shipping"`
	Images          []string `json:"images,omitempty"`
	Vendor          *Vendor  `json:"vendor,omitempty"`
}

// VendorName is the display name of the product's seller, if the snapshot
// carries one for the same vendor id.
func (p Product) VendorName() string {
	if p.Vendor == nil || p.Vendor.ID != p.VendorID {
		return ""
	}
	return p.Vendor.Name
}

// ProductVariant is a purchasable variation of a product. When present on an
// add, its prices replace the product's.
type ProductVariant struct {
	ID            string   `json:"id"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Stock         int      `json:"stock"`
}

// Vendor is the seller a product belongs to.
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Money converts a catalog price to a decimal amount. NaN, infinities and
// negative values become zero.
func Money(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func optionalMoney(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	m := Money(*v)
	return &m
}
