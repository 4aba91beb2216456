package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingType says whether a line item ships free or contributes to its
// vendor's flat shipping charge.
type ShippingType string

const (
	ShippingFree ShippingType = "free"
	ShippingPaid ShippingType = "paid"
)

// Valid reports whether t is a known shipping type.
func (t ShippingType) Valid() bool {
	return t == ShippingFree || t == ShippingPaid
}

// LineItem is one row of the cart: a product+variant combination with a
// quantity and the prices captured when it was added.
type LineItem struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	VendorID      string           `json:"vendor_id"`
	VendorName    string           `json:"vendor_name,omitempty"`
	VariantID     string           `json:"variant_id,omitempty"`
	Name          string           `json:"name,omitempty"`
	ImageURL      string           `json:"image_url,omitempty"`
	Quantity      int              `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ShippingType  ShippingType     `json:"shipping_type"`
	ShippingCost  decimal.Decimal  `json:"shipping_cost"`
	AddedAt       time.Time        `json:"added_at,omitzero"`
}

// HasVendor reports whether the item can be attributed to a seller. Apply
// never creates vendorless items, but payloads written by older clients may
// contain them.
func (li LineItem) HasVendor() bool {
	return li.VendorID != ""
}

// LineTotal returns price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// LineItemID derives the identity of a line item. Adds of the same product and
// variant always resolve to the same id.
func LineItemID(productID, variantID string) string {
	if variantID == "" {
		return productID + "-default"
	}
	return productID + "-" + variantID
}

// Ledger is the cart state for one profile: ordered line items and at most
// one active coupon code.
type Ledger struct {
	Items      []LineItem `json:"items"`
	CouponCode *string    `json:"coupon_code"`
	UpdatedAt  time.Time  `json:"updated_at,omitzero"`
}

// IsEmpty reports whether the ledger holds no items and no coupon.
func (l Ledger) IsEmpty() bool {
	return len(l.Items) == 0 && l.CouponCode == nil
}

// Coupon returns the active coupon code, or "" when none is set.
func (l Ledger) Coupon() string {
	if l.CouponCode == nil {
		return ""
	}
	return *l.CouponCode
}

// Find returns the index of the item with the given id, or -1.
func (l Ledger) Find(id string) int {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemCount is the sum of all quantities.
func (l Ledger) ItemCount() int {
	var n int
	for _, item := range l.Items {
		n += item.Quantity
	}
	return n
}

// Subtotal is the sum of price times quantity over all items. It is always
// recomputed from the items.
func (l Ledger) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range l.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// VendorGroup is the subset of line items belonging to one vendor.
type VendorGroup struct {
	VendorID string
	Items    []LineItem
}

// Name is the first vendor name carried by the group's items.
func (g VendorGroup) Name() string {
	for _, item := range g.Items {
		if item.VendorName != "" {
			return item.VendorName
		}
	}
	return ""
}

// HasPaidItem reports whether any item in the group ships paid.
func (g VendorGroup) HasPaidItem() bool {
	for _, item := range g.Items {
		if item.ShippingType == ShippingPaid {
			return true
		}
	}
	return false
}

// Subtotal is the group's share of the ledger subtotal.
func (g VendorGroup) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range g.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// ItemsByVendor groups items by vendor id. Groups appear in the order their
// vendor was first seen; item order is preserved within a group. Items
// without a vendor belong to no group; see Unattributed.
func (l Ledger) ItemsByVendor() []VendorGroup {
	index := make(map[string]int)
	var groups []VendorGroup
	for _, item := range l.Items {
		if !item.HasVendor() {
			continue
		}
		i, ok := index[item.VendorID]
		if !ok {
			i = len(groups)
			index[item.VendorID] = i
			groups = append(groups, VendorGroup{VendorID: item.VendorID})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Unattributed returns the ids of items that carry no vendor, in ledger
// order. They count toward the subtotal but never toward shipping.
func (l Ledger) Unattributed() []string {
	var ids []string
	for _, item := range l.Items {
		if !item.HasVendor() {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Validate checks the structural invariants of a ledger: unique ids, positive
// quantities, non-negative prices and a known shipping type. Ledgers produced
// by Apply always pass. A missing vendor is not checked here; see HasVendor.
func (l Ledger) Validate() error {
	seen := make(map[string]struct{}, len(l.Items))
	for i, item := range l.Items {
		switch {
		case item.ID == "" || item.ProductID == "":
			return fmt.Errorf("item %d: missing id", i)
		case item.Quantity < 1:
			return fmt.Errorf("item %s: quantity %d", item.ID, item.Quantity)
		case item.Price.IsNegative() || item.ShippingCost.IsNegative():
			return fmt.Errorf("item %s: negative amount", item.ID)
		case !item.ShippingType.Valid():
			return fmt.Errorf("item %s: shipping type %q", item.ID, item.ShippingType)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate item id %s", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// clone returns a copy that shares no mutable state with l.
func (l Ledger) clone() Ledger {
	out := Ledger{UpdatedAt: l.UpdatedAt}
	if l.Items != nil {
		out.Items = make([]LineItem, len(l.Items))
		copy(out.Items, l.Items)
	}
	if l.CouponCode != nil {
		code := *l.CouponCode
		out.CouponCode = &code
	}
	return out
}
