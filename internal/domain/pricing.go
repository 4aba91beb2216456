package domain

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal at or above which no shipping is charged.
	FreeShippingThreshold = decimal.NewFromInt(150)
	// ShippingCost is the flat charge per vendor group with a paid item.
	ShippingCost = decimal.RequireFromString("29.99")
	// DefaultCouponEstimateRate is the share of the subtotal shown as the
	// estimated discount while a coupon is active.
	DefaultCouponEstimateRate = decimal.RequireFromString("0.10")
)

// PricingPolicy computes the derived totals of a ledger.
type PricingPolicy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingCost          decimal.Decimal
	CouponEstimateRate    decimal.Decimal
}

// DefaultPricingPolicy returns the storefront's standard policy.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		FreeShippingThreshold: FreeShippingThreshold,
		ShippingCost:          ShippingCost,
		CouponEstimateRate:    DefaultCouponEstimateRate,
	}
}

// Totals is the read surface consumed by the cart page and the sticky bar.
type Totals struct {
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Total         decimal.Decimal `json:"total"`
	CouponCode    *string         `json:"coupon_code"`
	// Unattributed lists item ids with no vendor. Such items are priced but
	// never shipped, so the cart page asks the shopper to re-add them.
	Unattributed []string `json:"unattributed_items,omitempty"`
}

// VendorSummary is one seller box on the cart page.
type VendorSummary struct {
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name,omitempty"`
	Items      []LineItem      `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
}

// ShippingTotal is zero once the subtotal reaches the threshold. Below it,
// each vendor group with at least one paid item is charged once. Items
// without a vendor are never charged.
func (p PricingPolicy) ShippingTotal(l Ledger) decimal.Decimal {
	if l.Subtotal().GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, g := range l.ItemsByVendor() {
		if g.HasPaidItem() {
			total = total.Add(p.ShippingCost)
		}
	}
	return total
}

// DiscountTotal is the displayed coupon estimate: zero without a coupon,
// otherwise the estimate rate applied to the subtotal.
func (p PricingPolicy) DiscountTotal(l Ledger) decimal.Decimal {
	if l.CouponCode == nil {
		return decimal.Zero
	}
	return l.Subtotal().Mul(p.CouponEstimateRate).Round(2)
}

// Total is subtotal plus shipping minus discount, never below zero.
func (p PricingPolicy) Total(l Ledger) decimal.Decimal {
	return p.Totals(l).Total
}

// Totals computes every derived amount in one pass over the policy.
func (p PricingPolicy) Totals(l Ledger) Totals {
	subtotal := l.Subtotal()
	shipping := p.ShippingTotal(l)
	discount := p.DiscountTotal(l)

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	var coupon *string
	if l.CouponCode != nil {
		code := *l.CouponCode
		coupon = &code
	}

	return Totals{
		ItemCount:     l.ItemCount(),
		Subtotal:      subtotal,
		ShippingTotal: shipping,
		DiscountTotal: discount,
		Total:         total,
		CouponCode:    coupon,
		Unattributed:  l.Unattributed(),
	}
}

// VendorBreakdown returns one summary per vendor group. Per-group shipping
// follows the same threshold rule as ShippingTotal, so the group shipping
// amounts always add up to it.
func (p PricingPolicy) VendorBreakdown(l Ledger) []VendorSummary {
	free := l.Subtotal().GreaterThanOrEqual(p.FreeShippingThreshold)
	groups := l.ItemsByVendor()
	out := make([]VendorSummary, 0, len(groups))
	for _, g := range groups {
		shipping := decimal.Zero
		if !free && g.HasPaidItem() {
			shipping = p.ShippingCost
		}
		out = append(out, VendorSummary{
			VendorID:   g.VendorID,
			VendorName: g.Name(),
			Items:      g.Items,
			Subtotal:   g.Subtotal(),
			Shipping:   shipping,
		})
	}
	return out
}
