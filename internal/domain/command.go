package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Command is a cart state transition. The set of commands is closed.
type Command interface {
	command()
}

// AddItem adds Quantity of a product (and optional variant) to the cart.
type AddItem struct {
	Product  Product
	Variant  *ProductVariant
	Quantity int
	// At is recorded as the item's added_at when a new line is created.
	At time.Time
}

// RemoveItem deletes a line item.
type RemoveItem struct {
	ItemID string
}

// UpdateQuantity replaces a line item's quantity. Zero or less removes it.
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

// ClearCart empties the cart, coupon included.
type ClearCart struct{}

// ApplyCoupon sets the active coupon, replacing any previous one.
type ApplyCoupon struct {
	Code string
}

// RemoveCoupon clears the active coupon.
type RemoveCoupon struct{}

func (AddItem) command()        {}
func (RemoveItem) command()     {}
func (UpdateQuantity) command() {}
func (ClearCart) command()      {}
func (ApplyCoupon) command()    {}
func (RemoveCoupon) command()   {}

// Apply returns the ledger that results from applying cmd to l. It never
// modifies l and never fails: invalid input leaves the ledger unchanged.
func Apply(l Ledger, cmd Command) Ledger {
	switch c := cmd.(type) {
	case AddItem:
		return addItem(l, c)
	case RemoveItem:
		return removeItem(l, c.ItemID)
	case UpdateQuantity:
		if c.Quantity <= 0 {
			return removeItem(l, c.ItemID)
		}
		i := l.Find(c.ItemID)
		if i < 0 {
			return l
		}
		next := l.clone()
		next.Items[i].Quantity = c.Quantity
		return next
	case ClearCart:
		return Ledger{}
	case ApplyCoupon:
		code := strings.TrimSpace(c.Code)
		next := l.clone()
		if code == "" {
			next.CouponCode = nil
		} else {
			next.CouponCode = &code
		}
		return next
	case RemoveCoupon:
		next := l.clone()
		next.CouponCode = nil
		return next
	default:
		return l
	}
}

func addItem(l Ledger, c AddItem) Ledger {
	if c.Product.ID == "" || c.Product.VendorID == "" {
		return l
	}
	qty := c.Quantity
	if qty < 1 {
		qty = 1
	}

	var variantID string
	if c.Variant != nil {
		variantID = c.Variant.ID
	}
	id := LineItemID(c.Product.ID, variantID)

	next := l.clone()
	if i := next.Find(id); i >= 0 {
		next.Items[i].Quantity += qty
		return next
	}
	next.Items = append(next.Items, snapshot(id, c.Product, c.Variant, qty, c.At))
	return next
}

func removeItem(l Ledger, id string) Ledger {
	i := l.Find(id)
	if i < 0 {
		return l
	}
	next := l.clone()
	next.Items = append(next.Items[:i], next.Items[i+1:]...)
	return next
}

// snapshot captures the catalog data a new line item needs. Variant prices
// take precedence over the product's.
func snapshot(id string, p Product, v *ProductVariant, qty int, at time.Time) LineItem {
	item := LineItem{
		ID:            id,
		ProductID:     p.ID,
		VendorID:      p.VendorID,
		VendorName:    p.VendorName(),
		Name:          p.Name,
		Quantity:      qty,
		Price:         Money(p.Price),
		OriginalPrice: optionalMoney(p.OriginalPrice),
		ShippingType:  ShippingPaid,
		ShippingCost:  ShippingCost,
		AddedAt:       at,
	}
	if v != nil {
		item.VariantID = v.ID
		item.Price = Money(v.Price)
		item.OriginalPrice = optionalMoney(v.OriginalPrice)
	}
	if p.HasFreeShipping {
		item.ShippingType = ShippingFree
		item.ShippingCost = decimal.Zero
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0]
	}
	return item
}
