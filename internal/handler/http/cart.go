package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/service"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/httputil"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/validator"
)

// CartHandler serves the cart page, the sticky cart bar and the favorites
// "add all" action.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// ProductRequest is the catalog snapshot the client sends with an add.
type ProductRequest struct {
	ID              string   `json:"id" validate:"required,max=128"`
	VendorID        string   `json:"vendor_id" validate:"required,max=128"`
	Name            string   `json:"name" validate:"max=500"`
	Price           float64  `json:"price" validate:"gte=0"`
	OriginalPrice   *float64 `json:"original_price" validate:"omitempty,gte=0"`
	HasFreeShipping bool     `json:"has_free_shipping"`
	Images          []string `json:"images" validate:"max=20"`
	VendorName      string   `json:"vendor_name" validate:"max=200"`
}

func (p ProductRequest) toDomain() domain.Product {
	product := domain.Product{
		ID:              p.ID,
		VendorID:        p.VendorID,
		Name:            p.Name,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		HasFreeShipping: p.HasFreeShipping,
		Images:          p.Images,
	}
	if p.VendorName != "" {
		product.Vendor = &domain.Vendor{ID: p.VendorID, Name: p.VendorName}
	}
	return product
}

// VariantRequest selects a product variant.
type VariantRequest struct {
	ID            string   `json:"id" validate:"required,max=128"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"original_price" validate:"omitempty,gte=0"`
	Stock         int      `json:"stock"`
}

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	Product  ProductRequest  `json:"product"`
	Variant  *VariantRequest `json:"variant" validate:"omitempty"`
	Quantity int             `json:"quantity" validate:"gte=0,lte=999"`
}

// UpdateQuantityRequest is the body of PUT /api/v1/cart/items/{itemId}.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CouponRequest is the body of PUT /api/v1/cart/coupon.
type CouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// BulkAddRequest is the body of POST /api/v1/cart/bulk.
type BulkAddRequest struct {
	Products []ProductRequest `json:"products" validate:"required,min=1,max=100"`
}

// --- Response DTOs ---

// CartResponse is the read surface consumed by the cart page and sticky bar.
type CartResponse struct {
	Items         []domain.LineItem      `json:"items"`
	CouponCode    *string                `json:"coupon_code"`
	ItemCount     int                    `json:"item_count"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	ShippingTotal decimal.Decimal        `json:"shipping_total"`
	DiscountTotal decimal.Decimal        `json:"discount_total"`
	Total         decimal.Decimal        `json:"total"`
	Vendors       []domain.VendorSummary `json:"vendors"`
	Unattributed  []string               `json:"unattributed_items,omitempty"`
	UpdatedAt     *time.Time             `json:"updated_at,omitempty"`
}

// BulkAddResponse reports which favorites could not be added.
type BulkAddResponse struct {
	Cart     CartResponse `json:"cart"`
	Rejected []string     `json:"rejected"`
}

func newCartResponse(view service.CartView) CartResponse {
	resp := CartResponse{
		Items:         view.Ledger.Items,
		CouponCode:    view.Totals.CouponCode,
		ItemCount:     view.Totals.ItemCount,
		Subtotal:      view.Totals.Subtotal,
		ShippingTotal: view.Totals.ShippingTotal,
		DiscountTotal: view.Totals.DiscountTotal,
		Total:         view.Totals.Total,
		Vendors:       view.Vendors,
		Unattributed:  view.Totals.Unattributed,
	}
	if !view.Ledger.UpdatedAt.IsZero() {
		ts := view.Ledger.UpdatedAt
		resp.UpdatedAt = &ts
	}
	return resp
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetCart(r.Context(), profileIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, view, err)
}

// GetVendors handles GET /api/v1/cart/vendors
func (h *CartHandler) GetVendors(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetCart(r.Context(), profileIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view.Vendors)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.AddItemInput{Product: req.Product.toDomain(), Quantity: req.Quantity}
	if req.Variant != nil {
		input.Variant = &domain.ProductVariant{
			ID:            req.Variant.ID,
			Price:         req.Variant.Price,
			OriginalPrice: req.Variant.OriginalPrice,
			Stock:         req.Variant.Stock,
		}
	}

	view, err := h.service.AddItem(r.Context(), profileIDFromContext(r.Context()), input)
	h.respond(w, r, http.StatusCreated, view, err)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), profileIDFromContext(r.Context()), chi.URLParam(r, "itemId"), *req.Quantity)
	h.respond(w, r, http.StatusOK, view, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveItem(r.Context(), profileIDFromContext(r.Context()), chi.URLParam(r, "itemId"))
	h.respond(w, r, http.StatusOK, view, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ClearCart(r.Context(), profileIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, view, err)
}

// ApplyCoupon handles PUT /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.ApplyCoupon(r.Context(), profileIDFromContext(r.Context()), req.Code)
	h.respond(w, r, http.StatusOK, view, err)
}

// RemoveCoupon handles DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveCoupon(r.Context(), profileIDFromContext(r.Context()))
	h.respond(w, r, http.StatusOK, view, err)
}

// AddAll handles POST /api/v1/cart/bulk
func (h *CartHandler) AddAll(w http.ResponseWriter, r *http.Request) {
	var req BulkAddRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products := make([]domain.Product, len(req.Products))
	for i, p := range req.Products {
		products[i] = p.toDomain()
	}

	view, rejected, err := h.service.AddAll(r.Context(), profileIDFromContext(r.Context()), products)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if rejected == nil {
		rejected = []string{}
	}
	httputil.WriteData(w, http.StatusOK, BulkAddResponse{Cart: newCartResponse(view), Rejected: rejected})
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, status int, view service.CartView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, status, newCartResponse(view))
}
