package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	pkgkafka "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/kafka"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
)

// Kafka topics for cart events.
const (
	TopicCartUpdated    = "storefront.cart.updated"
	TopicCartCleared    = "storefront.cart.cleared"
	TopicCartReconciled = "storefront.cart.reconciled"
)

const (
	AggregateTypeCart = "cart"
	SourceCartService = "storefront-cart"
)

// Publisher sends an event envelope to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// CartUpdatedData is the payload of cart.updated.
type CartUpdatedData struct {
	ProfileID     string          `json:"profile_id"`
	Items         []ItemData      `json:"items"`
	CouponCode    *string         `json:"coupon_code"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Total         decimal.Decimal `json:"total"`
}

// ItemData is one line item inside cart events.
type ItemData struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	VendorID  string          `json:"vendor_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CartClearedData is the payload of cart.cleared.
type CartClearedData struct {
	ProfileID string `json:"profile_id"`
}

// CartReconciledData is the payload of cart.reconciled.
type CartReconciledData struct {
	ProfileID string `json:"profile_id"`
	UserID    string `json:"user_id"`
	State     string `json:"state"`
	Synced    int    `json:"synced"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// Producer publishes cart domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a cart event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishCartUpdated publishes the full state of a profile's cart after a mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, profileID string, ledger domain.Ledger, totals domain.Totals) error {
	items := make([]ItemData, len(ledger.Items))
	for i, item := range ledger.Items {
		items[i] = ItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			VendorID:  item.VendorID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	data := CartUpdatedData{
		ProfileID:     profileID,
		Items:         items,
		CouponCode:    ledger.CouponCode,
		ItemCount:     totals.ItemCount,
		Subtotal:      totals.Subtotal,
		ShippingTotal: totals.ShippingTotal,
		DiscountTotal: totals.DiscountTotal,
		Total:         totals.Total,
	}
	return p.publish(ctx, TopicCartUpdated, profileID, data)
}

// PublishCartCleared publishes cart.cleared.
func (p *Producer) PublishCartCleared(ctx context.Context, profileID string) error {
	return p.publish(ctx, TopicCartCleared, profileID, CartClearedData{ProfileID: profileID})
}

// PublishCartReconciled publishes the outcome of a login reconciliation.
func (p *Producer) PublishCartReconciled(ctx context.Context, data CartReconciledData) error {
	return p.publish(ctx, TopicCartReconciled, data.ProfileID, data)
}

func (p *Producer) publish(ctx context.Context, topic, profileID string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, profileID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published cart event",
		slog.String("topic", topic),
		slog.String("profile_id", profileID),
	)
	return nil
}
