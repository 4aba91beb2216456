package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
)

var cartCommands = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_commands_total",
		Help: "Cart commands applied, by command and save outcome",
	},
	[]string{"command", "outcome"},
)

// LedgerStore is the persistence the service needs. persistence.Adapter
// implements it.
type LedgerStore interface {
	Load(ctx context.Context, profileID string) domain.Ledger
	Save(ctx context.Context, profileID string, ledger domain.Ledger) error
	Clear(ctx context.Context, profileID string) error
}

// EventPublisher publishes cart events. event.Producer implements it.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, profileID string, ledger domain.Ledger, totals domain.Totals) error
	PublishCartCleared(ctx context.Context, profileID string) error
}

// CartView is a ledger together with everything derived from it.
type CartView struct {
	Ledger  domain.Ledger          `json:"cart"`
	Totals  domain.Totals          `json:"totals"`
	Vendors []domain.VendorSummary `json:"vendors"`
}

// AddItemInput is a single add-to-cart request.
type AddItemInput struct {
	Product  domain.Product         `json:"product" validate:"required"`
	Variant  *domain.ProductVariant `json:"variant,omitempty"`
	Quantity int                    `json:"quantity" validate:"gte=0"`
}

// CartService applies cart commands for a profile and persists the result.
// It holds no cart state of its own between calls.
type CartService struct {
	store  LedgerStore
	events EventPublisher
	policy domain.PricingPolicy
	logger *slog.Logger
	locks  stripedLocks
	now    func() time.Time
}

// NewCartService creates a cart service.
func NewCartService(store LedgerStore, events EventPublisher, policy domain.PricingPolicy, logger *slog.Logger) *CartService {
	return &CartService{
		store:  store,
		events: events,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// GetCart returns the current cart of a profile. A profile with nothing
// stored has an empty cart.
func (s *CartService) GetCart(ctx context.Context, profileID string) (CartView, error) {
	if profileID == "" {
		return CartView{}, apperrors.InvalidInput("profile id is required")
	}
	return s.View(s.store.Load(ctx, profileID)), nil
}

// AddItem adds a product to the cart.
func (s *CartService) AddItem(ctx context.Context, profileID string, input AddItemInput) (CartView, error) {
	if err := validateProduct(input.Product); err != nil {
		return CartView{}, err
	}
	return s.Dispatch(ctx, profileID, domain.AddItem{
		Product:  input.Product,
		Variant:  input.Variant,
		Quantity: input.Quantity,
	})
}

// RemoveItem deletes a line item. Unknown ids leave the cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, profileID, itemID string) (CartView, error) {
	return s.Dispatch(ctx, profileID, domain.RemoveItem{ItemID: itemID})
}

// UpdateQuantity sets a line item's quantity; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, profileID, itemID string, quantity int) (CartView, error) {
	return s.Dispatch(ctx, profileID, domain.UpdateQuantity{ItemID: itemID, Quantity: quantity})
}

// ClearCart empties the cart and removes it from storage.
func (s *CartService) ClearCart(ctx context.Context, profileID string) (CartView, error) {
	return s.Dispatch(ctx, profileID, domain.ClearCart{})
}

// ApplyCoupon makes code the active coupon.
func (s *CartService) ApplyCoupon(ctx context.Context, profileID, code string) (CartView, error) {
	return s.Dispatch(ctx, profileID, domain.ApplyCoupon{Code: code})
}

// RemoveCoupon clears the active coupon.
func (s *CartService) RemoveCoupon(ctx context.Context, profileID string) (CartView, error) {
	return s.Dispatch(ctx, profileID, domain.RemoveCoupon{})
}

// AddAll adds every product with quantity 1, in order, as one save. Products
// without an id or vendor are skipped and their ids returned as rejected.
// When nothing is accepted the cart is returned untouched.
func (s *CartService) AddAll(ctx context.Context, profileID string, products []domain.Product) (CartView, []string, error) {
	var (
		cmds     []domain.Command
		rejected []string
	)
	for _, p := range products {
		if validateProduct(p) != nil {
			rejected = append(rejected, p.ID)
			continue
		}
		cmds = append(cmds, domain.AddItem{Product: p, Quantity: 1})
	}
	if len(cmds) == 0 {
		view, err := s.GetCart(ctx, profileID)
		return view, rejected, err
	}

	view, err := s.Dispatch(ctx, profileID, cmds...)
	return view, rejected, err
}

// Dispatch applies cmds in order to the profile's ledger, saves the result and
// publishes it. A failed save is logged and the new state is still returned,
// so a storage outage degrades persistence rather than blocking the shopper.
func (s *CartService) Dispatch(ctx context.Context, profileID string, cmds ...domain.Command) (CartView, error) {
	if profileID == "" {
		return CartView{}, apperrors.InvalidInput("profile id is required")
	}

	unlock := s.locks.lock(profileID)
	defer unlock()

	now := s.now().UTC()
	ledger := s.store.Load(ctx, profileID)
	cleared := false
	for _, cmd := range cmds {
		if add, ok := cmd.(domain.AddItem); ok && add.At.IsZero() {
			add.At = now
			cmd = add
		}
		ledger = domain.Apply(ledger, cmd)
		if _, ok := cmd.(domain.ClearCart); ok {
			cleared = true
		}
	}
	ledger.UpdatedAt = now

	view, _ := s.commit(ctx, profileID, ledger, cleared, commandName(cmds))
	return view, nil
}

// Load returns the stored ledger of a profile.
func (s *CartService) Load(ctx context.Context, profileID string) domain.Ledger {
	return s.store.Load(ctx, profileID)
}

// Drain subtracts items that were handed to the server cart from the
// profile's current ledger. Items added, or quantities raised, after the
// snapshot was taken stay in the cart. Once no items remain the cart is
// cleared entirely, coupon included. Unlike Dispatch, a failed save is
// returned.
func (s *CartService) Drain(ctx context.Context, profileID string, drained []domain.LineItem) error {
	if profileID == "" {
		return apperrors.InvalidInput("profile id is required")
	}

	unlock := s.locks.lock(profileID)
	defer unlock()

	ledger := s.store.Load(ctx, profileID)
	for _, item := range drained {
		i := ledger.Find(item.ID)
		if i < 0 {
			continue
		}
		ledger = domain.Apply(ledger, domain.UpdateQuantity{
			ItemID:   item.ID,
			Quantity: ledger.Items[i].Quantity - item.Quantity,
		})
	}

	cleared := len(ledger.Items) == 0
	if cleared {
		ledger = domain.Apply(ledger, domain.ClearCart{})
	}
	ledger.UpdatedAt = s.now().UTC()

	_, err := s.commit(ctx, profileID, ledger, cleared, "drain")
	return err
}

// commit persists ledger and publishes the matching event. The caller holds
// the profile lock.
func (s *CartService) commit(ctx context.Context, profileID string, ledger domain.Ledger, cleared bool, name string) (CartView, error) {
	log := logger.WithContext(ctx, s.logger)
	view := s.View(ledger)
	removed := cleared && ledger.IsEmpty()

	var saveErr error
	if removed {
		saveErr = s.store.Clear(ctx, profileID)
	} else {
		saveErr = s.store.Save(ctx, profileID, ledger)
	}
	if saveErr != nil {
		cartCommands.WithLabelValues(name, "save_failed").Inc()
		log.ErrorContext(ctx, "failed to persist cart, serving unsaved state",
			slog.String("command", name),
			slog.String("error", saveErr.Error()),
		)
	} else {
		cartCommands.WithLabelValues(name, "saved").Inc()
	}

	var pubErr error
	if removed {
		pubErr = s.events.PublishCartCleared(ctx, profileID)
	} else {
		pubErr = s.events.PublishCartUpdated(ctx, profileID, ledger, view.Totals)
	}
	if pubErr != nil {
		log.WarnContext(ctx, "failed to publish cart event", slog.String("error", pubErr.Error()))
	}

	log.InfoContext(ctx, "cart updated",
		slog.String("command", name),
		slog.Int("item_count", view.Totals.ItemCount),
		slog.String("total", view.Totals.Total.StringFixed(2)),
	)
	return view, saveErr
}

// View derives totals and vendor boxes for a ledger.
func (s *CartService) View(ledger domain.Ledger) CartView {
	if ledger.Items == nil {
		ledger.Items = []domain.LineItem{}
	}
	return CartView{
		Ledger:  ledger,
		Totals:  s.policy.Totals(ledger),
		Vendors: s.policy.VendorBreakdown(ledger),
	}
}

func validateProduct(p domain.Product) error {
	if p.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if p.VendorID == "" {
		return apperrors.InvalidInput("product " + p.ID + " has no vendor")
	}
	return nil
}

func commandName(cmds []domain.Command) string {
	if len(cmds) != 1 {
		return "batch"
	}
	switch cmds[0].(type) {
	case domain.AddItem:
		return "add_item"
	case domain.RemoveItem:
		return "remove_item"
	case domain.UpdateQuantity:
		return "update_quantity"
	case domain.ClearCart:
		return "clear_cart"
	case domain.ApplyCoupon:
		return "apply_coupon"
	case domain.RemoveCoupon:
		return "remove_coupon"
	default:
		return "unknown"
	}
}
