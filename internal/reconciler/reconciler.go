package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/commerce"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/event"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/tracing"
)

var (
	reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_reconciliations_total",
			Help: "Finished login reconciliations, by terminal state",
		},
		[]string{"state"},
	)
	reconciledItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_reconciled_items_total",
			Help: "Line items processed during reconciliation, by outcome",
		},
		[]string{"outcome"},
	)
)

// State is the progress of a profile's reconciliation.
type State string

const (
	StateIdle            State = "idle"
	StateSyncing         State = "syncing"
	StateDone            State = "done"
	StatePartiallyFailed State = "partially_failed"
)

// DefaultItemTimeout bounds each merge request.
const DefaultItemTimeout = 5 * time.Second

// maxTrackedProfiles caps the status table. When full, some finished entry is
// evicted to make room.
const maxTrackedProfiles = 10_000

// Session identifies the authenticated account the anonymous cart is merged into.
type Session struct {
	UserID string
	Token  string
}

// Result is the outcome of one reconciliation.
type Result struct {
	State      State     `json:"state"`
	Synced     int       `json:"synced"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors,omitempty"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	// Err aggregates every per-item merge failure.
	Err error `json:"-"`
}

// Cart is the local cart the reconciler reads and drains.
// service.CartService implements it.
type Cart interface {
	Load(ctx context.Context, profileID string) domain.Ledger
	// Drain removes the given items from the profile's cart under the same
	// lock as every other cart command.
	Drain(ctx context.Context, profileID string, items []domain.LineItem) error
}

// CartMerger pushes a single item into the server-side cart.
type CartMerger interface {
	AddToServerCart(ctx context.Context, token string, item commerce.MergeItem) error
}

// EventPublisher announces finished reconciliations.
type EventPublisher interface {
	PublishCartReconciled(ctx context.Context, data event.CartReconciledData) error
}

// Reconciler moves an anonymous cart into the authenticated server cart
// after login. Items are merged one at a time; a failing item never stops the
// rest, and every item of the snapshot is drained from the local cart
// afterwards whatever happened. Items added while the merge runs stay local.
type Reconciler struct {
	cart        Cart
	merger      CartMerger
	events      EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
	itemTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	status map[string]Result
}

// New creates a Reconciler. A non-positive itemTimeout uses DefaultItemTimeout.
func New(cart Cart, merger CartMerger, events EventPublisher, itemTimeout time.Duration, logger *slog.Logger) *Reconciler {
	if itemTimeout <= 0 {
		itemTimeout = DefaultItemTimeout
	}
	return &Reconciler{
		cart:        cart,
		merger:      merger,
		events:      events,
		logger:      logger,
		tracer:      tracing.Tracer("storefront-cart/reconciler"),
		itemTimeout: itemTimeout,
		now:         time.Now,
		status:      make(map[string]Result),
	}
}

// Status returns the last known reconciliation state of a profile.
func (r *Reconciler) Status(profileID string) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.status[profileID]
	if !ok {
		return Result{State: StateIdle}
	}
	return res
}

func (r *Reconciler) setStatus(profileID string, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.status[profileID]; !ok && len(r.status) >= maxTrackedProfiles {
		for k, v := range r.status {
			if v.State != StateSyncing {
				delete(r.status, k)
				break
			}
		}
	}
	r.status[profileID] = res
}

// Reconcile merges the profile's anonymous cart into the session's server
// cart. It never returns an error: per-item failures are reported in the
// Result.
func (r *Reconciler) Reconcile(ctx context.Context, profileID string, session Session) Result {
	ctx, span := r.tracer.Start(ctx, "reconciler.Reconcile",
		trace.WithAttributes(attribute.String("cart.profile_id", profileID)))
	defer span.End()

	log := logger.WithContext(ctx, r.logger).With(
		slog.String("profile_id", profileID),
		slog.String("user_id", session.UserID),
	)

	res := Result{State: StateSyncing, StartedAt: r.now().UTC()}
	r.setStatus(profileID, res)

	ledger := r.cart.Load(ctx, profileID)
	span.SetAttributes(attribute.Int("cart.items", len(ledger.Items)))

	if len(ledger.Items) == 0 {
		return r.finish(ctx, log, profileID, session, res)
	}

	var errs error
	for _, item := range ledger.Items {
		if !item.HasVendor() {
			res.Skipped++
			reconciledItems.WithLabelValues("skipped").Inc()
			log.WarnContext(ctx, "skipping cart item without vendor", slog.String("item_id", item.ID))
			continue
		}

		if err := r.mergeItem(ctx, session.Token, item); err != nil {
			res.Failed++
			reconciledItems.WithLabelValues("failed").Inc()
			errs = multierr.Append(errs, fmt.Errorf("item %s: %w", item.ID, err))
			log.WarnContext(ctx, "failed to merge cart item",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Synced++
		reconciledItems.WithLabelValues("synced").Inc()
	}

	if err := r.cart.Drain(ctx, profileID, ledger.Items); err != nil {
		log.ErrorContext(ctx, "failed to drain local cart after reconciliation", slog.String("error", err.Error()))
	}

	res.Err = errs
	for _, err := range multierr.Errors(errs) {
		res.Errors = append(res.Errors, err.Error())
	}
	if errs != nil {
		span.RecordError(errs)
		span.SetStatus(codes.Error, "some items failed to merge")
	}
	return r.finish(ctx, log, profileID, session, res)
}

func (r *Reconciler) mergeItem(ctx context.Context, token string, item domain.LineItem) error {
	ctx, cancel := context.WithTimeout(ctx, r.itemTimeout)
	defer cancel()

	return r.merger.AddToServerCart(ctx, token, commerce.MergeItem{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		VariantID: item.VariantID,
		VendorID:  item.VendorID,
	})
}

func (r *Reconciler) finish(ctx context.Context, log *slog.Logger, profileID string, session Session, res Result) Result {
	res.State = StateDone
	if res.Failed > 0 {
		res.State = StatePartiallyFailed
	}
	res.FinishedAt = r.now().UTC()
	r.setStatus(profileID, res)
	reconciliations.WithLabelValues(string(res.State)).Inc()

	if err := r.events.PublishCartReconciled(ctx, event.CartReconciledData{
		ProfileID: profileID,
		UserID:    session.UserID,
		State:     string(res.State),
		Synced:    res.Synced,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
	}); err != nil {
		log.WarnContext(ctx, "failed to publish reconciliation event", slog.String("error", err.Error()))
	}

	log.InfoContext(ctx, "cart reconciliation finished",
		slog.String("state", string(res.State)),
		slog.Int("synced", res.Synced),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
	)
	return res
}
