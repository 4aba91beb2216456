package reconciler

import (
	"context"
	"log/slog"
	"sync"
)

// Background runs reconciliations off the request path. It is the session
// listener handed to the authentication service.
type Background struct {
	reconciler *Reconciler
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewBackground wraps r for asynchronous use.
func NewBackground(r *Reconciler, logger *slog.Logger) *Background {
	return &Background{reconciler: r, logger: logger}
}

// OnAuthenticated starts reconciling profileID into the given account and
// returns immediately. The run outlives ctx's cancellation but keeps its
// values, so logs stay correlated with the login request.
func (b *Background) OnAuthenticated(ctx context.Context, profileID, userID, token string) {
	detached := context.WithoutCancel(ctx)

	b.reconciler.setStatus(profileID, Result{State: StateSyncing, StartedAt: b.reconciler.now().UTC()})

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				b.logger.ErrorContext(detached, "reconciliation panicked",
					slog.String("profile_id", profileID),
					slog.Any("panic", rec),
				)
			}
		}()
		b.reconciler.Reconcile(detached, profileID, Session{UserID: userID, Token: token})
	}()
}

// Wait blocks until every started reconciliation has finished.
func (b *Background) Wait() {
	b.wg.Wait()
}
