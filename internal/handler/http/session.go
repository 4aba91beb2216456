package http

import (
	"log/slog"
	"net/http"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/auth"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/commerce"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/reconciler"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/httputil"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/validator"
)

// SessionHandler serves sign-in and the cart reconciliation status that
// follows it.
type SessionHandler struct {
	auth       *auth.Service
	reconciler *reconciler.Reconciler
	logger     *slog.Logger
}

// NewSessionHandler creates a session HTTP handler.
func NewSessionHandler(authService *auth.Service, rec *reconciler.Reconciler, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{auth: authService, reconciler: rec, logger: logger}
}

// RestoreRequest is the body of POST /api/v1/session/restore.
type RestoreRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionResponse is returned by every successful authentication. The
// anonymous cart is merged in the background; poll the reconciliation
// endpoint for its outcome.
type SessionResponse struct {
	UserID         string           `json:"user_id"`
	Token          string           `json:"token"`
	Reconciliation reconciler.State `json:"reconciliation"`
}

// Login handles POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req commerce.Credentials
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.auth.Login(r.Context(), profileIDFromContext(r.Context()), req)
	h.respond(w, r, session, err)
}

// Register handles POST /api/v1/session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req commerce.Registration
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.auth.Register(r.Context(), profileIDFromContext(r.Context()), req)
	h.respond(w, r, session, err)
}

// Restore handles POST /api/v1/session/restore
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.auth.Restore(r.Context(), profileIDFromContext(r.Context()), req.Token)
	h.respond(w, r, session, err)
}

// Reconciliation handles GET /api/v1/session/reconciliation
func (h *SessionHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.reconciler.Status(profileIDFromContext(r.Context())))
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, session commerce.Session, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, SessionResponse{
		UserID:         session.UserID,
		Token:          session.Token,
		Reconciliation: h.reconciler.Status(profileIDFromContext(r.Context())).State,
	})
}
