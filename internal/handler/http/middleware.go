package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/httputil"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/middleware"
)

type contextKey string

const profileIDKey contextKey = "profile_id"

// maxProfileIDLength bounds the header before it is used as a storage key.
const maxProfileIDLength = 128

// ProfileIDFromHeader reads the browser profile id from the X-Session-ID
// header and stores it in the request context. Requests without one are
// rejected with 401.
func ProfileIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pid := strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
		if pid == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: middleware.SessionHeader + " header is required"},
			})
			return
		}
		if len(pid) > maxProfileIDLength {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: middleware.SessionHeader + " header is too long"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), profileIDKey, pid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func profileIDFromContext(ctx context.Context) string {
	pid, _ := ctx.Value(profileIDKey).(string)
	return pid
}

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
