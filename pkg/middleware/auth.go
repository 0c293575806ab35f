package middleware

import (
	"net/http"
	"strings"

	"car-rental/internal/data/repository"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthSession middleware untuk validasi session token UUID
func AuthSession(sessionRepo repository.SessionRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			// Find valid session
			session, err := sessionRepo.FindValidSession(r.Context(), token)
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if session == nil {
				logger.Warn("Invalid or expired session", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			// Set context dengan user info DAN token
			ctx := utils.SetUserContext(r.Context(), session.UserID)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// CallbackToken guards the checkout return URLs. When the signer is disabled
// every request passes, otherwise ?token= must be signed for purpose and for
// the rental in the {param} path segment.
func CallbackToken(signer *utils.CallbackSigner, purpose, param string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !signer.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			rentalID, ok := utils.ParseID(chi.URLParam(r, param))
			if !ok {
				utils.ResponseBadRequest(w, "Invalid rental ID", nil)
				return
			}

			if err := signer.Verify(r.URL.Query().Get("token"), rentalID, purpose); err != nil {
				logger.Warn("Rejected checkout callback",
					zap.Int64("rental_id", rentalID),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired callback token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
