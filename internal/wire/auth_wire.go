package wire

import (
	"net/http"

	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, auth func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// ==================== PROTECTED ROUTES ====================
	r.With(auth).Post("/logout", authHandler.Logout)
	r.With(auth).Get("/user", authHandler.Me)
}
