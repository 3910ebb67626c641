package routers

import (
	"intervuai/backend/internal/handlers"
	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler, tokens middleware.TokenParser) {
	router.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/register", authHandler.RegisterHandler)
		r.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/login", authHandler.LoginHandler)
		r.With(middleware.ValidateRequest[*models.GoogleLoginRequest]()).Post("/google", authHandler.GoogleHandler)
		r.With(middleware.ValidateRequest[*models.SendOTPRequest]()).Post("/send-otp", authHandler.SendOTPHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))
			r.Get("/me", authHandler.MeHandler)
			r.Post("/refresh", authHandler.RefreshHandler)
		})
	})
}
