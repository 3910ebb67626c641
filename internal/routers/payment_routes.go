package routers

import (
	"intervuai/backend/internal/handlers"
	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"

	"github.com/go-chi/chi/v5"
)

func PaymentRoutes(router *chi.Mux, paymentHandler *handlers.PaymentHandler, tokens middleware.TokenParser) {
	router.Route("/api/payment", func(r chi.Router) {
		r.Get("/plans", paymentHandler.PlansHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))
			r.With(middleware.ValidateRequest[*models.CreateOrderRequest]()).Post("/create-order", paymentHandler.CreateOrderHandler)
			r.With(middleware.ValidateRequest[*models.VerifyPaymentRequest]()).Post("/verify", paymentHandler.VerifyHandler)
			r.Get("/history", paymentHandler.HistoryHandler)
		})
	})
}
