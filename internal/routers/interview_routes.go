package routers

import (
	"intervuai/backend/internal/handlers"
	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// InterviewRoutes registers the interview API. save-live-results is called by
// the voice agent and authenticates with the shared agent key instead of a bearer token.
func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, tokens middleware.TokenParser, agentKey string) {
	router.Route("/api/interview", func(r chi.Router) {
		r.With(
			middleware.RequireAgentKey(agentKey),
			middleware.ValidateRequest[*models.SaveLiveResultsRequest](),
		).Post("/{id}/save-live-results", interviewHandler.SaveLiveResultsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))
			r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)
			r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start-live", interviewHandler.StartLiveHandler)
			r.Post("/{id}/process-audio", interviewHandler.ProcessAudioHandler)
			r.With(middleware.ValidateOptionalRequest[*models.CompleteLiveRequest]()).Post("/{id}/complete-live", interviewHandler.CompleteLiveHandler)
			r.Get("/user/history", interviewHandler.HistoryHandler)
			r.Get("/{id}", interviewHandler.GetHandler)
		})
	})
}
