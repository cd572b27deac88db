package api

import (
	_ "virdispay/docs"
	"virdispay/internal/conversion/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(conversionHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Route("/api/v1/conversion", func(r chi.Router) {
		r.Use(handler.MerchantScope)

		r.Get("/settings", conversionHandler.GetSettings)
		r.Post("/settings", conversionHandler.SaveSettings)
		r.Put("/settings/toggle", conversionHandler.ToggleAutoConvert)
		r.Delete("/settings", conversionHandler.DeleteSettings)

		r.Post("/convert/{paymentId}", conversionHandler.ConvertPayment)
		r.Post("/estimate", conversionHandler.EstimateConversion)

		r.Get("/history", conversionHandler.GetHistory)
		r.Get("/stats", conversionHandler.GetStats)
		r.Get("/rates", conversionHandler.GetRates)
	})
	return router
}
