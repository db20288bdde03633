package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/jamlabs/reimbursement-service/internal/reimbursement"
	"github.com/jamlabs/reimbursement-service/internal/transport/middleware"
	"github.com/jamlabs/reimbursement-service/internal/transport/swagger"
	"github.com/jamlabs/reimbursement-service/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, userHandler *user.Handler, reimbursementHandler *reimbursement.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if userHandler != nil {
			r.Route("/user", func(ur chi.Router) {
				ur.Post("/", userHandler.CreateUser)
				ur.Get("/", userHandler.GetAllUsers)
				ur.Patch("/{id}", userHandler.SetNotify)
			})
		}

		if reimbursementHandler != nil {
			r.Route("/reimbursement", func(rr chi.Router) {
				rr.Get("/all/{id}", reimbursementHandler.GetAllReimbursements)
				rr.Get("/{id}", reimbursementHandler.GetOwnReimbursements)
				rr.Post("/{id}", reimbursementHandler.SubmitReimbursement)
				rr.Put("/{id}", reimbursementHandler.ChangeStatus)
			})
		}
	})
}
