package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/user"
	"github.com/teranga-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/teranga-hr/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(jwtService jwt.Service, authHandler AuthHandler, payRunHandler PayRunHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/pay-runs", func(r chi.Router) {
				r.Get("/", payRunHandler.List)
				r.Get("/overlapping", payRunHandler.ListOverlapping)
				r.Get("/{id}", payRunHandler.Get)
				r.Get("/{id}/payslips", payRunHandler.ListPayslips)

				// Lifecycle mutations are admin/HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleAdmin, user.RoleHR))
					r.Post("/", payRunHandler.Create)
					r.Put("/{id}", payRunHandler.Update)
					r.Delete("/{id}", payRunHandler.Delete)
					r.Post("/{id}/generate", payRunHandler.GeneratePayslips)
					r.Post("/{id}/approve", payRunHandler.Approve)
					r.Post("/{id}/close", payRunHandler.Close)
					r.Post("/{id}/recalculate", payRunHandler.RecalculateTotals)
				})
			})

			r.Route("/payslips", func(r chi.Router) {
				r.Get("/{id}", payRunHandler.GetPayslip)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RoleAdmin, user.RoleHR))
					r.Post("/{id}/payments", payRunHandler.RecordPayment)
				})
			})
		})
	})
	return r
}
