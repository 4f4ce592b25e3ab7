package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/greenledger/fiscal-backend-go/internal/handler/http/middleware"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	payrollHandler PayrollHandler,
	transactionHandler TransactionHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "fiscal-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payrolls", func(r chi.Router) {
				r.Post("/", payrollHandler.Create)
				r.Get("/", payrollHandler.List)
				r.Get("/{id}", payrollHandler.Get)
				r.Patch("/{id}/earnings", payrollHandler.UpdateEarnings)
				r.Post("/{id}/transition", payrollHandler.Transition)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", transactionHandler.Create)
				r.Get("/", transactionHandler.List)
				r.Get("/{id}", transactionHandler.Get)
				r.Patch("/{id}", transactionHandler.Update)
				r.Post("/{id}/reconcile", transactionHandler.Reconcile)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/summary", reportHandler.PeriodSummary)
				r.Get("/payroll-totals", reportHandler.MonthlyPayrollTotals)
				r.Get("/annual", reportHandler.AnnualTaxReport)
				r.Get("/monthly-return", reportHandler.MonthlyReturn)
				r.Get("/compliance", reportHandler.ComplianceScore)
			})
		})
	})

	return r
}
