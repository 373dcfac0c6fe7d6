package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hrmstack/payroll-engine-go/internal/handler/http/middleware"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	employeeHandler EmployeeHandler,
	salaryHandler SalaryHandler,
	taxHandler TaxHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
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

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListActive)
				r.Get("/{id}", employeeHandler.GetByID)
				r.Get("/{employeeId}/assignments", salaryHandler.ListEmployeeAssignments)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", employeeHandler.Create)
					r.Put("/{id}", employeeHandler.Update)
				})
			})

			r.Route("/salary-structures", func(r chi.Router) {
				r.Get("/", salaryHandler.ListStructures)
				r.Get("/{id}", salaryHandler.GetStructure)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", salaryHandler.CreateStructure)
					r.Put("/{id}", salaryHandler.UpdateStructure)
					r.Delete("/{id}", salaryHandler.DeleteStructure)
				})
			})

			r.Route("/salary-assignments", func(r chi.Router) {
				r.Get("/{id}", salaryHandler.GetAssignment)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", salaryHandler.AssignStructure)
				})
			})

			r.Route("/tax-slab-tables", func(r chi.Router) {
				r.Get("/", taxHandler.ListSlabTables)
				r.Get("/{id}", taxHandler.GetSlabTable)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", taxHandler.CreateSlabTable)
				})
			})

			r.Route("/payroll-periods", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPeriods)
				r.Get("/{id}", payrollHandler.GetPeriod)
				r.Get("/{id}/inputs", payrollHandler.ListInputs)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", payrollHandler.CreatePeriod)
					r.Post("/{id}/process", payrollHandler.ProcessPeriod)
					r.Post("/{id}/complete", payrollHandler.CompletePeriod)
					r.Post("/{id}/pay", payrollHandler.PayPeriod)
					r.Post("/{id}/cancel", payrollHandler.CancelPeriod)
					r.Put("/{id}/inputs", payrollHandler.UpsertInput)
					r.Post("/{id}/payslips", payrollHandler.GeneratePayslip)
					r.Post("/{id}/payslips/bulk", payrollHandler.BulkGenerate)
				})
			})

			r.Route("/payslips", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPayslips)
				r.Get("/{id}", payrollHandler.GetPayslip)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", payrollHandler.ApprovePayslip)
					r.Post("/{id}/pay", payrollHandler.MarkPayslipPaid)
					r.Post("/{id}/void", payrollHandler.VoidPayslip)
				})
			})
		})
	})
	return r
}
