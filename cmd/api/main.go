package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hrmstack/payroll-engine-go/internal/config"
	"github.com/hrmstack/payroll-engine-go/internal/domain/tax"
	"github.com/hrmstack/payroll-engine-go/internal/fixtures"
	appHTTP "github.com/hrmstack/payroll-engine-go/internal/handler/http"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/database"
	"github.com/hrmstack/payroll-engine-go/internal/pkg/jwt"
	"github.com/hrmstack/payroll-engine-go/internal/repository/postgresql"
	employeeService "github.com/hrmstack/payroll-engine-go/internal/service/employee"
	payrollService "github.com/hrmstack/payroll-engine-go/internal/service/payroll"
	salaryService "github.com/hrmstack/payroll-engine-go/internal/service/salary"
	taxService "github.com/hrmstack/payroll-engine-go/internal/service/tax"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	taxRepo := postgresql.NewTaxRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	salarySvc := salaryService.NewSalaryService(db, salaryRepo, employeeRepo)
	taxSvc := taxService.NewTaxService(taxRepo)
	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		salaryRepo,
		employeeRepo,
		taxSvc,
		payrollService.AssemblyRates{
			OvertimeMultiplier:  cfg.Payroll.OvertimeMultiplier,
			WeeklyHours:         cfg.Payroll.WeeklyHours,
			WorkingDaysPerMonth: cfg.Payroll.WorkingDaysPerMonth,
		},
		cfg.Payroll.BulkConcurrency,
	)

	if err := seedDefaultSlabTable(context.Background(), taxSvc, taxRepo); err != nil {
		fmt.Println("Error seeding default tax slab table:", err)
		return
	}

	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	salaryHandler := appHTTP.NewSalaryHandler(salarySvc)
	taxHandler := appHTTP.NewTaxHandler(taxSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		JWTService,
		employeeHandler,
		salaryHandler,
		taxHandler,
		payrollHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

// seedDefaultSlabTable installs the bundled progressive slab table on a
// fresh database so payslip generation works out of the box.
func seedDefaultSlabTable(ctx context.Context, taxSvc tax.TaxService, taxRepo tax.TaxRepository) error {
	_, err := taxSvc.ActiveTable(ctx, time.Now())
	if err == nil {
		return nil
	}
	if !errors.Is(err, tax.ErrNoActiveTable) {
		return err
	}

	table := fixtures.GetDefaultSlabTable()
	table.EffectiveFrom = time.Now().Truncate(24 * time.Hour)
	return taxRepo.CreateSlabTable(ctx, &table)
}
