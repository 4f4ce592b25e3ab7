package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/greenledger/fiscal-backend-go/internal/config"
	"github.com/greenledger/fiscal-backend-go/internal/domain/report"
	appHTTP "github.com/greenledger/fiscal-backend-go/internal/handler/http"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/jwt"
	"github.com/greenledger/fiscal-backend-go/internal/repository/postgresql"
	payrollService "github.com/greenledger/fiscal-backend-go/internal/service/payroll"
	reportService "github.com/greenledger/fiscal-backend-go/internal/service/report"
	sequenceService "github.com/greenledger/fiscal-backend-go/internal/service/sequence"
	transactionService "github.com/greenledger/fiscal-backend-go/internal/service/transaction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, cfg.Database.QueryTimeout)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	payrollRepo := postgresql.NewPayrollRepository(db)
	transactionRepo := postgresql.NewTransactionRepository(db)
	sequenceRepo := postgresql.NewSequenceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	complianceCfg := report.DefaultComplianceConfig()
	complianceCfg.RegistrationWeight = cfg.Compliance.RegistrationWeight
	complianceCfg.FilingWeight = cfg.Compliance.FilingWeight
	complianceCfg.PaymentWeight = cfg.Compliance.PaymentWeight
	complianceCfg.ReturnDueDay = cfg.Compliance.ReturnDueDay

	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return postgresql.WithTransaction(ctx, db, fn)
	}

	sequenceSvc := sequenceService.NewSequenceService(sequenceRepo)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, sequenceSvc, nil, inTx)
	transactionSvc := transactionService.NewTransactionService(transactionRepo, sequenceSvc, nil, inTx)
	reportSvc := reportService.NewReportService(transactionRepo, payrollRepo, employeeRepo, companyRepo, nil, complianceCfg)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	transactionHandler := appHTTP.NewTransactionHandler(transactionSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(jwtService, payrollHandler, transactionHandler, reportHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
