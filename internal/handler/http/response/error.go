package response

import (
	"errors"
	"net/http"

	"github.com/greenledger/fiscal-backend-go/internal/domain/company"
	"github.com/greenledger/fiscal-backend-go/internal/domain/employee"
	"github.com/greenledger/fiscal-backend-go/internal/domain/payroll"
	"github.com/greenledger/fiscal-backend-go/internal/domain/report"
	"github.com/greenledger/fiscal-backend-go/internal/domain/sequence"
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/greenledger/fiscal-backend-go/internal/domain/transaction"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Tax calculation errors
	case errors.Is(err, tax.ErrInvalidInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, tax.ErrRulesNotFound):
		BadRequest(w, "No tax rules for the requested year", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrRecordAlreadyExists):
		Conflict(w, "Payroll record already exists for this employee and period")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, "Status transition not allowed")
	case errors.Is(err, payroll.ErrRecordImmutable):
		Conflict(w, "Paid payroll records cannot be modified")
	case errors.Is(err, payroll.ErrVersionConflict):
		Conflict(w, "Record changed concurrently, retry the operation")
	case errors.Is(err, payroll.ErrApproverRequired):
		BadRequest(w, "Approver identity is required", nil)
	case errors.Is(err, payroll.ErrPayDateRequired):
		BadRequest(w, "Pay date is required to mark a record paid", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid pay period", nil)
	case errors.Is(err, payroll.ErrInvalidCadence):
		BadRequest(w, "Invalid pay cadence", nil)

	// Transaction domain errors
	case errors.Is(err, transaction.ErrRecordNotFound):
		NotFound(w, "Transaction record not found")
	case errors.Is(err, transaction.ErrInvalidType):
		BadRequest(w, "Unknown transaction type", nil)
	case errors.Is(err, transaction.ErrInvalidAmount):
		BadRequest(w, "Transaction amount must not be negative", nil)
	case errors.Is(err, transaction.ErrReconciled):
		Conflict(w, "Reconciled transactions cannot be modified")

	// Sequence errors
	case errors.Is(err, sequence.ErrNumberConflict):
		Conflict(w, "Record number already issued, retry the operation")
	case errors.Is(err, sequence.ErrInvalidKey):
		BadRequest(w, "Invalid sequence key", nil)

	// Report errors
	case errors.Is(err, report.ErrDataUnavailable):
		ServiceUnavailable(w, "Underlying records unavailable, try again later")
	case errors.Is(err, report.ErrInvalidPeriod):
		BadRequest(w, "Invalid reporting period", nil)

	// Master data errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Store timeouts
	case errors.Is(err, database.ErrUnavailable):
		ServiceUnavailable(w, "Record store unavailable, try again later")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
