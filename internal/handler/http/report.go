package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/handler/http/middleware"
	"github.com/greenledger/fiscal-backend-go/internal/handler/http/response"
	reportService "github.com/greenledger/fiscal-backend-go/internal/service/report"
)

type ReportHandler interface {
	PeriodSummary(w http.ResponseWriter, r *http.Request)
	MonthlyPayrollTotals(w http.ResponseWriter, r *http.Request)
	AnnualTaxReport(w http.ResponseWriter, r *http.Request)
	MonthlyReturn(w http.ResponseWriter, r *http.Request)
	ComplianceScore(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService reportService.Service
}

func NewReportHandler(svc reportService.Service) ReportHandler {
	return &reportHandlerImpl{reportService: svc}
}

func (h *reportHandlerImpl) PeriodSummary(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		response.BadRequest(w, "start and end are required", nil)
		return
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		response.BadRequest(w, "start must be YYYY-MM-DD", nil)
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		response.BadRequest(w, "end must be YYYY-MM-DD", nil)
		return
	}
	// The end date is inclusive.
	end = end.Add(24*time.Hour - time.Second)

	result, err := h.reportService.AggregatePeriod(r.Context(), middleware.CompanyID(r), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) MonthlyPayrollTotals(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.MonthlyPayrollTotals(r.Context(), middleware.CompanyID(r), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) AnnualTaxReport(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GenerateAnnualTaxReport(r.Context(), middleware.CompanyID(r), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) MonthlyReturn(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	monthStr := r.URL.Query().Get("month")
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(w, "Invalid month", nil)
		return
	}

	result, err := h.reportService.GenerateMonthlyReturn(r.Context(), middleware.CompanyID(r), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) ComplianceScore(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.ComplianceScore(r.Context(), middleware.CompanyID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearStr := r.URL.Query().Get("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 {
		response.BadRequest(w, "Invalid year", nil)
		return 0, false
	}
	return year, true
}
