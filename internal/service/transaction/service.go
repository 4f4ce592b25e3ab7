package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/domain/sequence"
	"github.com/greenledger/fiscal-backend-go/internal/domain/tax"
	"github.com/greenledger/fiscal-backend-go/internal/domain/transaction"
	"github.com/greenledger/fiscal-backend-go/internal/fixtures"
	"github.com/greenledger/fiscal-backend-go/internal/pkg/database"
	sequenceService "github.com/greenledger/fiscal-backend-go/internal/service/sequence"
	taxService "github.com/greenledger/fiscal-backend-go/internal/service/tax"
	"github.com/shopspring/decimal"
)

// RulesProvider resolves the tax year rules used for the default consumption
// rate when a request does not carry one.
type RulesProvider func(year int) (tax.TaxYearRules, error)

// Service creates and reads transaction records. Tax amounts are derived,
// reconciled records are immutable.
type Service interface {
	Create(ctx context.Context, companyID string, req transaction.CreateRecordRequest) (transaction.RecordResponse, error)
	Get(ctx context.Context, companyID, id string) (transaction.RecordResponse, error)
	List(ctx context.Context, companyID string, filter transaction.Filter) (transaction.ListRecordResponse, error)
	Update(ctx context.Context, companyID string, req transaction.UpdateRecordRequest) (transaction.RecordResponse, error)
	Reconcile(ctx context.Context, companyID, id string) (transaction.RecordResponse, error)
}

type ServiceImpl struct {
	transactionRepo transaction.Repository
	sequenceSvc     sequenceService.Service
	rulesFor        RulesProvider
	inTx            database.TxRunner
}

func NewTransactionService(transactionRepo transaction.Repository, sequenceSvc sequenceService.Service, rulesFor RulesProvider, inTx database.TxRunner) Service {
	if rulesFor == nil {
		rulesFor = fixtures.RulesForYear
	}
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &ServiceImpl{
		transactionRepo: transactionRepo,
		sequenceSvc:     sequenceSvc,
		rulesFor:        rulesFor,
		inTx:            inTx,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, companyID string, req transaction.CreateRecordRequest) (transaction.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return transaction.RecordResponse{}, err
	}
	if req.Amount.IsNegative() {
		return transaction.RecordResponse{}, transaction.ErrInvalidAmount
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	rate := decimal.Zero
	if req.IsTaxable {
		if req.TaxRate != nil {
			rate = *req.TaxRate
		} else {
			rules, err := s.rulesFor(date.Year())
			if err != nil {
				return transaction.RecordResponse{}, err
			}
			rate = rules.ConsumptionRate
		}
	}

	taxAmount, err := taxService.ComputeConsumptionTax(req.Amount, req.IsTaxable, rate)
	if err != nil {
		return transaction.RecordResponse{}, err
	}

	record := transaction.Record{
		CompanyID: companyID,
		Type:      transaction.Type(req.Type),
		Amount:    req.Amount,
		Tax: transaction.TaxInfo{
			IsTaxable: req.IsTaxable,
			Rate:      rate,
			Amount:    taxAmount,
		},
		Date:        date,
		Description: req.Description,
	}

	// Same transaction for the number and the insert, so a failed insert
	// cannot burn an issued ordinal.
	var created transaction.Record
	err = s.inTx(ctx, func(ctx context.Context) error {
		periodKey := date.Format("2006-01")
		number, err := s.sequenceSvc.NextNumber(ctx, companyID, sequence.KindTransaction, periodKey, sequence.Format{Prefix: "TXN"})
		if err != nil {
			return fmt.Errorf("failed to assign transaction number: %w", err)
		}
		record.Number = number

		created, err = s.transactionRepo.Create(ctx, record)
		return err
	})
	if err != nil {
		return transaction.RecordResponse{}, err
	}

	return mapToRecordResponse(created), nil
}

func (s *ServiceImpl) Get(ctx context.Context, companyID, id string) (transaction.RecordResponse, error) {
	record, err := s.transactionRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return transaction.RecordResponse{}, err
	}
	return mapToRecordResponse(record), nil
}

func (s *ServiceImpl) List(ctx context.Context, companyID string, filter transaction.Filter) (transaction.ListRecordResponse, error) {
	records, totalCount, err := s.transactionRepo.List(ctx, companyID, filter)
	if err != nil {
		return transaction.ListRecordResponse{}, err
	}

	result := make([]transaction.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}

	return transaction.ListRecordResponse{
		Data:       result,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *ServiceImpl) Update(ctx context.Context, companyID string, req transaction.UpdateRecordRequest) (transaction.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return transaction.RecordResponse{}, err
	}

	record, err := s.transactionRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return transaction.RecordResponse{}, err
	}
	if record.Reconciled {
		return transaction.RecordResponse{}, transaction.ErrReconciled
	}

	if req.Type != nil {
		record.Type = transaction.Type(*req.Type)
	}
	if req.Amount != nil {
		record.Amount = *req.Amount
	}
	if req.IsTaxable != nil {
		record.Tax.IsTaxable = *req.IsTaxable
	}
	if req.TaxRate != nil {
		record.Tax.Rate = *req.TaxRate
	}
	if req.Date != nil {
		date, _ := time.Parse("2006-01-02", *req.Date)
		record.Date = date
	}
	if req.Description != nil {
		record.Description = *req.Description
	}

	if record.Tax.IsTaxable && record.Tax.Rate.IsZero() {
		rules, err := s.rulesFor(record.Date.Year())
		if err != nil {
			return transaction.RecordResponse{}, err
		}
		record.Tax.Rate = rules.ConsumptionRate
	}

	// The tax amount is always re-derived; stored amounts never drift from
	// the inputs they were computed from.
	taxAmount, err := taxService.ComputeConsumptionTax(record.Amount, record.Tax.IsTaxable, record.Tax.Rate)
	if err != nil {
		return transaction.RecordResponse{}, err
	}
	record.Tax.Amount = taxAmount
	if !record.Tax.IsTaxable {
		record.Tax.Rate = decimal.Zero
	}

	updated, err := s.transactionRepo.Update(ctx, record)
	if err != nil {
		return transaction.RecordResponse{}, err
	}

	return mapToRecordResponse(updated), nil
}

func (s *ServiceImpl) Reconcile(ctx context.Context, companyID, id string) (transaction.RecordResponse, error) {
	record, err := s.transactionRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return transaction.RecordResponse{}, err
	}
	if record.Reconciled {
		return transaction.RecordResponse{}, transaction.ErrReconciled
	}

	if err := s.transactionRepo.MarkReconciled(ctx, id, companyID); err != nil {
		return transaction.RecordResponse{}, err
	}
	record.Reconciled = true

	return mapToRecordResponse(record), nil
}

func mapToRecordResponse(r transaction.Record) transaction.RecordResponse {
	return transaction.RecordResponse{
		ID:          r.ID,
		Number:      r.Number,
		Type:        string(r.Type),
		Amount:      r.Amount,
		IsTaxable:   r.Tax.IsTaxable,
		TaxRate:     r.Tax.Rate,
		TaxAmount:   r.Tax.Amount,
		TotalDue:    r.Amount.Add(r.Tax.Amount),
		Date:        r.Date.Format("2006-01-02"),
		Description: r.Description,
		Reconciled:  r.Reconciled,
	}
}
