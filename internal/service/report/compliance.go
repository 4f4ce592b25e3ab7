package report

import (
	"context"
	"fmt"
	"time"

	"github.com/greenledger/fiscal-backend-go/internal/domain/company"
	"github.com/greenledger/fiscal-backend-go/internal/domain/report"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComplianceScore weighs registration coverage, filing discipline and
// outstanding payments into a single 0-100 health score.
func (s *ServiceImpl) ComplianceScore(ctx context.Context, companyID string) (report.ComplianceReport, error) {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return report.ComplianceReport{}, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	now := time.Now().UTC()
	filings, err := s.companyRepo.ListFilings(ctx, companyID, now.Year())
	if err != nil {
		return report.ComplianceReport{}, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	outstanding, err := s.companyRepo.OutstandingLiability(ctx, companyID)
	if err != nil {
		return report.ComplianceReport{}, fmt.Errorf("%w: %v", report.ErrDataUnavailable, err)
	}

	categories := []report.CategoryScore{
		{
			Category: "registration",
			Weight:   s.cfg.RegistrationWeight,
			Score:    registrationScore(comp.Registrations, s.cfg.Levies),
		},
		{
			Category: "filing",
			Weight:   s.cfg.FilingWeight,
			Score:    filingScore(filings),
		},
		{
			Category: "payment",
			Weight:   s.cfg.PaymentWeight,
			Score:    paymentScore(outstanding),
		},
	}

	return report.ComplianceReport{
		CompanyID:   companyID,
		Score:       weightedScore(categories),
		Categories:  categories,
		GeneratedAt: now.Format(time.RFC3339),
	}, nil
}

// registrationScore is the fraction of expected levies the company holds a
// registration for, scaled to 0-100.
func registrationScore(registrations []company.Registration, levies []string) decimal.Decimal {
	if len(levies) == 0 {
		return hundred
	}
	registered := make(map[string]bool, len(registrations))
	for _, r := range registrations {
		if r.Registered {
			registered[r.Levy] = true
		}
	}
	var covered int64
	for _, levy := range levies {
		if registered[levy] {
			covered++
		}
	}
	return decimal.NewFromInt(covered).
		Div(decimal.NewFromInt(int64(len(levies)))).
		Mul(hundred).
		Round(2)
}

// filingScore is the fraction of due filings that were actually filed.
// A company with nothing due yet scores full marks.
func filingScore(filings []company.Filing) decimal.Decimal {
	if len(filings) == 0 {
		return hundred
	}
	var filed int64
	for _, f := range filings {
		if f.Filed {
			filed++
		}
	}
	return decimal.NewFromInt(filed).
		Div(decimal.NewFromInt(int64(len(filings)))).
		Mul(hundred).
		Round(2)
}

// paymentScore is binary: any outstanding liability zeroes the category.
func paymentScore(outstanding bool) decimal.Decimal {
	if outstanding {
		return decimal.Zero
	}
	return hundred
}

func weightedScore(categories []report.CategoryScore) decimal.Decimal {
	weightedSum := decimal.Zero
	totalWeight := decimal.Zero
	for _, c := range categories {
		weightedSum = weightedSum.Add(c.Weight.Mul(c.Score))
		totalWeight = totalWeight.Add(c.Weight)
	}
	if totalWeight.IsZero() {
		return decimal.Zero
	}
	return weightedSum.Div(totalWeight).Round(2)
}
