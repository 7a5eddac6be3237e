package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report is the earnings summary of one user together with the payout side
// of the ledger
type Report struct {
	Summary
	PaidOut   decimal.Decimal `json:"paid_out"`
	Pending   decimal.Decimal `json:"pending_payouts"`
	Available decimal.Decimal `json:"available"`
	Payouts   []model.Payout  `json:"payouts"`
}

// Service reads the earnings ledger
type Service struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewService creates an earnings service reporting in loc
func NewService(db *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, now: time.Now}
}

// Location is the zone the reporting windows are computed in
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the service clock
func (s *Service) Now() time.Time {
	return s.now()
}

// Summary loads a user's earnings and payouts and aggregates them
func (s *Service) Summary(ctx context.Context, userID uint) (*Report, error) {
	var rows []model.Earning
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load earnings: %w", err)
	}

	var payouts []model.Payout
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("failed to load payouts: %w", err)
	}

	report := &Report{
		Summary: Aggregate(rows, s.now(), s.loc),
		Payouts: payouts,
	}
	report.PaidOut, report.Pending = payoutTotals(payouts)
	report.Available = report.Total.Sub(report.PaidOut).Sub(report.Pending)
	return report, nil
}

// List returns one page of ledger entries, newest first
func (s *Service) List(ctx context.Context, userID uint, source string, page, limit int) ([]model.Earning, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Earning{}).Where("user_id = ?", userID)
	if source != "" {
		query = query.Where("source = ?", source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Earning
	err := query.Preload("Gig").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

// AvailableBalance is total earnings minus payouts that are paid or still
// pending. tx may be a transaction.
func AvailableBalance(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	var rows []model.Earning
	if err := tx.Select("amount").Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	var payouts []model.Payout
	if err := tx.Select("amount", "status").Where("user_id = ?", userID).Find(&payouts).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range rows {
		total = total.Add(e.Amount)
	}
	paid, pending := payoutTotals(payouts)
	return total.Sub(paid).Sub(pending), nil
}

func payoutTotals(payouts []model.Payout) (paid, pending decimal.Decimal) {
	paid, pending = decimal.Zero, decimal.Zero
	for _, p := range payouts {
		switch p.Status {
		case model.PayoutSuccess:
			paid = paid.Add(p.Amount)
		case model.PayoutPending:
			pending = pending.Add(p.Amount)
		}
	}
	return paid, pending
}
