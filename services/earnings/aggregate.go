package earnings

import (
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/shopspring/decimal"
)

// Windows are the local start instants of the reporting periods
type Windows struct {
	DayStart   time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// Summary is the aggregated view of a user's earnings. Daily, Weekly and
// Monthly are cumulative windows ending now, so they overlap.
type Summary struct {
	Daily       decimal.Decimal `json:"daily"`
	Weekly      decimal.Decimal `json:"weekly"`
	Monthly     decimal.Decimal `json:"monthly"`
	Total       decimal.Decimal `json:"total"`
	Referral    decimal.Decimal `json:"referral"`
	Gig         decimal.Decimal `json:"gig"`
	SignupBonus decimal.Decimal `json:"signup_bonus"`
	Commission  decimal.Decimal `json:"commission"`
}

// WindowsAt computes the window starts for now in loc. Weeks start on Sunday.
func WindowsAt(now time.Time, loc *time.Location) Windows {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Windows{
		DayStart:   day,
		WeekStart:  day.AddDate(0, 0, -int(local.Weekday())),
		MonthStart: time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc),
	}
}

// Aggregate sums earnings into a Summary. It has no side effects.
func Aggregate(earnings []model.Earning, now time.Time, loc *time.Location) Summary {
	w := WindowsAt(now, loc)
	s := Summary{
		Daily:       decimal.Zero,
		Weekly:      decimal.Zero,
		Monthly:     decimal.Zero,
		Total:       decimal.Zero,
		Referral:    decimal.Zero,
		Gig:         decimal.Zero,
		SignupBonus: decimal.Zero,
		Commission:  decimal.Zero,
	}

	for _, e := range earnings {
		amount := e.Amount
		s.Total = s.Total.Add(amount)

		if !e.CreatedAt.Before(w.DayStart) {
			s.Daily = s.Daily.Add(amount)
		}
		if !e.CreatedAt.Before(w.WeekStart) {
			s.Weekly = s.Weekly.Add(amount)
		}
		if !e.CreatedAt.Before(w.MonthStart) {
			s.Monthly = s.Monthly.Add(amount)
		}

		switch e.Source {
		case model.SourceReferral:
			s.Referral = s.Referral.Add(amount)
		case model.SourceGig:
			s.Gig = s.Gig.Add(amount)
		}

		switch e.Kind {
		case model.KindSignupBonus:
			s.SignupBonus = s.SignupBonus.Add(amount)
		case model.KindCourseCommission:
			s.Commission = s.Commission.Add(amount)
		}
	}

	return s
}
