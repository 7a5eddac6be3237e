package earnings

import (
	"math/rand"
	"testing"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func earning(at time.Time, amount int64, source model.EarningSource, kind model.EarningKind) model.Earning {
	return model.Earning{CreatedAt: at, Amount: decimal.NewFromInt(amount), Source: source, Kind: kind}
}

func TestWindowsAt(t *testing.T) {
	// Wednesday
	now := time.Date(2025, 3, 12, 10, 30, 0, 0, ist)
	w := WindowsAt(now, ist)

	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, ist), w.DayStart)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, ist), w.WeekStart)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, ist), w.MonthStart)

	// a Sunday is its own week start
	sunday := WindowsAt(time.Date(2025, 3, 9, 0, 0, 0, 0, ist), ist)
	assert.Equal(t, sunday.DayStart, sunday.WeekStart)
}

func TestWindowsAt_UsesLocalCalendar(t *testing.T) {
	// 20:00 UTC on the 11th is already the 12th in IST
	now := time.Date(2025, 3, 11, 20, 0, 0, 0, time.UTC)
	w := WindowsAt(now, ist)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, ist), w.DayStart)
}

func TestAggregate_MidnightBoundary(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, ist)
	midnight := time.Date(2025, 3, 12, 0, 0, 0, 0, ist)

	rows := []model.Earning{
		earning(midnight, 10, model.SourceReferral, model.KindSignupBonus),
		earning(midnight.Add(-time.Nanosecond), 20, model.SourceReferral, model.KindCourseCommission),
	}
	s := Aggregate(rows, now, ist)

	assert.True(t, s.Daily.Equal(decimal.NewFromInt(10)), "entry at midnight belongs to today")
	assert.True(t, s.Weekly.Equal(decimal.NewFromInt(30)))
	assert.True(t, s.Total.Equal(decimal.NewFromInt(30)))
}

func TestAggregate_Breakdown(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, ist)
	rows := []model.Earning{
		earning(now.Add(-time.Hour), 50, model.SourceReferral, model.KindSignupBonus),                   // today
		earning(time.Date(2025, 3, 10, 9, 0, 0, 0, ist), 100, model.SourceReferral, model.KindCourseCommission), // this week
		earning(time.Date(2025, 3, 8, 9, 0, 0, 0, ist), 75, model.SourceGig, model.KindGigReward),               // last week, this month
		earning(time.Date(2025, 2, 28, 9, 0, 0, 0, ist), 5, model.SourceGig, model.KindGigReward),               // last month
	}

	s := Aggregate(rows, now, ist)

	assert.Equal(t, "50", s.Daily.String())
	assert.Equal(t, "150", s.Weekly.String())
	assert.Equal(t, "225", s.Monthly.String())
	assert.Equal(t, "230", s.Total.String())
	assert.Equal(t, "150", s.Referral.String())
	assert.Equal(t, "80", s.Gig.String())
	assert.Equal(t, "50", s.SignupBonus.String())
	assert.Equal(t, "100", s.Commission.String())
}

func TestAggregate_FirstWeekSpansPreviousMonth(t *testing.T) {
	// Wednesday 2 April: the week started on Sunday 30 March
	now := time.Date(2025, 4, 2, 12, 0, 0, 0, ist)
	rows := []model.Earning{
		earning(time.Date(2025, 3, 31, 12, 0, 0, 0, ist), 40, model.SourceReferral, model.KindSignupBonus),
	}
	s := Aggregate(rows, now, ist)

	assert.Equal(t, "40", s.Weekly.String())
	assert.Equal(t, "0", s.Monthly.String())
}

func TestAggregate_WindowsAreMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	// Saturday 22 March: the week lies inside the month
	now := time.Date(2025, 3, 22, 18, 0, 0, 0, ist)

	for i := 0; i < 500; i++ {
		n := r.Intn(30)
		rows := make([]model.Earning, 0, n)
		for j := 0; j < n; j++ {
			at := now.Add(-time.Duration(r.Int63n(int64(60 * 24 * time.Hour))))
			rows = append(rows, earning(at, r.Int63n(500)+1, model.SourceReferral, model.KindSignupBonus))
		}

		s := Aggregate(rows, now, ist)
		assert.True(t, s.Weekly.GreaterThanOrEqual(s.Daily))
		assert.True(t, s.Monthly.GreaterThanOrEqual(s.Weekly))
		assert.True(t, s.Total.GreaterThanOrEqual(s.Monthly))

		again := Aggregate(rows, now, ist)
		assert.True(t, again.Total.Equal(s.Total))
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, time.Now(), nil)
	assert.True(t, s.Total.IsZero())
	assert.True(t, s.Daily.IsZero())
}
