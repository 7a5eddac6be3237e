package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/metrics"
	"github.com/collegebuddy/api/utils/query"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const currencyINR = "INR"

// GateConfig holds gateway credentials and the referral payout rules
type GateConfig struct {
	KeyID       string
	KeySecret   string
	SignupBonus decimal.Decimal
}

// Checkout is handed to the client to open the gateway checkout
type Checkout struct {
	EnrollmentID uint            `json:"enrollment_id"`
	OrderID      string          `json:"order_id"`
	Amount       decimal.Decimal `json:"amount"`
	AmountPaise  int64           `json:"amount_paise"`
	Currency     string          `json:"currency"`
	KeyID        string          `json:"key_id"`
}

// Callback is what the client posts back after checkout
type Callback struct {
	EnrollmentID uint   `json:"enrollment_id" validate:"required"`
	OrderID      string `json:"razorpay_order_id" validate:"required"`
	PaymentID    string `json:"razorpay_payment_id" validate:"required"`
	Signature    string `json:"razorpay_signature" validate:"required"`
}

// Result is the outcome of a verified callback
type Result struct {
	Enrollment       *model.CourseEnrollment `json:"enrollment"`
	Payment          *model.Payment          `json:"payment"`
	Referral         *model.Referral         `json:"referral,omitempty"`
	Earnings         []model.Earning         `json:"earnings,omitempty"`
	AlreadyProcessed bool                    `json:"already_processed"`
}

// Gate turns verified gateway callbacks into paid enrollments and referral
// earnings
type Gate struct {
	db        *gorm.DB
	orders    OrderCreator
	cfg       GateConfig
	referrals *referral.Service
	notifier  *services.NotificationService
	now       func() time.Time
}

// NewGate wires the payment gate. referrals and notifier may be nil.
func NewGate(db *gorm.DB, orders OrderCreator, cfg GateConfig, referrals *referral.Service, notifier *services.NotificationService) *Gate {
	if cfg.SignupBonus.IsZero() {
		cfg.SignupBonus = decimal.NewFromInt(50)
	}
	return &Gate{
		db:        db,
		orders:    orders,
		cfg:       cfg,
		referrals: referrals,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Commission is the referrer's share of a course purchase, computed on the
// list price
func Commission(course *model.Course) decimal.Decimal {
	return course.Price.Mul(course.ReferralCommission).Div(decimal.NewFromInt(100)).Round(2)
}

// CreateOrder opens a gateway order for courseID and records a PENDING enrollment
func (g *Gate) CreateOrder(ctx context.Context, userID, courseID uint) (*Checkout, error) {
	if g.orders == nil || g.cfg.KeySecret == "" {
		return nil, ErrNotConfigured
	}
	db := g.db.WithContext(ctx)

	var course model.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	var active int64
	if err := db.Model(&model.CourseEnrollment{}).
		Where("student_id = ? AND course_id = ? AND status = ?", userID, courseID, model.EnrollmentActive).
		Count(&active).Error; err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrAlreadyPaid
	}

	amount := course.PayableAmount()
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	enrollment := &model.CourseEnrollment{
		StudentID: userID,
		CourseID:  courseID,
		Amount:    amount,
		Status:    model.EnrollmentPending,
	}
	if err := db.Create(enrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	order, err := g.orders.CreateOrder(ctx, OrderRequest{
		Amount:   ToPaise(amount),
		Currency: currencyINR,
		Receipt:  fmt.Sprintf("enr_%d", enrollment.ID),
		Notes: map[string]string{
			"course_code": course.Code,
			"user_id":     fmt.Sprint(userID),
		},
	})
	if err != nil {
		if delErr := db.Delete(enrollment).Error; delErr != nil {
			logger.L().Error("failed to discard enrollment after gateway error", zap.Uint("enrollment_id", enrollment.ID), zap.Error(delErr))
		}
		return nil, err
	}

	if err := db.Model(enrollment).Update("razorpay_order_id", order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store order id: %w", err)
	}

	logger.L().Info("payment order created",
		zap.Uint("user_id", userID),
		zap.Uint("enrollment_id", enrollment.ID),
		zap.String("order_id", order.ID),
		zap.String("amount", amount.StringFixed(2)))

	return &Checkout{
		EnrollmentID: enrollment.ID,
		OrderID:      order.ID,
		Amount:       amount,
		AmountPaise:  ToPaise(amount),
		Currency:     currencyINR,
		KeyID:        g.cfg.KeyID,
	}, nil
}

// Complete verifies the callback and, in one transaction, records the
// payment, activates the enrollment, promotes the buyer and pays the referrer.
// Replaying a processed callback returns the stored result without writes.
func (g *Gate) Complete(ctx context.Context, userID uint, cb Callback) (*Result, error) {
	log := logger.L().With(zap.Uint("user_id", userID), zap.String("order_id", cb.OrderID), zap.String("payment_id", cb.PaymentID))

	if !VerifySignature(g.cfg.KeySecret, cb.OrderID, cb.PaymentID, cb.Signature) {
		metrics.PaymentsRejected.WithLabelValues("signature").Inc()
		log.Warn("payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	var result *Result
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = g.complete(tx, userID, cb)
		return err
	})

	// a concurrent replay lost the race on the unique payment id
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		result, err = g.processed(g.db.WithContext(ctx), userID, cb.PaymentID)
	}
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, ErrOrderMismatch):
			reason = "order_mismatch"
		case errors.Is(err, ErrAlreadyPaid):
			reason = "already_paid"
		case errors.Is(err, ErrEnrollmentNotFound):
			reason = "enrollment_not_found"
		}
		metrics.PaymentsRejected.WithLabelValues(reason).Inc()
		log.Warn("payment not completed", zap.Error(err))
		return nil, err
	}

	if result.AlreadyProcessed {
		log.Info("payment callback replayed")
		return result, nil
	}

	metrics.PaymentsCompleted.Inc()
	for _, e := range result.Earnings {
		metrics.EarningsEmitted.WithLabelValues(string(e.Kind)).Inc()
	}
	log.Info("payment completed",
		zap.Uint("enrollment_id", result.Enrollment.ID),
		zap.Int("earnings", len(result.Earnings)))

	g.afterCommit(ctx, userID, result)
	return result, nil
}

func (g *Gate) processed(tx *gorm.DB, userID uint, paymentID string) (*Result, error) {
	var existing model.Payment
	if err := tx.Where("gateway_payment_id = ?", paymentID).First(&existing).Error; err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrOrderMismatch
	}
	var enrollment model.CourseEnrollment
	if err := tx.Preload("Course").First(&enrollment, existing.EnrollmentID).Error; err != nil {
		return nil, err
	}
	return &Result{Enrollment: &enrollment, Payment: &existing, AlreadyProcessed: true}, nil
}

func (g *Gate) complete(tx *gorm.DB, userID uint, cb Callback) (*Result, error) {
	// 1. idempotency on the gateway payment id
	var seen int64
	if err := tx.Model(&model.Payment{}).Where("gateway_payment_id = ?", cb.PaymentID).Count(&seen).Error; err != nil {
		return nil, err
	}
	if seen > 0 {
		return g.processed(tx, userID, cb.PaymentID)
	}

	// 2. lock and check the enrollment
	var enrollment model.CourseEnrollment
	if err := query.LockForUpdate(tx).Preload("Course").First(&enrollment, cb.EnrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if enrollment.StudentID != userID {
		return nil, ErrEnrollmentNotFound
	}
	if enrollment.RazorpayOrderID == "" || enrollment.RazorpayOrderID != cb.OrderID {
		return nil, ErrOrderMismatch
	}
	if enrollment.Status == model.EnrollmentActive {
		return nil, ErrAlreadyPaid
	}
	if enrollment.Course == nil {
		return nil, ErrCourseNotFound
	}

	// 3. payment
	payment := &model.Payment{
		EnrollmentID:     enrollment.ID,
		UserID:           userID,
		TransactionID:    cb.OrderID,
		GatewayPaymentID: cb.PaymentID,
		Signature:        cb.Signature,
		Amount:           enrollment.Amount,
		Currency:         currencyINR,
		Status:           model.PaymentSuccess,
	}
	if err := tx.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	// 4. activate
	activated := tx.Model(&model.CourseEnrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, model.EnrollmentPending).
		Updates(map[string]interface{}{"status": model.EnrollmentActive, "payment_id": payment.ID})
	if activated.Error != nil {
		return nil, fmt.Errorf("failed to activate enrollment: %w", activated.Error)
	}
	if activated.RowsAffected == 0 {
		return nil, ErrAlreadyPaid
	}
	enrollment.Status = model.EnrollmentActive
	enrollment.PaymentID = &payment.ID

	// 5. promote plain users only
	if err := tx.Model(&model.User{}).
		Where("id = ? AND role = ?", userID, model.RoleUser).
		Update("role", model.RoleStudent).Error; err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	result := &Result{Enrollment: &enrollment, Payment: payment}

	// 6. referral
	ref, err := referral.CompleteForReferee(tx, userID, enrollment.ID, g.now())
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return result, nil
	}
	result.Referral = ref

	emitted := []model.Earning{{
		UserID:      ref.ReferrerID,
		Amount:      g.cfg.SignupBonus.Round(2),
		Source:      model.SourceReferral,
		Kind:        model.KindSignupBonus,
		ReferralID:  &ref.ID,
		Description: fmt.Sprintf("Signup bonus for referral #%d", ref.ID),
	}}
	if commission := Commission(enrollment.Course); commission.IsPositive() {
		emitted = append(emitted, model.Earning{
			UserID:      ref.ReferrerID,
			Amount:      commission,
			Source:      model.SourceReferral,
			Kind:        model.KindCourseCommission,
			ReferralID:  &ref.ID,
			Description: fmt.Sprintf("%s commission for referral #%d", enrollment.Course.Code, ref.ID),
		})
	}
	if err := tx.Create(&emitted).Error; err != nil {
		return nil, fmt.Errorf("failed to record earnings: %w", err)
	}
	result.Earnings = emitted

	return result, nil
}

func (g *Gate) afterCommit(ctx context.Context, userID uint, result *Result) {
	if g.notifier != nil {
		title := "Payment successful"
		if result.Enrollment.Course != nil {
			title = fmt.Sprintf("You are enrolled in %s", result.Enrollment.Course.Title)
		}
		g.notifier.Notify(ctx, services.CreateNotificationRequest{
			UserID:   userID,
			Type:     model.NotificationTypeSuccess,
			Category: model.NotificationCategoryPayment,
			Title:    title,
			Message:  fmt.Sprintf("We received your payment of ₹%s", result.Payment.Amount.StringFixed(2)),
			Metadata: &model.NotificationMetadata{EnrollmentID: result.Enrollment.ID},
		})
	}

	if result.Referral == nil {
		return
	}

	total := decimal.Zero
	for _, e := range result.Earnings {
		total = total.Add(e.Amount)
	}

	if g.referrals != nil {
		g.referrals.Invalidate(ctx, result.Referral.ReferrerID)
	}
	if g.notifier != nil {
		g.notifier.Notify(ctx, services.CreateNotificationRequest{
			UserID:   result.Referral.ReferrerID,
			Type:     model.NotificationTypeSuccess,
			Category: model.NotificationCategoryReferral,
			Title:    "Referral converted",
			Message:  fmt.Sprintf("Your referral enrolled. You earned ₹%s", total.StringFixed(2)),
			Metadata: &model.NotificationMetadata{
				ReferralID:   result.Referral.ID,
				EnrollmentID: result.Enrollment.ID,
				Amount:       total.StringFixed(2),
			},
		})
	}
}
