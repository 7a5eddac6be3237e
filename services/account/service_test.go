package account

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/earnings"
	"github.com/collegebuddy/api/services/mail"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type captureMailer struct {
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last() mail.Message {
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	mailer *captureMailer
	cache  *cache.MemoryCache
	ctx    context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()
	auth.Cost = bcrypt.MinCost

	store, err := database.NewMemoryStore(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	db := store.GetDB()

	mc := cache.NewMemoryCache()
	notifier := services.NewNotificationService(db)
	referrals := referral.NewService(db, mc, notifier, earnings.NewService(db, time.UTC))
	mailer := &captureMailer{}
	jwt := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Issuer: "college-buddy-test"})

	svc := NewService(db, jwt, referrals, services.NewEmailService(mailer, "http://app.test"), mc)
	return &fixture{db: db, svc: svc, mailer: mailer, cache: mc, ctx: context.Background()}
}

func (f *fixture) register(t *testing.T, name, email, code string) *Session {
	t.Helper()
	s, err := f.svc.Register(f.ctx, RegisterInput{Name: name, Email: email, Password: "password1", ReferralCode: code})
	require.NoError(t, err)
	return s
}

var tokenInLink = regexp.MustCompile(`token=([0-9a-f]+)`)

func TestRegister_LinksReferralAndMailsVerification(t *testing.T) {
	f := setup(t)

	alice := f.register(t, "Alice Sharma", "Alice@Example.com", "")
	assert.Equal(t, "alice@example.com", alice.User.Email)
	assert.Regexp(t, `^alicesharma\d{4}$`, alice.User.ReferralCode)
	assert.Equal(t, model.RoleUser, alice.User.Role)
	assert.False(t, alice.User.IsVerified)
	assert.NotEmpty(t, alice.Tokens.AccessToken)
	require.Len(t, f.mailer.sent, 1)

	bob := f.register(t, "Bob", "bob@example.com", " "+alice.User.ReferralCode+" ")
	require.NotNil(t, bob.User.ReferredByID)
	assert.Equal(t, alice.User.ID, *bob.User.ReferredByID)

	var ref model.Referral
	require.NoError(t, f.db.Where("referee_id = ?", bob.User.ID).First(&ref).Error)
	assert.Equal(t, model.ReferralPending, ref.Status)
	assert.Equal(t, alice.User.ID, ref.ReferrerID)

	// unknown code is ignored
	carol := f.register(t, "Carol", "carol@example.com", "nobody0000")
	assert.Nil(t, carol.User.ReferredByID)

	_, err := f.svc.Register(f.ctx, RegisterInput{Name: "A", Email: "alice@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_PhoneUnique(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Register(f.ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "password1", Phone: "98765 43210"})
	require.NoError(t, err)

	_, err = f.svc.Register(f.ctx, RegisterInput{Name: "B", Email: "b@x.com", Password: "password1", Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrPhoneTaken)
}

func TestRegister_ConcurrentInsert(t *testing.T) {
	phone := "9876543210"
	tests := []struct {
		name  string
		rival func(code string) *model.User
		err   error
	}{
		{"referral code", func(code string) *model.User {
			return &model.User{Name: "Rival", Email: "rival@x.com", PasswordHash: "x", ReferralCode: code, Role: model.RoleUser}
		}, nil},
		{"email", func(string) *model.User {
			return &model.User{Name: "Rival", Email: "asha@x.com", PasswordHash: "x", ReferralCode: "rival0001", Role: model.RoleUser}
		}, ErrEmailTaken},
		{"phone", func(string) *model.User {
			return &model.User{Name: "Rival", Email: "rival@x.com", Phone: &phone, PasswordHash: "x", ReferralCode: "rival0001", Role: model.RoleUser}
		}, ErrPhoneTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			// the rival row lands between the availability check and the insert
			lookups := 0
			f.svc.codeTaken = func(ctx context.Context, code string) (bool, error) {
				lookups++
				if lookups == 1 {
					return false, f.db.Create(tt.rival(code)).Error
				}
				return referral.CodeTaken(f.db)(ctx, code)
			}

			s, err := f.svc.Register(f.ctx, RegisterInput{Name: "Asha", Email: "asha@x.com", Password: "password1", Phone: phone})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				var count int64
				f.db.Model(&model.User{}).Count(&count)
				assert.Equal(t, int64(1), count)
				return
			}

			require.NoError(t, err)
			assert.Greater(t, lookups, 1)
			var rival model.User
			require.NoError(t, f.db.Where("email = ?", "rival@x.com").First(&rival).Error)
			assert.NotEqual(t, rival.ReferralCode, s.User.ReferralCode)
			assert.NotZero(t, s.User.ID)
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	f := setup(t)
	s := f.register(t, "Asha", "asha@x.com", "")

	m := tokenInLink.FindStringSubmatch(f.mailer.last().Text)
	require.Len(t, m, 2)

	assert.ErrorIs(t, f.svc.VerifyEmail(f.ctx, "deadbeef"), ErrInvalidToken)
	require.NoError(t, f.svc.VerifyEmail(f.ctx, m[1]))
	assert.ErrorIs(t, f.svc.VerifyEmail(f.ctx, m[1]), ErrInvalidToken)

	user, err := f.svc.User(f.ctx, s.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := setup(t)
	f.register(t, "Asha", "asha@x.com", "")
	token := tokenInLink.FindStringSubmatch(f.mailer.last().Text)[1]

	f.svc.now = func() time.Time { return time.Now().Add(VerificationTTL + time.Minute) }
	assert.ErrorIs(t, f.svc.VerifyEmail(f.ctx, token), ErrInvalidToken)
}

func TestLoginRefreshLogout(t *testing.T) {
	f := setup(t)
	f.register(t, "Asha", "asha@x.com", "")

	_, err := f.svc.Login(f.ctx, "asha@x.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(f.ctx, "ghost@x.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := f.svc.Login(f.ctx, " ASHA@x.com", "password1")
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(f.ctx, session.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	// a rotated refresh token cannot be replayed
	_, err = f.svc.Refresh(f.ctx, session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// access tokens are not refresh tokens
	_, err = f.svc.Refresh(f.ctx, rotated.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := f.svc.jwt.ValidateToken(rotated.Tokens.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(f.ctx, claims, rotated.Tokens.RefreshToken))

	revoked, err := f.svc.blacklist.IsTokenRevoked(f.ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	_, err = f.svc.Refresh(f.ctx, rotated.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword_InvalidatesOldTokens(t *testing.T) {
	f := setup(t)
	s := f.register(t, "Asha", "asha@x.com", "")

	_, err := f.svc.ChangePassword(f.ctx, s.User.ID, "nope", "newpassword1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	next, err := f.svc.ChangePassword(f.ctx, s.User.ID, "password1", "newpassword1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.User.TokenVersion)

	_, err = f.svc.Refresh(f.ctx, s.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.Login(f.ctx, "asha@x.com", "newpassword1")
	assert.NoError(t, err)
}

func TestOTP(t *testing.T) {
	f := setup(t)
	s := f.register(t, "Asha", "asha@x.com", "")

	assert.ErrorIs(t, f.svc.SendOTP(f.ctx, "ghost@x.com"), ErrUserNotFound)
	require.NoError(t, f.svc.SendOTP(f.ctx, "asha@x.com"))
	assert.ErrorIs(t, f.svc.SendOTP(f.ctx, "asha@x.com"), ErrOTPThrottled)

	var otp model.OTP
	require.NoError(t, f.db.Where("email = ?", "asha@x.com").First(&otp).Error)
	assert.Len(t, otp.Code, OTPLength)
	assert.Contains(t, f.mailer.last().Subject, otp.Code)

	wrong := "0000"
	if otp.Code == wrong {
		wrong = "1111"
	}
	assert.ErrorIs(t, f.svc.VerifyOTP(f.ctx, "asha@x.com", wrong), ErrInvalidOTP)
	require.NoError(t, f.svc.VerifyOTP(f.ctx, "asha@x.com", otp.Code))

	// used codes do not verify twice
	assert.ErrorIs(t, f.svc.VerifyOTP(f.ctx, "asha@x.com", otp.Code), ErrInvalidOTP)

	user, err := f.svc.User(f.ctx, s.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.ErrorIs(t, f.svc.SendOTP(f.ctx, "asha@x.com"), ErrAlreadyVerified)
}

func TestOTP_AttemptLimitAndExpiry(t *testing.T) {
	f := setup(t)
	f.register(t, "Asha", "asha@x.com", "")
	require.NoError(t, f.svc.SendOTP(f.ctx, "asha@x.com"))

	var otp model.OTP
	require.NoError(t, f.db.Where("email = ?", "asha@x.com").First(&otp).Error)
	wrong := "0000"
	if otp.Code == wrong {
		wrong = "1111"
	}

	for i := 0; i < OTPMaxAttempts; i++ {
		assert.ErrorIs(t, f.svc.VerifyOTP(f.ctx, "asha@x.com", wrong), ErrInvalidOTP)
	}
	assert.ErrorIs(t, f.svc.VerifyOTP(f.ctx, "asha@x.com", otp.Code), ErrTooManyAttempts)

	// a new code replaces the exhausted one, and expires after OTPTTL
	require.NoError(t, f.cache.Delete(f.ctx, otpThrottleKey("asha@x.com")))
	require.NoError(t, f.svc.SendOTP(f.ctx, "asha@x.com"))
	var fresh model.OTP
	require.NoError(t, f.db.Where("email = ? AND used_at IS NULL", "asha@x.com").First(&fresh).Error)

	f.svc.now = func() time.Time { return time.Now().Add(OTPTTL + time.Second) }
	assert.ErrorIs(t, f.svc.VerifyOTP(f.ctx, "asha@x.com", fresh.Code), ErrOTPExpired)
}

func TestPasswordReset(t *testing.T) {
	f := setup(t)
	s := f.register(t, "Asha", "asha@x.com", "")
	sent := len(f.mailer.sent)

	// unknown emails look the same and send nothing
	require.NoError(t, f.svc.ForgotPassword(f.ctx, "ghost@x.com"))
	assert.Len(t, f.mailer.sent, sent)

	require.NoError(t, f.svc.ForgotPassword(f.ctx, "asha@x.com"))
	token := tokenInLink.FindStringSubmatch(f.mailer.last().Text)[1]
	assert.Len(t, token, 64)

	var stored model.PasswordResetToken
	require.NoError(t, f.db.First(&stored).Error)
	assert.NotEqual(t, token, stored.TokenHash)

	assert.ErrorIs(t, f.svc.ResetPassword(f.ctx, "bogus", "newpassword1"), ErrInvalidToken)
	require.NoError(t, f.svc.ResetPassword(f.ctx, token, "newpassword1"))
	assert.ErrorIs(t, f.svc.ResetPassword(f.ctx, token, "another1pass"), ErrInvalidToken)

	_, err := f.svc.Refresh(f.ctx, s.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = f.svc.Login(f.ctx, "asha@x.com", "newpassword1")
	assert.NoError(t, err)
}

func TestPasswordReset_Expired(t *testing.T) {
	f := setup(t)
	f.register(t, "Asha", "asha@x.com", "")
	require.NoError(t, f.svc.ForgotPassword(f.ctx, "asha@x.com"))
	token := tokenInLink.FindStringSubmatch(f.mailer.last().Text)[1]

	f.svc.now = func() time.Time { return time.Now().Add(PasswordResetTTL + time.Second) }
	assert.ErrorIs(t, f.svc.ResetPassword(f.ctx, token, "newpassword1"), ErrInvalidToken)
}
