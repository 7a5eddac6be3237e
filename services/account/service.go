package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/cache"
	"github.com/collegebuddy/api/utils/crypto"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	VerificationTTL   = time.Hour
	PasswordResetTTL  = 15 * time.Minute
	OTPTTL            = 10 * time.Minute
	OTPLength         = 4
	OTPMaxAttempts    = 5
	OTPResendInterval = time.Minute

	// registrations that lose a referral code race to a concurrent insert
	codeAttempts = 3
)

// Service implements account lifecycle: registration, sessions, verification
// and password recovery
type Service struct {
	db        *gorm.DB
	jwt       *auth.JWTManager
	blacklist *auth.BlacklistService
	codes     *referral.CodeGenerator
	codeTaken referral.ExistsFunc
	referrals *referral.Service
	emails    *services.EmailService
	cache     cache.Store
	now       func() time.Time
}

// NewService wires the account service. store may be nil.
func NewService(db *gorm.DB, jwt *auth.JWTManager, referrals *referral.Service, emails *services.EmailService, store cache.Store) *Service {
	return &Service{
		db:        db,
		jwt:       jwt,
		blacklist: auth.NewBlacklistService(db),
		codes:     referral.NewCodeGenerator(),
		codeTaken: referral.CodeTaken(db),
		referrals: referrals,
		emails:    emails,
		cache:     store,
		now:       time.Now,
	}
}

// RegisterInput is the data accepted at sign up
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	ReferralCode string
	Role         string // empty means USER
}

// Session is a user plus freshly issued tokens
type Session struct {
	User   *model.User     `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func normalizePhone(phone string) *string {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if phone == "" {
		return nil
	}
	return &phone
}

func (s *Service) checkUnique(ctx context.Context, email string, phone *string, exceptID uint) error {
	db := s.db.WithContext(ctx).Unscoped().Model(&model.User{})
	var count int64
	if email != "" {
		if err := db.Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
	}
	if phone != nil {
		if err := s.db.WithContext(ctx).Unscoped().Model(&model.User{}).
			Where("phone = ? AND id <> ?", *phone, exceptID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPhoneTaken
		}
	}
	return nil
}

// createUser allocates a referral code and inserts the user. A code supplied
// at registration is resolved in the same transaction.
func (s *Service) createUser(ctx context.Context, in RegisterInput) (*model.User, *model.Referral, string, error) {
	email := validation.NormalizeEmail(in.Email)
	phone := normalizePhone(in.Phone)
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}

	if err := s.checkUnique(ctx, email, phone, 0); err != nil {
		return nil, nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := crypto.RandomHex(32)
	if err != nil {
		return nil, nil, "", err
	}

	for attempt := 1; ; attempt++ {
		code, err := s.codes.Allocate(ctx, in.Name, s.codeTaken)
		if err != nil {
			return nil, nil, "", err
		}

		user := &model.User{
			Name:         validation.SanitizeString(in.Name),
			Email:        email,
			Phone:        phone,
			PasswordHash: hash,
			Role:         role,
			ReferralCode: code,
			IsVerified:   role != model.RoleUser,
		}

		ref, err := s.insertUser(ctx, user, in.ReferralCode, token)
		if err == nil {
			return user, ref, token, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, "", err
		}

		// a concurrent insert took the email, the phone or the referral code
		if err := s.checkUnique(ctx, email, phone, 0); err != nil {
			return nil, nil, "", err
		}
		if attempt == codeAttempts {
			return nil, nil, "", fmt.Errorf("failed to create user: %w", err)
		}
		logger.L().Debug("referral code taken concurrently, retrying", zap.String("code", code), zap.Int("attempt", attempt))
	}
}

func (s *Service) insertUser(ctx context.Context, user *model.User, referralCode, token string) (*model.Referral, error) {
	var ref *model.Referral
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		linked, err := s.referrals.Linker().LinkAtRegistration(tx, user, referralCode)
		if err != nil {
			return err
		}
		ref = linked

		if user.IsVerified {
			return nil
		}
		return tx.Create(&model.VerificationToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: s.now().Add(VerificationTTL),
		}).Error
	})
	if err != nil {
		user.ID = 0
		return nil, err
	}
	return ref, nil
}

// Register creates a USER, links the referral code if it resolves, mails the
// verification link and signs the user in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Role = ""
	user, ref, token, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}

	s.referrals.AfterLink(ctx, ref)
	if err := s.emails.SendVerificationEmail(ctx, user.Email, user.Name, token, VerificationTTL); err != nil {
		logger.L().Warn("verification email failed", zap.String("email", user.Email), zap.Error(err))
	}
	logger.L().Info("user registered", zap.Uint("user_id", user.ID), zap.Bool("referred", ref != nil))

	return s.issue(user)
}

func (s *Service) issue(user *model.User) (*Session, error) {
	pair, err := s.jwt.IssuePair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &Session{User: user, Tokens: pair}, nil
}

// Login checks credentials. Unknown emails and wrong passwords are the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", validation.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(&user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair
// is issued with the user's current role
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := s.User(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}

	if err := s.blacklist.RevokeToken(ctx, claims.ID, user.ID, claims.ExpiresAt.Time, "refresh rotated"); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout revokes the access token and, when given, the refresh token
func (s *Service) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if err := s.blacklist.RevokeToken(ctx, access.ID, access.UserID, access.ExpiresAt.Time, "logout"); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil || claims.UserID != access.UserID {
		return nil
	}
	return s.blacklist.RevokeToken(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time, "logout")
}

// ChangePassword replaces the password and invalidates every other session
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) (*Session, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, current); err != nil {
		return nil, ErrWrongPassword
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return auth.RevokeAllUserTokens(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	user.TokenVersion++
	return s.issue(user)
}

// User loads one user
func (s *Service) User(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
