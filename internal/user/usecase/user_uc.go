package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	listingdomain "github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	repo      domain.UserRepository
	otps      domain.OTPStore
	mailer    domain.Mailer
	logger    logger.Logger
	jwtSecret string
	tokenTTL  time.Duration
	otpTTL    time.Duration
}

func NewUserUsecase(
	repo domain.UserRepository,
	otps domain.OTPStore,
	mailer domain.Mailer,
	log logger.Logger,
	jwtSecret string,
	tokenTTL, otpTTL time.Duration,
) *UserUsecase {
	return &UserUsecase{
		repo:      repo,
		otps:      otps,
		mailer:    mailer,
		logger:    log,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		otpTTL:    otpTTL,
	}
}

// Claims are the token claims attached to every authenticated request. The
// listing side trusts them as-is and never re-verifies the user record.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (uc *UserUsecase) Signup(ctx context.Context, name, email, phone, password, role string) (*domain.User, string, error) {
	if role == "" {
		role = listingdomain.RoleBuyer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password. The requested role must match
// the account's role: a buyer token cannot be obtained through a seller login
// form and vice versa.
func (uc *UserUsecase) Login(ctx context.Context, email, password, role string) (*domain.User, string, error) {
	user, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if user.Role != role {
		return nil, "", domain.ErrRoleMismatch
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := uc.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Verify parses a token and loads the backing user, confirming the account
// still exists.
func (uc *UserUsecase) Verify(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := ParseToken(tokenString, uc.jwtSecret)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// ForgotPassword issues a 6-digit OTP with a redis TTL and mails it. The
// response is identical whether or not the email exists, so the endpoint
// cannot be used to probe accounts.
func (uc *UserUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}

	if err := uc.otps.SetOTP(ctx, user.Email, otp, uc.otpTTL); err != nil {
		return err
	}

	if err := uc.mailer.SendOTPEmail(user.Email, otp); err != nil {
		uc.logger.Errorf("ForgotPassword: failed to send OTP email to %s: %v", user.Email, err)
		return err
	}
	return nil
}

func (uc *UserUsecase) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	stored, err := uc.otps.GetOTP(ctx, email)
	if err != nil {
		return err
	}
	if stored != otp {
		return domain.ErrInvalidOTP
	}

	user, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uc.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	if err := uc.otps.DeleteOTP(ctx, email); err != nil {
		uc.logger.Warnf("ResetPassword: failed to delete OTP for %s: %v", email, err)
	}
	return nil
}

func (uc *UserUsecase) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.jwtSecret))
}

// ParseToken validates an HMAC-signed token and returns its claims. Shared
// with the HTTP auth middleware.
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.UserID == "" {
		return nil, errors.New("userId not found in token claims")
	}
	return claims, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
