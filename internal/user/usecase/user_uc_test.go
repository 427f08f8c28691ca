package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	listingdomain "github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	seq     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), byEmail: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}
	r.seq++
	user.ID = fmt.Sprintf("%024x", r.seq)
	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

type fakeOTPStore struct {
	mu   sync.Mutex
	otps map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{otps: make(map[string]string)}
}

func (s *fakeOTPStore) SetOTP(_ context.Context, email, otp string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[email] = otp
	return nil
}

func (s *fakeOTPStore) GetOTP(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.otps[email]
	if !ok {
		return "", domain.ErrInvalidOTP
	}
	return otp, nil
}

func (s *fakeOTPStore) DeleteOTP(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otps, email)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(map[string]string)}
}

func (m *fakeMailer) SendOTPEmail(toEmail, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[toEmail] = otp
	return nil
}

const testSecret = "test-secret"

func newTestUsecase() (*UserUsecase, *fakeUserRepo, *fakeOTPStore, *fakeMailer) {
	repo := newFakeUserRepo()
	otps := newFakeOTPStore()
	mail := newFakeMailer()
	uc := NewUserUsecase(repo, otps, mail, logger.NewNop(), testSecret, 7*24*time.Hour, time.Hour)
	return uc, repo, otps, mail
}

func TestSignup_IssuesValidToken(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	user, token, err := uc.Signup(context.Background(), "Jane Doe", "jane@example.com", "5551234567", "hunter22", listingdomain.RoleSeller)
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, listingdomain.RoleSeller, user.Role)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, listingdomain.RoleSeller, claims.Role)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "jane@example.com", claims.Email)

	// password must never be stored in the clear
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
}

func TestSignup_DefaultsToBuyer(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	user, _, err := uc.Signup(context.Background(), "Jane Doe", "jane@example.com", "", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, listingdomain.RoleBuyer, user.Role)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	ctx := context.Background()

	_, _, err := uc.Signup(ctx, "Jane Doe", "jane@example.com", "", "hunter22", "")
	require.NoError(t, err)

	_, _, err = uc.Signup(ctx, "Other Jane", "jane@example.com", "", "hunter23", "")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	ctx := context.Background()

	_, _, err := uc.Signup(ctx, "Jane Doe", "jane@example.com", "", "hunter22", listingdomain.RoleSeller)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, token, err := uc.Login(ctx, "jane@example.com", "hunter22", listingdomain.RoleSeller)
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", user.Email)
		_, err = ParseToken(token, testSecret)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := uc.Login(ctx, "jane@example.com", "wrong", listingdomain.RoleSeller)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := uc.Login(ctx, "nobody@example.com", "hunter22", listingdomain.RoleSeller)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("role mismatch", func(t *testing.T) {
		_, _, err := uc.Login(ctx, "jane@example.com", "hunter22", listingdomain.RoleBuyer)
		assert.ErrorIs(t, err, domain.ErrRoleMismatch)
	})
}

func TestVerify(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	ctx := context.Background()

	_, token, err := uc.Signup(ctx, "Jane Doe", "jane@example.com", "", "hunter22", "")
	require.NoError(t, err)

	user, err := uc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)

	_, err = uc.Verify(ctx, "not.a.token")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	_, token, err := uc.Signup(context.Background(), "Jane Doe", "jane@example.com", "", "hunter22", "")
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestForgotThenResetPassword(t *testing.T) {
	uc, _, _, mail := newTestUsecase()
	ctx := context.Background()

	_, _, err := uc.Signup(ctx, "Jane Doe", "jane@example.com", "", "hunter22", "")
	require.NoError(t, err)

	require.NoError(t, uc.ForgotPassword(ctx, "jane@example.com"))

	otp := mail.sent["jane@example.com"]
	require.Len(t, otp, 6)

	t.Run("wrong otp", func(t *testing.T) {
		err := uc.ResetPassword(ctx, "jane@example.com", "000000x", "newpass99")
		assert.ErrorIs(t, err, domain.ErrInvalidOTP)
	})

	require.NoError(t, uc.ResetPassword(ctx, "jane@example.com", otp, "newpass99"))

	// otp is single-use
	err = uc.ResetPassword(ctx, "jane@example.com", otp, "another00")
	assert.ErrorIs(t, err, domain.ErrInvalidOTP)

	_, _, err = uc.Login(ctx, "jane@example.com", "newpass99", listingdomain.RoleBuyer)
	assert.NoError(t, err)
	_, _, err = uc.Login(ctx, "jane@example.com", "hunter22", listingdomain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	uc, _, _, mail := newTestUsecase()

	require.NoError(t, uc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, mail.sent)
}