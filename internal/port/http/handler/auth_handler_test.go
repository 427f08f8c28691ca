package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	signupFn func(ctx context.Context, name, email, phone, password, role string) (*domain.User, string, error)
	loginFn  func(ctx context.Context, email, password, role string) (*domain.User, string, error)
	verifyFn func(ctx context.Context, tokenString string) (*domain.User, error)
	forgotFn func(ctx context.Context, email string) error
	resetFn  func(ctx context.Context, email, otp, newPassword string) error
}

func (m *mockUserService) Signup(ctx context.Context, name, email, phone, password, role string) (*domain.User, string, error) {
	return m.signupFn(ctx, name, email, phone, password, role)
}

func (m *mockUserService) Login(ctx context.Context, email, password, role string) (*domain.User, string, error) {
	return m.loginFn(ctx, email, password, role)
}

func (m *mockUserService) Verify(ctx context.Context, tokenString string) (*domain.User, error) {
	return m.verifyFn(ctx, tokenString)
}

func (m *mockUserService) ForgotPassword(ctx context.Context, email string) error {
	return m.forgotFn(ctx, email)
}

func (m *mockUserService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return m.resetFn(ctx, email, otp, newPassword)
}

func newAuthRouter(svc UserService) *chi.Mux {
	h := NewAuthHandler(svc, logger.NewNop())
	mux := chi.NewRouter()
	mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.HandleSignup)
		r.Post("/login", h.HandleLogin)
		r.Get("/verify", h.HandleVerify)
		r.Post("/forgot-password", h.HandleForgotPassword)
		r.Post("/reset-password", h.HandleResetPassword)
	})
	return mux
}

func postJSON(t *testing.T, mux *chi.Mux, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleSignup(t *testing.T) {
	svc := &mockUserService{
		signupFn: func(_ context.Context, name, email, phone, password, role string) (*domain.User, string, error) {
			if email == "taken@example.com" {
				return nil, "", domain.ErrUserAlreadyExists
			}
			return &domain.User{ID: "u1", Name: name, Email: email, Role: "buyer"}, "signed-token", nil
		},
	}
	mux := newAuthRouter(svc)

	t.Run("created", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Jane Doe","email":"jane@example.com","password":"hunter22"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, "signed-token", body["token"])
		user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
		assert.Equal(t, "jane@example.com", user["email"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/signup", `{"name":"Jane Doe","email":"taken@example.com","password":"hunter22"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User already exists with this email", decodeBody(t, rec)["message"])
	})

	t.Run("field validation", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/signup", `{"name":"","email":"not-an-email","password":"abc","role":"admin"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "Validation failed", body["message"])
		assert.Len(t, body["errors"], 4)
	})
}

func TestHandleLogin(t *testing.T) {
	svc := &mockUserService{
		loginFn: func(_ context.Context, email, password, role string) (*domain.User, string, error) {
			switch {
			case email == "jane@example.com" && password == "hunter22" && role == "seller":
				return &domain.User{ID: "u1", Email: email, Role: role}, "signed-token", nil
			case email == "jane@example.com" && role != "seller":
				return nil, "", domain.ErrRoleMismatch
			default:
				return nil, "", domain.ErrInvalidCredentials
			}
		},
	}
	mux := newAuthRouter(svc)

	t.Run("success", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/login", `{"email":"jane@example.com","password":"hunter22","role":"seller"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "signed-token", decodeBody(t, rec)["token"])
	})

	t.Run("role mismatch names the role", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/login", `{"email":"jane@example.com","password":"hunter22","role":"buyer"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No buyer account found with this email", decodeBody(t, rec)["message"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/login", `{"email":"jane@example.com","password":"wrong","role":"seller"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["message"])
	})
}

func TestHandleVerify(t *testing.T) {
	svc := &mockUserService{
		verifyFn: func(_ context.Context, tokenString string) (*domain.User, error) {
			if tokenString == "good-token" {
				return &domain.User{ID: "u1", Email: "jane@example.com"}, nil
			}
			return nil, domain.ErrInvalidCredentials
		},
	}
	mux := newAuthRouter(svc)

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, true, data["isValid"])
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleForgotPassword(t *testing.T) {
	var requested string
	svc := &mockUserService{
		forgotFn: func(_ context.Context, email string) error {
			requested = email
			return nil
		},
	}
	mux := newAuthRouter(svc)

	t.Run("accepted", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/forgot-password", `{"email":"jane@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jane@example.com", requested)
		assert.Equal(t, "If the email exists, an OTP has been sent", decodeBody(t, rec)["message"])
	})

	t.Run("missing email", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/forgot-password", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleResetPassword(t *testing.T) {
	svc := &mockUserService{
		resetFn: func(_ context.Context, email, otp, newPassword string) error {
			if otp != "123456" {
				return domain.ErrInvalidOTP
			}
			return nil
		},
	}
	mux := newAuthRouter(svc)

	t.Run("success", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/reset-password", `{"email":"jane@example.com","otp":"123456","newPassword":"newpass99"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Password has been reset", decodeBody(t, rec)["message"])
	})

	t.Run("wrong otp", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/reset-password", `{"email":"jane@example.com","otp":"000000","newPassword":"newpass99"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or expired OTP", decodeBody(t, rec)["message"])
	})

	t.Run("short password", func(t *testing.T) {
		rec := postJSON(t, mux, "/api/auth/reset-password", `{"email":"jane@example.com","otp":"123456","newPassword":"abc"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Password must be at least 6 characters", decodeBody(t, rec)["message"])
	})
}