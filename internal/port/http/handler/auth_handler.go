package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/user/domain"
)

type UserService interface {
	Signup(ctx context.Context, name, email, phone, password, role string) (*domain.User, string, error)
	Login(ctx context.Context, email, password, role string) (*domain.User, string, error)
	Verify(ctx context.Context, tokenString string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

type AuthHandler struct {
	service UserService
	logger  logger.Logger
}

func NewAuthHandler(service UserService, log logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: log}
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func toUserView(u *domain.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if fields := validateSignup(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status":  "error",
			"message": "Validation failed",
			"errors":  fields,
		})
		return
	}

	user, token, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Phone, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			h.respondError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		h.logger.Errorf("HandleSignup: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "User created successfully",
		"token":   token,
		"data":    map[string]interface{}{"user": toUserView(user)},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoleMismatch):
			h.respondError(w, http.StatusUnauthorized, "No "+req.Role+" account found with this email")
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.respondError(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			h.logger.Errorf("HandleLogin: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Logged in successfully",
		"token":   token,
		"data":    map[string]interface{}{"user": toUserView(user)},
	})
}

func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		h.respondError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	user, err := h.service.Verify(r.Context(), token)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"user":    toUserView(user),
			"isValid": true,
		},
	})
}

func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		h.respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.Errorf("HandleForgotPassword: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to send OTP email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "If the email exists, an OTP has been sent",
	})
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		h.respondError(w, http.StatusBadRequest, "Email, OTP and new password are required")
		return
	}
	if len(req.NewPassword) < 6 {
		h.respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOTP) || errors.Is(err, domain.ErrUserNotFound) {
			h.respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		h.logger.Errorf("HandleResetPassword: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Password has been reset",
	})
}

func (h *AuthHandler) respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}

func validateSignup(req signupRequest) []map[string]string {
	var fields []map[string]string
	add := func(field, message string) {
		fields = append(fields, map[string]string{"field": field, "message": message})
	}

	if strings.TrimSpace(req.Name) == "" {
		add("name", "name is required")
	}
	if !strings.Contains(req.Email, "@") {
		add("email", "a valid email is required")
	}
	if len(req.Password) < 6 {
		add("password", "password must be at least 6 characters")
	}
	if req.Role != "" && req.Role != "buyer" && req.Role != "seller" {
		add("role", "role must be either 'buyer' or 'seller'")
	}
	return fields
}
