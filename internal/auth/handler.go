package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BusinessProfileSource lets the profile endpoint embed the caller's
// business profile without auth importing the business package.
type BusinessProfileSource interface {
	ProfileByUserID(ctx context.Context, userID string) (any, error)
}

type Handler struct {
	service    *Service
	businesses BusinessProfileSource
}

func NewHandler(service *Service, businesses BusinessProfileSource) *Handler {
	return &Handler{service: service, businesses: businesses}
}

// POST /auth/register/
func (h *Handler) Register(c *gin.Context) {
	var req RegisterUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, phone number and password are required"})
		return
	}

	user, existed, err := h.service.RegisterUser(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists),
			errors.Is(err, ErrPasswordMismatch),
			errors.Is(err, ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if existed {
		c.JSON(http.StatusOK, gin.H{
			"message": "User already exists but not verified. OTP resent to email.",
			"user_id": user.ID,
			"email":   user.Email,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email for OTP.",
		"user_id": user.ID,
		"email":   user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login/
func (h *Handler) Login(c *gin.Context) {
	h.login(c, "")
}

// POST /auth/business/login/
func (h *Handler) BusinessLogin(c *gin.Context) {
	h.login(c, UserTypeBusiness)
}

func (h *Handler) login(c *gin.Context, requiredType string) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	user, tokens, err := h.service.Login(c.Request.Context(), req.Email, req.Password, requiredType)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		case errors.Is(err, ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		case errors.Is(err, ErrWrongAccountType):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"tokens":  tokens,
		"user":    user,
	})
}

// POST /auth/refresh/
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token required"})
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// POST /auth/logout/
// Tokens are stateless; logout is client-side token disposal. Kept for
// API symmetry with the frontend and returns success unconditionally.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type otpVerifyRequest struct {
	Email   string `json:"email" binding:"required,email"`
	OTPCode string `json:"otp_code" binding:"required,len=6"`
	OTPType string `json:"otp_type"`
}

// POST /auth/verify-otp/
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and 6-digit otp_code are required"})
		return
	}
	if req.OTPType == "" {
		req.OTPType = OTPTypeEmail
	}

	user, err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.OTPCode, req.OTPType)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account verified", "user": user})
}

// POST /auth/resend-otp/
func (h *Handler) ResendOTP(c *gin.Context) {
	var req struct {
		Email   string `json:"email" binding:"required,email"`
		OTPType string `json:"otp_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if req.OTPType == "" {
		req.OTPType = OTPTypeEmail
	}

	err := h.service.ResendOTP(c.Request.Context(), req.Email, req.OTPType)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, ErrOTPRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP resent"})
}

// GET /auth/profile/
func (h *Handler) Profile(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := gin.H{"user": user}
	if user.UserType == UserTypeBusiness && h.businesses != nil {
		if profile, err := h.businesses.ProfileByUserID(c.Request.Context(), user.ID); err == nil {
			resp["business_profile"] = profile
		}
	}
	c.JSON(http.StatusOK, resp)
}

// PATCH /auth/profile/
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully.", "user": user})
}

// POST /auth/change-password/
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current, new and confirm passwords are required"})
		return
	}

	err := h.service.ChangePassword(
		c.Request.Context(),
		c.GetString("userID"),
		req.CurrentPassword,
		req.NewPassword,
		req.ConfirmPassword,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrWrongPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
}
