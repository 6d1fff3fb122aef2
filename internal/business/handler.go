package business

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// POST /auth/business/register/
func (h *Handler) Register(c *gin.Context) {
	var req OnboardingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrPasswordMismatch),
			errors.Is(err, auth.ErrInvalidPhone),
			errors.Is(err, ErrConsentRequired),
			errors.Is(err, ErrDealOrReason):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Business registered successfully. OTP sent.",
		"business": b,
		"user_id":  user.ID,
		"email":    user.Email,
	})
}

// GET /auth/business/:id/profile/
func (h *Handler) PublicProfile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PATCH /auth/business/:id/update_business/
func (h *Handler) Update(c *gin.Context) {
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, err := h.service.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBusinessNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found."})
		case errors.Is(err, ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Business updated successfully.", "business": b})
}
