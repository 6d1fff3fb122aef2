package deals

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func writeDealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDealNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotBusiness),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrStripeNotConnected),
		errors.Is(err, ErrOnboardingIncomplete):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidRewardType),
		errors.Is(err, ErrMissingIncentive),
		errors.Is(err, ErrMissingNoRewardWhy),
		errors.Is(err, ErrConflictingReward),
		errors.Is(err, ErrUnknownNoRewardWhy),
		errors.Is(err, ErrNegativeIncentive),
		errors.Is(err, ErrDuplicateCommission):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// POST /deals/
func (h *Handler) Create(c *gin.Context) {
	var draft Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	deal, err := h.service.Create(c.Request.Context(), c.GetString("userID"), draft)
	if err != nil {
		writeDealError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// GET /deals/all/
func (h *Handler) ListAll(c *gin.Context) {
	params := ListParams{
		Search:     c.Query("search"),
		Industry:   c.Query("industry"),
		RewardType: c.Query("filter"),
	}

	list, err := h.service.ListAll(c.Request.Context(), params, c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": list})
}

// GET /deals/:id/
func (h *Handler) Get(c *gin.Context) {
	deal, err := h.service.Get(c.Request.Context(), c.Param("id"), c.Query("user_id"))
	if err != nil {
		writeDealError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deal": deal})
}

// PUT/PATCH /deals/:id/
func (h *Handler) Update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	deal, err := h.service.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), in)
	if err != nil {
		writeDealError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deal updated successfully.", "deal": deal})
}

// GET /deals/my/
func (h *Handler) MyDeals(c *gin.Context) {
	list, err := h.service.MyDeals(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeDealError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": list})
}

// GET /deals/:id/by-business/
func (h *Handler) ByBusiness(c *gin.Context) {
	list, err := h.service.ByBusiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": list})
}

// GET /deals/industries/all/
func (h *Handler) Industries(c *gin.Context) {
	industries, err := h.service.Industries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"industries": gin.H{"industries": industries}})
}

// GET /deals/deal-poster/options/
func (h *Handler) PosterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": h.service.PosterOptions()})
}
