package referrals

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/stripe"
)

type Handler struct {
	service       *Service
	webhookSecret string
	frontendURL   string
}

func NewHandler(service *Service, webhookSecret, frontendURL string) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
		frontendURL:   frontendURL,
	}
}

func writeReferralError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDealNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrReferralNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrBusinessNoSubscribe), errors.Is(err, ErrNotYourBusiness):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDealInactive), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrNoStripeAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

type subscribeRequest struct {
	DealID string `json:"deal_id" binding:"required"`
}

// Subscribe creates (or returns) the caller's subscription to a deal.
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deal_id is required"})
		return
	}

	userID := c.GetString("userID")
	sub, created, err := h.service.Subscribe(c.Request.Context(), req.DealID, userID)
	if err != nil {
		writeReferralError(c, err)
		return
	}

	status := http.StatusOK
	message := "Already subscribed to this deal"
	if created {
		status = http.StatusCreated
		message = "Subscribed successfully"
	}
	c.JSON(status, gin.H{"message": message, "subscription": sub})
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deal_id is required"})
		return
	}

	userID := c.GetString("userID")
	if err := h.service.Unsubscribe(c.Request.Context(), req.DealID, userID); err != nil {
		writeReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed successfully"})
}

func (h *Handler) MySubscriptions(c *gin.Context) {
	subs, err := h.service.MySubscriptions(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeReferralError(c, err)
		return
	}
	if subs == nil {
		subs = []*Subscription{}
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (h *Handler) Subscribers(c *gin.Context) {
	report, err := h.service.Subscribers(c.Request.Context(),
		c.GetString("userID"), c.Param("businessId"))
	if err != nil {
		writeReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Verify resolves a referral token for the public checkout page.
func (h *Handler) Verify(c *gin.Context) {
	code := c.Query("ref")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ref query parameter is required"})
		return
	}

	info, err := h.service.Verify(c.Request.Context(), code)
	if err != nil {
		writeReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type createPaymentRequest struct {
	RefID  string  `json:"ref_id" binding:"required"`
	Amount float64 `json:"amount"`
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ref_id and a numeric amount are required"})
		return
	}

	checkoutURL, err := h.service.CreatePayment(c.Request.Context(), req.RefID, req.Amount)
	if err != nil {
		writeReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": gin.H{"checkout_url": checkoutURL}})
}

func (h *Handler) CreateOnboardingLink(c *gin.Context) {
	url, err := h.service.CreateOnboardingLink(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"onboarding_url": url})
}

func (h *Handler) OnboardingStatus(c *gin.Context) {
	account, err := h.service.OnboardingStatus(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"details_submitted": account.DetailsSubmitted,
		"payouts_enabled":   account.PayoutsEnabled,
		"charges_enabled":   account.ChargesEnabled,
	})
}

// OnboardingRedirect is Stripe's return-URL landing; it bounces the
// user back to the frontend dashboard.
func (h *Handler) OnboardingRedirect(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/dashboard")
}

// Webhook receives Stripe events. The raw body is needed for the
// signature check, so read it before any binding.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	secret := h.webhookSecret
	if secret == "" {
		secret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	}

	event, err := stripe.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		intent, err := event.PaymentIntent()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		if err := h.service.HandlePaymentSucceeded(c.Request.Context(), intent); err != nil {
			writeReferralError(c, err)
			return
		}
	default:
		log.WithField("type", event.Type).Debug("ignoring webhook event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
