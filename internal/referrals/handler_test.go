package referrals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/stripe"
)

const testWebhookSecret = "whsec_test_secret"

func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func newReferralRouter(fx *fixture, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(fx.svc, testWebhookSecret, "https://dealshark.com")

	r := gin.New()
	r.GET("/referrals/verify/", handler.Verify)
	r.POST("/referrals/create-payment/", handler.CreatePayment)
	r.POST("/referrals/webhook/", handler.Webhook)

	authed := r.Group("", fakeAuth(userID))
	authed.POST("/referrals/subscribe/", handler.Subscribe)
	authed.POST("/referrals/unsubscribe/", handler.Unsubscribe)
	authed.GET("/referrals/my-subscriptions", handler.MySubscriptions)
	authed.GET("/referrals/:businessId/subscribers", handler.Subscribers)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubscribeEndpoint_CreatedThenOK(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "cust-1")

	w := doJSON(r, http.MethodPost, "/referrals/subscribe/", map[string]any{"deal_id": "deal-1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/referrals/subscribe/", map[string]any{"deal_id": "deal-1"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 on repeat subscribe, got %d", w.Code)
	}
}

func TestSubscribeEndpoint_BusinessForbidden(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "biz-owner")

	w := doJSON(r, http.MethodPost, "/referrals/subscribe/", map[string]any{"deal_id": "deal-1"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for business account, got %d: %s", w.Code, w.Body.String())
	}
}

func TestVerifyEndpoint(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "cust-1")

	sub, _, err := fx.svc.Subscribe(context.Background(), "deal-1", "cust-1")
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(r, http.MethodGet, "/referrals/verify/?ref="+sub.ReferralCode, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/referrals/verify/?ref=NOPE0000", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown code, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/referrals/verify/", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing ref param, got %d", w.Code)
	}
}

func TestCreatePaymentEndpoint_AmountValidation(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "cust-1")

	sub, _, err := fx.svc.Subscribe(context.Background(), "deal-1", "cust-1")
	if err != nil {
		t.Fatal(err)
	}

	// non-numeric amount fails binding
	w := doJSON(r, http.MethodPost, "/referrals/create-payment/", map[string]any{
		"ref_id": sub.ReferralCode, "amount": "",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf(`amount "": expected 400, got %d`, w.Code)
	}

	for _, amount := range []float64{0, -5} {
		w := doJSON(r, http.MethodPost, "/referrals/create-payment/", map[string]any{
			"ref_id": sub.ReferralCode, "amount": amount,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("amount %v: expected 400, got %d", amount, w.Code)
		}
	}

	w = doJSON(r, http.MethodPost, "/referrals/create-payment/", map[string]any{
		"ref_id": sub.ReferralCode, "amount": 0.01,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("amount 0.01: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Payment struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"payment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Payment.CheckoutURL == "" {
		t.Error("expected checkout_url in response")
	}
}

func webhookEvent(t *testing.T, code string, amount int64) []byte {
	t.Helper()
	intent := map[string]any{
		"id":              "pi_test",
		"amount_received": amount,
		"currency":        "usd",
		"metadata":        map[string]string{"referral_code": code},
	}
	event := map[string]any{
		"id":   "evt_test",
		"type": "payment_intent.succeeded",
		"data": map[string]any{"object": intent},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func TestWebhookEndpoint_ValidSignature(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "cust-1")
	ctx := context.Background()

	sub, _, err := fx.svc.Subscribe(ctx, "deal-1", "cust-1")
	if err != nil {
		t.Fatal(err)
	}
	fx.users.SetStripeAccount(ctx, "cust-1", "acct_referrer")
	fx.biz.SetStripeAccount(ctx, "biz-1", "acct_business")

	payload := webhookEvent(t, sub.ReferralCode, 10000)
	req := httptest.NewRequest(http.MethodPost, "/referrals/webhook/", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, testWebhookSecret, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(fx.gateway.transfers) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(fx.gateway.transfers))
	}
}

func TestWebhookEndpoint_BadSignature(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "cust-1")

	payload := webhookEvent(t, "ABCD1234", 10000)
	req := httptest.NewRequest(http.MethodPost, "/referrals/webhook/", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, "whsec_wrong", time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad signature, got %d", w.Code)
	}
	if len(fx.gateway.transfers) != 0 {
		t.Error("transfers made despite invalid signature")
	}
}

func TestWebhookEndpoint_IgnoresOtherEvents(t *testing.T) {
	fx := newFixture()
	r := newReferralRouter(fx, "cust-1")

	payload, _ := json.Marshal(map[string]any{
		"id":   "evt_other",
		"type": "charge.refunded",
		"data": map[string]any{"object": map[string]any{}},
	})
	req := httptest.NewRequest(http.MethodPost, "/referrals/webhook/", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, testWebhookSecret, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for ignored event, got %d", w.Code)
	}
}

func TestSubscribersEndpoint_OwnershipGuard(t *testing.T) {
	fx := newFixture()

	if _, _, err := fx.svc.Subscribe(context.Background(), "deal-1", "cust-1"); err != nil {
		t.Fatal(err)
	}

	r := newReferralRouter(fx, "cust-1")
	w := doJSON(r, http.MethodGet, "/referrals/biz-1/subscribers", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", w.Code)
	}

	r = newReferralRouter(fx, "biz-owner")
	w = doJSON(r, http.MethodGet, "/referrals/biz-1/subscribers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d: %s", w.Code, w.Body.String())
	}

	var report SubscribersReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.TotalSubscribers != 1 {
		t.Errorf("total %d, want 1", report.TotalSubscribers)
	}
}
