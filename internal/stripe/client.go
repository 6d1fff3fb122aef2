package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// Client is a thin wrapper over the Stripe REST API, covering only the
// Connect surface this service uses: Express accounts, account links,
// checkout sessions, and transfers.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Tests use it
// with an httptest server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// do posts form-encoded params (Stripe does not accept JSON bodies)
// and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return errors.New("missing STRIPE_SECRET_KEY")
	}

	var body io.Reader
	if params != nil {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if params != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// Account is the onboarding-status slice of a Stripe account.
type Account struct {
	ID               string `json:"id"`
	DetailsSubmitted bool   `json:"details_submitted"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	ChargesEnabled   bool   `json:"charges_enabled"`
}

// CreateExpressAccount provisions a Connect Express account for a user
// or business that will receive payouts.
func (c *Client) CreateExpressAccount(ctx context.Context, email string) (*Account, error) {
	params := url.Values{}
	params.Set("type", "express")
	params.Set("email", email)

	var account Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", params, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

type accountLink struct {
	URL string `json:"url"`
}

// CreateAccountLink returns the hosted onboarding URL for an account.
func (c *Client) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := url.Values{}
	params.Set("account", accountID)
	params.Set("refresh_url", refreshURL)
	params.Set("return_url", returnURL)
	params.Set("type", "account_onboarding")

	var link accountLink
	if err := c.do(ctx, http.MethodPost, "/v1/account_links", params, &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

// CheckoutSession is the hosted-payment-page handle returned to the
// referral checkout flow.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CheckoutParams struct {
	AmountCents  int64
	Currency     string
	ProductName  string
	ReferralCode string
	SuccessURL   string
	CancelURL    string
}

// CreateCheckoutSession opens a one-off payment session. The referral
// code rides along as payment-intent metadata so the webhook can
// attribute the purchase.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if p.AmountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if p.Currency == "" {
		p.Currency = "usd"
	}

	params := url.Values{}
	params.Set("mode", "payment")
	params.Set("success_url", p.SuccessURL)
	params.Set("cancel_url", p.CancelURL)
	params.Set("line_items[0][quantity]", "1")
	params.Set("line_items[0][price_data][currency]", p.Currency)
	params.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.AmountCents, 10))
	params.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	params.Set("payment_intent_data[metadata][referral_code]", p.ReferralCode)

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", params, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateTransfer moves part of a received payment to a connected
// account (the business's or referrer's cut).
func (c *Client) CreateTransfer(ctx context.Context, amountCents int64, currency, destination, transferGroup string) error {
	if currency == "" {
		currency = "usd"
	}

	params := url.Values{}
	params.Set("amount", strconv.FormatInt(amountCents, 10))
	params.Set("currency", currency)
	params.Set("destination", destination)
	params.Set("transfer_group", transferGroup)

	return c.do(ctx, http.MethodPost, "/v1/transfers", params, nil)
}
