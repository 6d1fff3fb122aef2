package referrals

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

var (
	ErrDealNotFound        = errors.New("invalid deal or referrer ID")
	ErrUserNotFound        = errors.New("invalid deal or referrer ID")
	ErrDealInactive        = errors.New("this deal is not currently active")
	ErrBusinessNoSubscribe = errors.New("business accounts cannot subscribe to deals")
	ErrReferralNotFound    = errors.New("referral not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrNotYourBusiness     = errors.New("not authorized to view these subscribers")
	ErrNoStripeAccount     = errors.New("no connected Stripe account")
)

const referralCodeLength = 8

// DealMini is the deal slice embedded in subscription responses.
type DealMini struct {
	ID                string   `json:"id"`
	DealName          string   `json:"deal_name"`
	DealDescription   string   `json:"deal_description"`
	RewardType        string   `json:"reward_type"`
	CustomerIncentive *float64 `json:"customer_incentive,omitempty"`
	NoRewardReason    *string  `json:"no_reward_reason,omitempty"`
	IsActive          bool     `json:"is_active"`
}

type BusinessMini struct {
	ID           string  `json:"id"`
	BusinessName string  `json:"business_name"`
	Industry     string  `json:"industry"`
	Website      string  `json:"website"`
	LogoURL      *string `json:"business_logo_url,omitempty"`
}

type UserMini struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Subscription is one (customer, deal) referral relationship: the
// unique code and shareable link plus running earnings tallies.
type Subscription struct {
	ID               string        `json:"subscription_id"`
	DealID           string        `json:"-"`
	ReferrerID       string        `json:"-"`
	ReferralCode     string        `json:"referral_code"`
	ReferralLink     string        `json:"referral_link"`
	CommissionEarned float64       `json:"commission_earned"`
	BusinessRevenue  float64       `json:"business_revenue"`
	CreatedAt        time.Time     `json:"created_at"`
	Deal             *DealMini     `json:"deal,omitempty"`
	Business         *BusinessMini `json:"business,omitempty"`
	Referrer         *UserMini     `json:"referrer,omitempty"`
}

// ReferralInfo is the verify-endpoint response: everything the public
// checkout page needs to render.
type ReferralInfo struct {
	RefID    string        `json:"ref_id"`
	Deal     *DealMini     `json:"deal"`
	Business *BusinessMini `json:"business"`
	Referrer *UserMini     `json:"referrer"`
}

// Subscriber is one row of a business's subscriber report.
type Subscriber struct {
	SubscriptionID string    `json:"subscription_id"`
	User           *UserMini `json:"user"`
	DealID         string    `json:"deal_id"`
	DealName       string    `json:"deal_name"`
	ReferralCode   string    `json:"referral_code"`
	SubscribedAt   time.Time `json:"subscribed_at"`
}

// SubscribersReport is the business dashboard payload.
type SubscribersReport struct {
	Business         *BusinessMini `json:"business"`
	TotalSubscribers int           `json:"total_subscribers"`
	Subscribers      []*Subscriber `json:"subscribers"`
}

// Payment tracks a referral checkout through the processor.
type Payment struct {
	ID              string    `json:"id"`
	SubscriptionID  string    `json:"subscription_id"`
	AmountCents     int64     `json:"amount_cents"`
	ReferrerCut     int64     `json:"referrer_cut_cents"`
	BusinessCut     int64     `json:"business_cut_cents"`
	StripeSessionID *string   `json:"stripe_session_id,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode returns an 8-character uppercase alphanumeric
// token, unique per subscription (enforced by the DB constraint).
func GenerateReferralCode() string {
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic(err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}
