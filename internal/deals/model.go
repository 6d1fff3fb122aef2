package deals

import (
	"errors"
	"time"
)

const (
	RewardCommission = "commission"
	RewardNone       = "no_reward"
)

// Reasons a business may give for posting a deal without a referrer
// reward. Matches the options the onboarding wizard offers.
var NoRewardReasons = []string{"big_discount", "exclusive", "high_demand"}

var (
	ErrInvalidRewardType    = errors.New("reward_type must be commission or no_reward")
	ErrMissingIncentive     = errors.New("commission deals require a customer incentive amount")
	ErrMissingNoRewardWhy   = errors.New("no-reward deals require a justification reason")
	ErrConflictingReward    = errors.New("a deal carries either an incentive or a no-reward reason, not both")
	ErrUnknownNoRewardWhy   = errors.New("unknown no-reward reason")
	ErrNegativeIncentive    = errors.New("customer incentive must be a positive amount")
	ErrDealNotFound         = errors.New("deal not found")
	ErrNotOwner             = errors.New("deal does not belong to this business")
	ErrDuplicateCommission  = errors.New("you already have a deal with this commission amount")
	ErrNotBusiness          = errors.New("only businesses can manage deals")
	ErrStripeNotConnected   = errors.New("business must connect a Stripe account before creating deals")
	ErrOnboardingIncomplete = errors.New("business must complete Stripe onboarding before creating deals")
)

// BusinessMini is the slice of the owning business embedded in deal
// responses.
type BusinessMini struct {
	ID           string  `json:"id"`
	BusinessName string  `json:"business_name"`
	Email        string  `json:"business_email"`
	Phone        string  `json:"business_phone"`
	Website      string  `json:"website"`
	Industry     string  `json:"industry"`
	LogoURL      *string `json:"business_logo_url,omitempty"`
}

// SubscriptionInfo is attached to a deal when the request carries a
// user context, so the frontend can render subscribe/unsubscribe state
// straight from the server.
type SubscriptionInfo struct {
	IsSubscribed bool   `json:"is_subscribed"`
	ReferralCode string `json:"referral_code,omitempty"`
	ReferralLink string `json:"referral_link,omitempty"`
}

type Deal struct {
	ID                string            `json:"id"`
	BusinessID        string            `json:"business_id"`
	DealName          string            `json:"deal_name"`
	DealDescription   string            `json:"deal_description"`
	RewardType        string            `json:"reward_type"`
	CustomerIncentive *float64          `json:"customer_incentive,omitempty"`
	NoRewardReason    *string           `json:"no_reward_reason,omitempty"`
	PosterText        string            `json:"poster_text"`
	IsActive          bool              `json:"is_active"`
	IsFeatured        bool              `json:"is_featured"`
	SubscribersCount  int               `json:"subscribers_count"`
	Business          *BusinessMini     `json:"business,omitempty"`
	SubscriptionInfo  *SubscriptionInfo `json:"subscription_info,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Draft is the write shape for creating or replacing a deal. The
// reward fields form a tagged union keyed on RewardType.
type Draft struct {
	DealName          string   `json:"deal_name" binding:"required"`
	DealDescription   string   `json:"deal_description"`
	RewardType        string   `json:"reward_type" binding:"required"`
	CustomerIncentive *float64 `json:"customer_incentive"`
	NoRewardReason    *string  `json:"no_reward_reason"`
	PosterText        string   `json:"poster_text"`
}

// ValidateRewardShape enforces the commission/no-reward tagged union:
// exactly one side of the union may be populated, and it must match
// the declared reward type.
func (d *Draft) ValidateRewardShape() error {
	switch d.RewardType {
	case RewardCommission:
		if d.CustomerIncentive == nil {
			return ErrMissingIncentive
		}
		if *d.CustomerIncentive <= 0 {
			return ErrNegativeIncentive
		}
		if d.NoRewardReason != nil && *d.NoRewardReason != "" {
			return ErrConflictingReward
		}
	case RewardNone:
		if d.NoRewardReason == nil || *d.NoRewardReason == "" {
			return ErrMissingNoRewardWhy
		}
		if !validNoRewardReason(*d.NoRewardReason) {
			return ErrUnknownNoRewardWhy
		}
		if d.CustomerIncentive != nil {
			return ErrConflictingReward
		}
	default:
		return ErrInvalidRewardType
	}
	return nil
}

func validNoRewardReason(reason string) bool {
	for _, r := range NoRewardReasons {
		if r == reason {
			return true
		}
	}
	return false
}
