package deals

import (
	"context"
)

// Store is the data-access contract the service depends on.
type Store interface {
	Create(ctx context.Context, deal *Deal) error
	GetByID(ctx context.Context, id string) (*Deal, error)
	ListAll(ctx context.Context, params ListParams) ([]*Deal, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*Deal, error)
	Update(ctx context.Context, deal *Deal) error
	HasCommissionAmount(ctx context.Context, businessID string, incentive float64, excludeID string) (bool, error)
	SubscriptionInfoFor(ctx context.Context, dealID, userID string) (*SubscriptionInfo, error)
	Industries(ctx context.Context) ([]string, error)
}

// BusinessInfo is the slice of a business profile the deal workflows
// need for ownership and Stripe gating.
type BusinessInfo struct {
	ID                  string
	StripeAccountID     string
	OnboardingCompleted bool
}

// BusinessReader resolves the business owned by a user. Implemented by
// the business repository.
type BusinessReader interface {
	InfoByUserID(ctx context.Context, userID string) (*BusinessInfo, error)
}

type Service struct {
	repo       Store
	businesses BusinessReader
}

func NewService(repo Store, businesses BusinessReader) *Service {
	return &Service{repo: repo, businesses: businesses}
}

// Create posts a new deal for the business owned by userID. Requires a
// connected Stripe account with completed onboarding, so commission
// payouts can actually be made.
func (s *Service) Create(ctx context.Context, userID string, draft Draft) (*Deal, error) {
	business, err := s.businesses.InfoByUserID(ctx, userID)
	if err != nil {
		return nil, ErrNotBusiness
	}

	if business.StripeAccountID == "" {
		return nil, ErrStripeNotConnected
	}
	if !business.OnboardingCompleted {
		return nil, ErrOnboardingIncomplete
	}

	return s.CreateForBusiness(ctx, business.ID, draft)
}

// CreateForBusiness skips the Stripe gate; used during business
// onboarding where the inline deal is created before Stripe connect.
func (s *Service) CreateForBusiness(ctx context.Context, businessID string, draft Draft) (*Deal, error) {
	if err := draft.ValidateRewardShape(); err != nil {
		return nil, err
	}

	if draft.RewardType == RewardCommission {
		dup, err := s.repo.HasCommissionAmount(ctx, businessID, *draft.CustomerIncentive, "")
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, ErrDuplicateCommission
		}
	}

	deal := &Deal{
		BusinessID:        businessID,
		DealName:          draft.DealName,
		DealDescription:   draft.DealDescription,
		RewardType:        draft.RewardType,
		CustomerIncentive: draft.CustomerIncentive,
		NoRewardReason:    draft.NoRewardReason,
		PosterText:        draft.PosterText,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// Get returns one deal; when userID is set the response carries the
// caller's subscription_info so the client never computes it locally.
func (s *Service) Get(ctx context.Context, dealID, userID string) (*Deal, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		if err := s.attachSubscriptionInfo(ctx, deal, userID); err != nil {
			return nil, err
		}
	}
	return deal, nil
}

// ListAll is the public marketplace feed with optional filters.
func (s *Service) ListAll(ctx context.Context, params ListParams, userID string) ([]*Deal, error) {
	list, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		for _, d := range list {
			if err := s.attachSubscriptionInfo(ctx, d, userID); err != nil {
				return nil, err
			}
		}
	}
	return list, nil
}

func (s *Service) attachSubscriptionInfo(ctx context.Context, deal *Deal, userID string) error {
	info, err := s.repo.SubscriptionInfoFor(ctx, deal.ID, userID)
	if err != nil {
		return err
	}
	deal.SubscriptionInfo = info
	return nil
}

// MyDeals lists the deals of the business owned by userID.
func (s *Service) MyDeals(ctx context.Context, userID string) ([]*Deal, error) {
	business, err := s.businesses.InfoByUserID(ctx, userID)
	if err != nil {
		return nil, ErrNotBusiness
	}
	return s.repo.ListByBusiness(ctx, business.ID)
}

// ByBusiness is the public listing of one business's deals.
func (s *Service) ByBusiness(ctx context.Context, businessID string) ([]*Deal, error) {
	return s.repo.ListByBusiness(ctx, businessID)
}

// UpdateInput applies a partial update; nil fields keep their current
// value. IsActive covers soft activate/deactivate.
type UpdateInput struct {
	DealName          *string  `json:"deal_name"`
	DealDescription   *string  `json:"deal_description"`
	RewardType        *string  `json:"reward_type"`
	CustomerIncentive *float64 `json:"customer_incentive"`
	NoRewardReason    *string  `json:"no_reward_reason"`
	PosterText        *string  `json:"poster_text"`
	IsActive          *bool    `json:"is_active"`
}

func (s *Service) Update(ctx context.Context, userID, dealID string, in UpdateInput) (*Deal, error) {
	business, err := s.businesses.InfoByUserID(ctx, userID)
	if err != nil {
		return nil, ErrNotBusiness
	}

	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.BusinessID != business.ID {
		return nil, ErrNotOwner
	}

	if in.DealName != nil {
		deal.DealName = *in.DealName
	}
	if in.DealDescription != nil {
		deal.DealDescription = *in.DealDescription
	}
	if in.RewardType != nil {
		deal.RewardType = *in.RewardType
		// switching sides of the union clears the other side
		if *in.RewardType == RewardCommission {
			deal.NoRewardReason = nil
		} else {
			deal.CustomerIncentive = nil
		}
	}
	if in.CustomerIncentive != nil {
		deal.CustomerIncentive = in.CustomerIncentive
	}
	if in.NoRewardReason != nil {
		deal.NoRewardReason = in.NoRewardReason
	}
	if in.PosterText != nil {
		deal.PosterText = *in.PosterText
	}
	if in.IsActive != nil {
		deal.IsActive = *in.IsActive
	}

	draft := Draft{
		DealName:          deal.DealName,
		DealDescription:   deal.DealDescription,
		RewardType:        deal.RewardType,
		CustomerIncentive: deal.CustomerIncentive,
		NoRewardReason:    deal.NoRewardReason,
		PosterText:        deal.PosterText,
	}
	if err := draft.ValidateRewardShape(); err != nil {
		return nil, err
	}

	if deal.RewardType == RewardCommission {
		dup, err := s.repo.HasCommissionAmount(ctx, business.ID, *deal.CustomerIncentive, deal.ID)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, ErrDuplicateCommission
		}
	}

	if err := s.repo.Update(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *Service) Industries(ctx context.Context) ([]string, error) {
	return s.repo.Industries(ctx)
}

// PosterOptions are the caption templates offered to businesses.
// Placeholders {incentive} / ${incentive} are substituted client-side.
type PosterOptions struct {
	CommissionBased []string `json:"commission_based"`
	NoRewardBased   []string `json:"no_reward_based"`
}

func (s *Service) PosterOptions() PosterOptions {
	return PosterOptions{
		CommissionBased: []string{
			"Earn {incentive}% commission by sharing this deal!",
			"Invite friends and get ${incentive} reward!",
			"Refer and earn {incentive} on every sale.",
		},
		NoRewardBased: []string{
			"This discount is big enough to share!",
			"Exclusive / Limited offer — don't miss it!",
			"High-demand deal — share with your friends!",
		},
	}
}
