package business

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/auth"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/deals"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/validation"
)

// Store is the data-access contract the service depends on.
type Store interface {
	Create(ctx context.Context, b *Business) error
	GetByID(ctx context.Context, id string) (*Business, error)
	GetByUserID(ctx context.Context, userID string) (*Business, error)
	Update(ctx context.Context, b *Business) error
	SubscribersCount(ctx context.Context, businessID string) (int, error)
}

type Service struct {
	repo      Store
	users     *auth.Service
	deals     *deals.Service
	validator *validation.Validator
}

func NewService(repo Store, users *auth.Service, dealService *deals.Service) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		deals:     dealService,
		validator: validation.New(),
	}
}

// Register handles the onboarding wizard's terminal submit: one
// composite payload creating the user account, the business profile,
// and either an inline first deal or a recorded no-deal reason. An OTP
// email is sent at the end; verification gates login, not creation.
func (s *Service) Register(ctx context.Context, in OnboardingInput) (*Business, *auth.User, error) {
	if err := s.validator.Struct(&in); err != nil {
		return nil, nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, nil, auth.ErrPasswordMismatch
	}
	if !in.Consent {
		return nil, nil, ErrConsentRequired
	}

	if in.Deal == nil && in.NoDealReason == "" {
		return nil, nil, ErrDealOrReason
	}
	if in.Deal != nil {
		// fail before any write, not after the user exists
		if err := in.Deal.ValidateRewardShape(); err != nil {
			return nil, nil, err
		}
	}

	user, err := s.users.CreateBusinessUser(
		ctx, in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.Password,
	)
	if err != nil {
		return nil, nil, err
	}

	b := &Business{
		UserID:          user.ID,
		BusinessName:    in.BusinessName,
		BusinessEmail:   in.BusinessEmail,
		BusinessPhone:   in.BusinessPhone,
		Designation:     in.Designation,
		Website:         in.Website,
		RegistrationNo:  in.RegistrationNo,
		BusinessAddress: in.BusinessAddress,
		BusinessCity:    in.BusinessCity,
		BusinessState:   in.BusinessState,
		BusinessCountry: in.BusinessCountry,
		Industry:        in.Industry,
		Description:     in.Description,
	}
	if in.BusinessLogoURL != "" {
		b.BusinessLogoURL = &in.BusinessLogoURL
	}
	if in.BusinessCoverURL != "" {
		b.BusinessCoverURL = &in.BusinessCoverURL
	}
	if in.NoDealReason != "" {
		b.OnboardingNoDealReason = &in.NoDealReason
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, nil, err
	}

	if in.Deal != nil {
		if _, err := s.deals.CreateForBusiness(ctx, b.ID, *in.Deal); err != nil {
			return nil, nil, err
		}
	}

	if err := s.users.SendVerificationOTP(ctx, user); err != nil {
		log.WithError(err).WithField("email", user.Email).Warn("business registered but OTP could not be issued")
	}
	return b, user, nil
}

// Profile assembles the full business response: record, owner, deals,
// subscriber count.
func (s *Service) Profile(ctx context.Context, businessID string) (*Profile, error) {
	b, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, b)
}

// ProfileByUserID implements auth.BusinessProfileSource.
func (s *Service) ProfileByUserID(ctx context.Context, userID string) (any, error) {
	b, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, b)
}

func (s *Service) buildProfile(ctx context.Context, b *Business) (*Profile, error) {
	dealList, err := s.deals.ByBusiness(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.SubscribersCount(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, b.UserID)
	if err != nil {
		user = nil // profile is still useful without the owner record
	}

	return &Profile{
		Business:         b,
		User:             user,
		Deals:            dealList,
		SubscribersCount: count,
	}, nil
}

// Update applies a partial update; only the owner may modify their
// business.
func (s *Service) Update(ctx context.Context, userID, businessID string, in UpdateInput) (*Business, error) {
	b, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotAuthorized
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&b.BusinessName, in.BusinessName)
	apply(&b.BusinessEmail, in.BusinessEmail)
	apply(&b.BusinessPhone, in.BusinessPhone)
	apply(&b.Designation, in.Designation)
	apply(&b.Website, in.Website)
	apply(&b.RegistrationNo, in.RegistrationNo)
	apply(&b.BusinessAddress, in.BusinessAddress)
	apply(&b.BusinessCity, in.BusinessCity)
	apply(&b.BusinessState, in.BusinessState)
	apply(&b.BusinessCountry, in.BusinessCountry)
	apply(&b.Industry, in.Industry)
	apply(&b.Description, in.Description)
	if in.BusinessLogoURL != nil {
		b.BusinessLogoURL = in.BusinessLogoURL
	}
	if in.BusinessCoverURL != nil {
		b.BusinessCoverURL = in.BusinessCoverURL
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
