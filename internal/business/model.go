package business

import (
	"errors"
	"time"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/auth"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/deals"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrNotAuthorized    = errors.New("not authorized to update this business")
	ErrConsentRequired  = errors.New("data processing consent is required")
	ErrDealOrReason     = errors.New("provide either a deal or a no_deal_reason")
)

type Business struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	BusinessName           string    `json:"business_name"`
	BusinessEmail          string    `json:"business_email"`
	BusinessPhone          string    `json:"business_phone"`
	Designation            string    `json:"designation"`
	Website                string    `json:"website"`
	RegistrationNo         string    `json:"registration_no"`
	BusinessAddress        string    `json:"business_address"`
	BusinessCity           string    `json:"business_city"`
	BusinessState          string    `json:"business_state"`
	BusinessCountry        string    `json:"business_country"`
	Industry               string    `json:"industry"`
	Description            string    `json:"description"`
	BusinessLogoURL        *string   `json:"business_logo_url,omitempty"`
	BusinessCoverURL       *string   `json:"business_cover_url,omitempty"`
	OnboardingNoDealReason *string   `json:"onboarding_no_deal_reason,omitempty"`
	IsVerified             bool      `json:"is_verified"`
	StripeAccountID        *string   `json:"-"`
	IsOnboardingCompleted  bool      `json:"is_onboarding_completed"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Profile is the business response shape: the business record plus its
// owner, deals, and aggregate subscriber count.
type Profile struct {
	*Business
	User             *auth.User    `json:"user,omitempty"`
	Deals            []*deals.Deal `json:"deals"`
	SubscribersCount int           `json:"business_subscribers_count"`
}

// OnboardingInput is the composite payload the 3-step wizard submits:
// user account, business profile, and either an inline first deal or a
// reason for not creating one.
type OnboardingInput struct {
	// Step 1: basic details
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	BusinessName    string `json:"business_name" validate:"required"`
	Designation     string `json:"designation" validate:"required"`
	BusinessEmail   string `json:"business_email" validate:"required,email"`
	BusinessPhone   string `json:"business_phone" validate:"required"`
	Description     string `json:"description" validate:"required"`
	BusinessLogoURL string `json:"business_logo_url" validate:"required,url"`

	// Step 2: legal info
	RegistrationNo  string `json:"registration_no" validate:"required"`
	Website         string `json:"website" validate:"required,url"`
	BusinessAddress string `json:"business_address" validate:"required"`
	BusinessCity    string `json:"business_city" validate:"required"`
	BusinessState   string `json:"business_state" validate:"required"`
	BusinessCountry string `json:"business_country" validate:"required"`
	Industry        string `json:"industry" validate:"required"`

	// Step 3: promotion
	BusinessCoverURL string       `json:"business_cover_url"`
	Deal             *deals.Draft `json:"deal"`
	NoDealReason     string       `json:"no_deal_reason"`
	Consent          bool         `json:"consent"`
}

type UpdateInput struct {
	BusinessName     *string `json:"business_name"`
	BusinessEmail    *string `json:"business_email"`
	BusinessPhone    *string `json:"business_phone"`
	Designation      *string `json:"designation"`
	Website          *string `json:"website"`
	RegistrationNo   *string `json:"registration_no"`
	BusinessAddress  *string `json:"business_address"`
	BusinessCity     *string `json:"business_city"`
	BusinessState    *string `json:"business_state"`
	BusinessCountry  *string `json:"business_country"`
	Industry         *string `json:"industry"`
	Description      *string `json:"description"`
	BusinessLogoURL  *string `json:"business_logo_url"`
	BusinessCoverURL *string `json:"business_cover_url"`
}
