package referrals

import (
	"context"
	"errors"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/auth"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/business"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/stripe"
)

// Store is the data-access contract the service depends on.
type Store interface {
	CreateSubscription(ctx context.Context, sub *Subscription) error
	FindSubscription(ctx context.Context, dealID, referrerID string) (*Subscription, error)
	FindByCode(ctx context.Context, code string) (*Subscription, error)
	DeleteSubscription(ctx context.Context, dealID, referrerID string) (bool, error)
	ListByReferrer(ctx context.Context, referrerID string) ([]*Subscription, error)
	ListSubscribers(ctx context.Context, businessID string) ([]*Subscriber, error)
	GetDealState(ctx context.Context, dealID string) (*DealState, error)
	AddEarnings(ctx context.Context, subscriptionID string, commission, revenue float64) error
	CreatePayment(ctx context.Context, p *Payment) error
	SettlePayment(ctx context.Context, subscriptionID string, amountCents, referrerCut, businessCut int64) error
}

// UserDirectory is the slice of the auth repository this service uses.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
	SetStripeAccount(ctx context.Context, userID, accountID string) error
}

// BusinessDirectory is the slice of the business repository this
// service uses for Stripe onboarding state.
type BusinessDirectory interface {
	GetByID(ctx context.Context, id string) (*business.Business, error)
	GetByUserID(ctx context.Context, userID string) (*business.Business, error)
	SetStripeAccount(ctx context.Context, businessID, accountID string) error
	SetOnboardingCompleted(ctx context.Context, businessID string, completed bool) error
}

// Mailer notifies referrers about settled commissions. Implemented by
// internal/mailer.
type Mailer interface {
	SendReferralEarning(ctx context.Context, to, dealName string, amount float64) error
}

// PaymentGateway abstracts the Stripe client so tests can fake it.
type PaymentGateway interface {
	CreateExpressAccount(ctx context.Context, email string) (*stripe.Account, error)
	GetAccount(ctx context.Context, accountID string) (*stripe.Account, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreateCheckoutSession(ctx context.Context, p stripe.CheckoutParams) (*stripe.CheckoutSession, error)
	CreateTransfer(ctx context.Context, amountCents int64, currency, destination, transferGroup string) error
}

type Service struct {
	repo          Store
	users         UserDirectory
	businesses    BusinessDirectory
	gateway       PaymentGateway
	mailer        Mailer
	publicBaseURL string
}

func NewService(repo Store, users UserDirectory, businesses BusinessDirectory, gateway PaymentGateway, mailer Mailer, publicBaseURL string) *Service {
	return &Service{
		repo:          repo,
		users:         users,
		businesses:    businesses,
		gateway:       gateway,
		mailer:        mailer,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Subscribe creates the (deal, referrer) subscription with a fresh
// referral code. Idempotent: an existing pair is returned as-is with
// created=false rather than erroring, so double-clicks are harmless.
// Business accounts are rejected outright; hiding the button is the
// frontend's job, enforcing the rule is ours.
func (s *Service) Subscribe(ctx context.Context, dealID, userID string) (*Subscription, bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, false, ErrUserNotFound
	}
	if user.UserType == auth.UserTypeBusiness {
		return nil, false, ErrBusinessNoSubscribe
	}

	deal, err := s.repo.GetDealState(ctx, dealID)
	if err != nil {
		return nil, false, err
	}
	if !deal.IsActive {
		return nil, false, ErrDealInactive
	}

	existing, err := s.repo.FindSubscription(ctx, dealID, userID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrReferralNotFound):
		return nil, false, err
	}

	code := GenerateReferralCode()
	sub := &Subscription{
		DealID:       dealID,
		ReferrerID:   userID,
		ReferralCode: code,
		ReferralLink: s.publicBaseURL + "/ref/" + code,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, false, err
	}

	// re-read through the join so the response carries deal/business info
	full, err := s.repo.FindSubscription(ctx, dealID, userID)
	if err != nil {
		return sub, true, nil
	}
	return full, true, nil
}

// Unsubscribe deletes the pair. Deleting an absent subscription is a
// no-op, keeping the operation idempotent.
func (s *Service) Unsubscribe(ctx context.Context, dealID, userID string) error {
	_, err := s.repo.DeleteSubscription(ctx, dealID, userID)
	return err
}

func (s *Service) MySubscriptions(ctx context.Context, userID string) ([]*Subscription, error) {
	return s.repo.ListByReferrer(ctx, userID)
}

// Subscribers builds the business dashboard report. Only the owner of
// the business may read it.
func (s *Service) Subscribers(ctx context.Context, userID, businessID string) (*SubscribersReport, error) {
	b, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil || b.ID != businessID {
		return nil, ErrNotYourBusiness
	}

	report := &SubscribersReport{
		Business: &BusinessMini{
			ID:           b.ID,
			BusinessName: b.BusinessName,
			Industry:     b.Industry,
			Website:      b.Website,
			LogoURL:      b.BusinessLogoURL,
		},
	}

	subs, err := s.repo.ListSubscribers(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*Subscriber{}
	}
	report.Subscribers = subs
	report.TotalSubscribers = len(subs)
	return report, nil
}

// Verify resolves a referral code for the public checkout page.
func (s *Service) Verify(ctx context.Context, code string) (*ReferralInfo, error) {
	sub, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, ErrReferralNotFound
	}

	return &ReferralInfo{
		RefID:    sub.ReferralCode,
		Deal:     sub.Deal,
		Business: sub.Business,
		Referrer: sub.Referrer,
	}, nil
}

// CreatePayment opens a Stripe Checkout session for a referred
// purchase. The amount arrives in dollars from the checkout form and
// must be strictly positive.
func (s *Service) CreatePayment(ctx context.Context, code string, amount float64) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	sub, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return "", ErrReferralNotFound
	}

	amountCents := int64(math.Round(amount * 100))
	session, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		AmountCents:  amountCents,
		Currency:     "usd",
		ProductName:  sub.Deal.DealName,
		ReferralCode: sub.ReferralCode,
		SuccessURL:   s.publicBaseURL + "/payment/success",
		CancelURL:    s.publicBaseURL + "/ref/" + sub.ReferralCode,
	})
	if err != nil {
		return "", err
	}

	payment := &Payment{
		SubscriptionID:  sub.ID,
		AmountCents:     amountCents,
		StripeSessionID: &session.ID,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return "", err
	}
	return session.URL, nil
}

// CreateOnboardingLink provisions (if needed) a Stripe Express account
// for the caller and returns the hosted onboarding URL. Works for both
// account types: businesses receive sale proceeds, customers receive
// commissions.
func (s *Service) CreateOnboardingLink(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", ErrUserNotFound
	}

	accountID, persist, err := s.resolveAccount(ctx, user)
	if err != nil {
		return "", err
	}
	if accountID == "" {
		account, err := s.gateway.CreateExpressAccount(ctx, user.Email)
		if err != nil {
			return "", err
		}
		accountID = account.ID
		if err := persist(accountID); err != nil {
			return "", err
		}
	}

	returnURL := s.publicBaseURL + "/stripe/onboarding/redirect/"
	return s.gateway.CreateAccountLink(ctx, accountID, returnURL, returnURL)
}

// resolveAccount returns the caller's current Stripe account id and a
// persist func writing a new one to the right row (user or business).
func (s *Service) resolveAccount(ctx context.Context, user *auth.User) (string, func(string) error, error) {
	if user.UserType == auth.UserTypeBusiness {
		b, err := s.businesses.GetByUserID(ctx, user.ID)
		if err != nil {
			return "", nil, err
		}
		current := ""
		if b.StripeAccountID != nil {
			current = *b.StripeAccountID
		}
		return current, func(id string) error {
			return s.businesses.SetStripeAccount(ctx, b.ID, id)
		}, nil
	}

	current := ""
	if user.StripeAccountID != nil {
		current = *user.StripeAccountID
	}
	return current, func(id string) error {
		return s.users.SetStripeAccount(ctx, user.ID, id)
	}, nil
}

// OnboardingStatus proxies the account's capability flags. A business
// whose details are submitted and charges enabled is marked onboarded,
// which unlocks deal creation.
func (s *Service) OnboardingStatus(ctx context.Context, userID string) (*stripe.Account, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	accountID, _, err := s.resolveAccount(ctx, user)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, ErrNoStripeAccount
	}

	account, err := s.gateway.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if user.UserType == auth.UserTypeBusiness && account.DetailsSubmitted && account.ChargesEnabled {
		if b, err := s.businesses.GetByUserID(ctx, user.ID); err == nil && !b.IsOnboardingCompleted {
			if err := s.businesses.SetOnboardingCompleted(ctx, b.ID, true); err != nil {
				log.WithError(err).Warn("failed to persist onboarding completion")
			}
		}
	}
	return account, nil
}

// HandlePaymentSucceeded settles a referred purchase: split the amount
// by the deal's commission percent, transfer both cuts, and update the
// subscription's tallies.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	code := intent.Metadata["referral_code"]
	if code == "" {
		return ErrReferralNotFound
	}

	sub, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return ErrReferralNotFound
	}

	amount := intent.AmountReceived

	var rate float64
	if sub.Deal.RewardType == "commission" && sub.Deal.CustomerIncentive != nil {
		rate = *sub.Deal.CustomerIncentive / 100.0
	}
	referrerCut := int64(math.Round(float64(amount) * rate))
	businessCut := amount - referrerCut

	logCtx := log.WithFields(log.Fields{
		"referral_code": code,
		"amount_cents":  amount,
		"referrer_cut":  referrerCut,
	})

	// Both payout legs are independent Stripe calls; run them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		businessAccount := s.businessAccountID(gctx, sub)
		if businessAccount == "" {
			return nil
		}
		if err := s.gateway.CreateTransfer(gctx, businessCut, intent.Currency, businessAccount, code); err != nil {
			logCtx.WithError(err).Error("business transfer failed")
			return err
		}
		return nil
	})
	g.Go(func() error {
		if referrerCut <= 0 {
			return nil
		}
		referrer, err := s.users.FindByID(gctx, sub.Referrer.ID)
		if err != nil || referrer.StripeAccountID == nil {
			return nil
		}
		if err := s.gateway.CreateTransfer(gctx, referrerCut, intent.Currency, *referrer.StripeAccountID, code); err != nil {
			logCtx.WithError(err).Error("referrer transfer failed")
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.repo.SettlePayment(ctx, sub.ID, amount, referrerCut, businessCut); err != nil {
		return err
	}
	if err := s.repo.AddEarnings(ctx, sub.ID,
		float64(referrerCut)/100.0, float64(businessCut)/100.0); err != nil {
		return err
	}

	// notification failure does not fail the settlement
	if referrerCut > 0 && sub.Referrer != nil {
		if err := s.mailer.SendReferralEarning(ctx, sub.Referrer.Email, sub.Deal.DealName, float64(referrerCut)/100.0); err != nil {
			logCtx.WithError(err).Warn("commission notification mail failed")
		}
	}

	logCtx.Info("referral payment settled")
	return nil
}

func (s *Service) businessAccountID(ctx context.Context, sub *Subscription) string {
	// The joined business mini does not carry the Stripe account id;
	// resolve it through the directory.
	b, err := s.businesses.GetByID(ctx, sub.Business.ID)
	if err == nil && b.StripeAccountID != nil {
		return *b.StripeAccountID
	}
	return ""
}
