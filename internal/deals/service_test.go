package deals

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeStore struct {
	deals         map[string]*Deal
	subscriptions map[string]*SubscriptionInfo // key dealID+userID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deals:         make(map[string]*Deal),
		subscriptions: make(map[string]*SubscriptionInfo),
	}
}

func (f *fakeStore) Create(_ context.Context, deal *Deal) error {
	deal.ID = uuid.New().String()
	f.deals[deal.ID] = deal
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Deal, error) {
	deal, ok := f.deals[id]
	if !ok {
		return nil, ErrDealNotFound
	}
	return deal, nil
}

func (f *fakeStore) ListAll(_ context.Context, params ListParams) ([]*Deal, error) {
	var out []*Deal
	for _, d := range f.deals {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) ListByBusiness(_ context.Context, businessID string) ([]*Deal, error) {
	var out []*Deal
	for _, d := range f.deals {
		if d.BusinessID == businessID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, deal *Deal) error {
	f.deals[deal.ID] = deal
	return nil
}

func (f *fakeStore) HasCommissionAmount(_ context.Context, businessID string, incentive float64, excludeID string) (bool, error) {
	for _, d := range f.deals {
		if d.ID == excludeID || d.BusinessID != businessID {
			continue
		}
		if d.RewardType == RewardCommission && d.CustomerIncentive != nil && *d.CustomerIncentive == incentive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SubscriptionInfoFor(_ context.Context, dealID, userID string) (*SubscriptionInfo, error) {
	if info, ok := f.subscriptions[dealID+userID]; ok {
		return info, nil
	}
	return &SubscriptionInfo{}, nil
}

func (f *fakeStore) Industries(_ context.Context) ([]string, error) {
	return []string{"Food", "Retail"}, nil
}

type fakeBusinessReader struct {
	info map[string]*BusinessInfo // by userID
}

func (f *fakeBusinessReader) InfoByUserID(_ context.Context, userID string) (*BusinessInfo, error) {
	if info, ok := f.info[userID]; ok {
		return info, nil
	}
	return nil, errors.New("no business for user")
}

func onboardedBusiness() *fakeBusinessReader {
	return &fakeBusinessReader{info: map[string]*BusinessInfo{
		"owner-1": {ID: "biz-1", StripeAccountID: "acct_1", OnboardingCompleted: true},
	}}
}

func commissionDraft(amount float64) Draft {
	return Draft{
		DealName:          "20% off lunch",
		DealDescription:   "weekday special",
		RewardType:        RewardCommission,
		CustomerIncentive: f(amount),
	}
}

func TestCreate_RequiresStripeAccount(t *testing.T) {
	store := newFakeStore()
	reader := &fakeBusinessReader{info: map[string]*BusinessInfo{
		"owner-1": {ID: "biz-1"},
	}}
	svc := NewService(store, reader)

	if _, err := svc.Create(context.Background(), "owner-1", commissionDraft(10)); !errors.Is(err, ErrStripeNotConnected) {
		t.Errorf("expected ErrStripeNotConnected, got %v", err)
	}
}

func TestCreate_RequiresCompletedOnboarding(t *testing.T) {
	store := newFakeStore()
	reader := &fakeBusinessReader{info: map[string]*BusinessInfo{
		"owner-1": {ID: "biz-1", StripeAccountID: "acct_1"},
	}}
	svc := NewService(store, reader)

	if _, err := svc.Create(context.Background(), "owner-1", commissionDraft(10)); !errors.Is(err, ErrOnboardingIncomplete) {
		t.Errorf("expected ErrOnboardingIncomplete, got %v", err)
	}
}

func TestCreate_RejectsNonBusinessUser(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeBusinessReader{info: map[string]*BusinessInfo{}})

	if _, err := svc.Create(context.Background(), "someone", commissionDraft(10)); !errors.Is(err, ErrNotBusiness) {
		t.Errorf("expected ErrNotBusiness, got %v", err)
	}
}

func TestCreate_DuplicateCommissionAmount(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, onboardedBusiness())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "owner-1", commissionDraft(10)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	if _, err := svc.Create(ctx, "owner-1", commissionDraft(10)); !errors.Is(err, ErrDuplicateCommission) {
		t.Errorf("expected ErrDuplicateCommission, got %v", err)
	}

	// a different amount is fine
	if _, err := svc.Create(ctx, "owner-1", commissionDraft(15)); err != nil {
		t.Errorf("distinct amount rejected: %v", err)
	}
}

func TestCreate_NewDealIsActive(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, onboardedBusiness())

	deal, err := svc.Create(context.Background(), "owner-1", commissionDraft(10))
	if err != nil {
		t.Fatal(err)
	}
	if !deal.IsActive {
		t.Error("new deal should default to active")
	}
	if deal.BusinessID != "biz-1" {
		t.Errorf("deal bound to wrong business: %s", deal.BusinessID)
	}
}

func TestCreateForBusiness_SkipsStripeGate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeBusinessReader{info: map[string]*BusinessInfo{}})

	// onboarding creates the inline deal before Stripe connect
	if _, err := svc.CreateForBusiness(context.Background(), "biz-9", commissionDraft(10)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	store := newFakeStore()
	reader := &fakeBusinessReader{info: map[string]*BusinessInfo{
		"owner-1": {ID: "biz-1", StripeAccountID: "acct_1", OnboardingCompleted: true},
		"owner-2": {ID: "biz-2", StripeAccountID: "acct_2", OnboardingCompleted: true},
	}}
	svc := NewService(store, reader)
	ctx := context.Background()

	deal, err := svc.Create(ctx, "owner-1", commissionDraft(10))
	if err != nil {
		t.Fatal(err)
	}

	name := "hijacked"
	if _, err := svc.Update(ctx, "owner-2", deal.ID, UpdateInput{DealName: &name}); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestUpdate_SwitchRewardTypeClearsOtherSide(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, onboardedBusiness())
	ctx := context.Background()

	deal, err := svc.Create(ctx, "owner-1", commissionDraft(10))
	if err != nil {
		t.Fatal(err)
	}

	rewardType := RewardNone
	reason := "big_discount"
	updated, err := svc.Update(ctx, "owner-1", deal.ID, UpdateInput{
		RewardType:     &rewardType,
		NoRewardReason: &reason,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.CustomerIncentive != nil {
		t.Error("incentive survived switch to no_reward")
	}
	if updated.NoRewardReason == nil || *updated.NoRewardReason != "big_discount" {
		t.Error("reason not applied")
	}
}

func TestUpdate_SoftDeactivate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, onboardedBusiness())
	ctx := context.Background()

	deal, err := svc.Create(ctx, "owner-1", commissionDraft(10))
	if err != nil {
		t.Fatal(err)
	}

	inactive := false
	updated, err := svc.Update(ctx, "owner-1", deal.ID, UpdateInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.IsActive {
		t.Error("deal still active after deactivation")
	}
}

func TestUpdate_RevalidatesShape(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, onboardedBusiness())
	ctx := context.Background()

	deal, err := svc.Create(ctx, "owner-1", commissionDraft(10))
	if err != nil {
		t.Fatal(err)
	}

	bad := -3.0
	if _, err := svc.Update(ctx, "owner-1", deal.ID, UpdateInput{CustomerIncentive: &bad}); !errors.Is(err, ErrNegativeIncentive) {
		t.Errorf("expected ErrNegativeIncentive, got %v", err)
	}
}

func TestGet_AttachesSubscriptionInfo(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, onboardedBusiness())
	ctx := context.Background()

	deal, err := svc.Create(ctx, "owner-1", commissionDraft(10))
	if err != nil {
		t.Fatal(err)
	}
	store.subscriptions[deal.ID+"user-7"] = &SubscriptionInfo{
		IsSubscribed: true,
		ReferralCode: "ABCD1234",
	}

	anon, err := svc.Get(ctx, deal.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if anon.SubscriptionInfo != nil {
		t.Error("anonymous request carries subscription state")
	}

	got, err := svc.Get(ctx, deal.ID, "user-7")
	if err != nil {
		t.Fatal(err)
	}
	if got.SubscriptionInfo == nil || !got.SubscriptionInfo.IsSubscribed {
		t.Error("subscription info missing for subscribed user")
	}
}

func TestPosterOptions_ContainPlaceholders(t *testing.T) {
	svc := NewService(newFakeStore(), onboardedBusiness())

	opts := svc.PosterOptions()
	if len(opts.CommissionBased) == 0 || len(opts.NoRewardBased) == 0 {
		t.Fatal("expected both template groups")
	}
	for _, tmpl := range opts.CommissionBased {
		if !containsIncentive(tmpl) {
			t.Errorf("commission template missing incentive placeholder: %q", tmpl)
		}
	}
}

func containsIncentive(s string) bool {
	for i := 0; i+11 <= len(s); i++ {
		if s[i:i+11] == "{incentive}" {
			return true
		}
	}
	return false
}
