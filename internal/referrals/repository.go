package referrals

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSubscription(ctx context.Context, sub *Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO referral_subscriptions (
			id, deal_id, referrer_id, referral_code, referral_link
		)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`,
		sub.ID, sub.DealID, sub.ReferrerID, sub.ReferralCode, sub.ReferralLink,
	).Scan(&sub.CreatedAt)
}

const subscriptionSelect = `
	SELECT
		rs.id, rs.deal_id, rs.referrer_id, rs.referral_code, rs.referral_link,
		rs.commission_earned, rs.business_revenue, rs.created_at,
		d.id, d.deal_name, d.deal_description, d.reward_type,
		d.customer_incentive, d.no_reward_reason, d.is_active,
		b.id, b.business_name, b.industry, b.website, b.business_logo_url,
		u.id, u.first_name, u.last_name, u.email
	FROM referral_subscriptions rs
	JOIN deals d ON d.id = rs.deal_id
	JOIN businesses b ON b.id = d.business_id
	JOIN users u ON u.id = rs.referrer_id
`

func scanSubscription(row pgx.Row) (*Subscription, error) {
	sub := &Subscription{
		Deal:     &DealMini{},
		Business: &BusinessMini{},
		Referrer: &UserMini{},
	}
	err := row.Scan(
		&sub.ID, &sub.DealID, &sub.ReferrerID, &sub.ReferralCode,
		&sub.ReferralLink, &sub.CommissionEarned, &sub.BusinessRevenue,
		&sub.CreatedAt,
		&sub.Deal.ID, &sub.Deal.DealName, &sub.Deal.DealDescription,
		&sub.Deal.RewardType, &sub.Deal.CustomerIncentive,
		&sub.Deal.NoRewardReason, &sub.Deal.IsActive,
		&sub.Business.ID, &sub.Business.BusinessName, &sub.Business.Industry,
		&sub.Business.Website, &sub.Business.LogoURL,
		&sub.Referrer.ID, &sub.Referrer.FirstName, &sub.Referrer.LastName,
		&sub.Referrer.Email,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReferralNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *Repository) FindSubscription(ctx context.Context, dealID, referrerID string) (*Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx,
		subscriptionSelect+` WHERE rs.deal_id=$1 AND rs.referrer_id=$2`,
		dealID, referrerID))
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx,
		subscriptionSelect+` WHERE rs.referral_code=$1`, code))
}

// DeleteSubscription removes the pair; reports whether a row existed.
func (r *Repository) DeleteSubscription(ctx context.Context, dealID, referrerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM referral_subscriptions
		WHERE deal_id=$1 AND referrer_id=$2
	`, dealID, referrerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ListByReferrer(ctx context.Context, referrerID string) ([]*Subscription, error) {
	rows, err := r.db.Query(ctx,
		subscriptionSelect+` WHERE rs.referrer_id=$1 ORDER BY rs.created_at DESC`,
		referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *Repository) ListSubscribers(ctx context.Context, businessID string) ([]*Subscriber, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rs.id, rs.referral_code, rs.created_at,
		       d.id, d.deal_name,
		       u.id, u.first_name, u.last_name, u.email
		FROM referral_subscriptions rs
		JOIN deals d ON d.id = rs.deal_id
		JOIN users u ON u.id = rs.referrer_id
		WHERE d.business_id = $1
		ORDER BY rs.created_at DESC
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []*Subscriber
	for rows.Next() {
		s := &Subscriber{User: &UserMini{}}
		if err := rows.Scan(
			&s.SubscriptionID, &s.ReferralCode, &s.SubscribedAt,
			&s.DealID, &s.DealName,
			&s.User.ID, &s.User.FirstName, &s.User.LastName, &s.User.Email,
		); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

// DealState is the minimal deal view the subscribe flow checks.
type DealState struct {
	ID       string
	IsActive bool
}

func (r *Repository) GetDealState(ctx context.Context, dealID string) (*DealState, error) {
	d := &DealState{}
	err := r.db.QueryRow(ctx,
		`SELECT id, is_active FROM deals WHERE id=$1`, dealID,
	).Scan(&d.ID, &d.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// AddEarnings bumps the running tallies after a confirmed purchase.
func (r *Repository) AddEarnings(ctx context.Context, subscriptionID string, commission, revenue float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE referral_subscriptions
		SET commission_earned = commission_earned + $1,
		    business_revenue = business_revenue + $2
		WHERE id = $3
	`, commission, revenue, subscriptionID)
	return err
}

func (r *Repository) CreatePayment(ctx context.Context, p *Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO referral_payments (
			id, subscription_id, amount_cents, referrer_cut_cents,
			business_cut_cents, stripe_session_id, status
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`,
		p.ID, p.SubscriptionID, p.AmountCents, p.ReferrerCut,
		p.BusinessCut, p.StripeSessionID, p.Status,
	).Scan(&p.CreatedAt)
}

// SettlePayment marks the most recent pending payment for the
// subscription as succeeded with its final split. When checkout was
// initiated elsewhere and no pending row exists, one is inserted so
// the ledger stays complete.
func (r *Repository) SettlePayment(ctx context.Context, subscriptionID string, amountCents, referrerCut, businessCut int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE referral_payments
		SET status=$1, amount_cents=$2, referrer_cut_cents=$3,
		    business_cut_cents=$4, updated_at=NOW()
		WHERE id = (
			SELECT id FROM referral_payments
			WHERE subscription_id=$5 AND status=$6
			ORDER BY created_at DESC
			LIMIT 1
		)
	`, PaymentSucceeded, amountCents, referrerCut, businessCut,
		subscriptionID, PaymentPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	p := &Payment{
		SubscriptionID: subscriptionID,
		AmountCents:    amountCents,
		ReferrerCut:    referrerCut,
		BusinessCut:    businessCut,
		Status:         PaymentSucceeded,
	}
	return r.CreatePayment(ctx, p)
}
