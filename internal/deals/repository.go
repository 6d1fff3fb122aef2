package deals

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const dealSelect = `
	SELECT
		d.id, d.business_id, d.deal_name, d.deal_description,
		d.reward_type, d.customer_incentive, d.no_reward_reason,
		d.poster_text, d.is_active, d.is_featured,
		d.created_at, d.updated_at,
		b.id, b.business_name, b.business_email, b.business_phone,
		b.website, b.industry, b.business_logo_url,
		(SELECT COUNT(*) FROM referral_subscriptions rs WHERE rs.deal_id = d.id)
	FROM deals d
	JOIN businesses b ON b.id = d.business_id
`

func scanDeal(row pgx.Row) (*Deal, error) {
	d := Deal{Business: &BusinessMini{}}
	err := row.Scan(
		&d.ID, &d.BusinessID, &d.DealName, &d.DealDescription,
		&d.RewardType, &d.CustomerIncentive, &d.NoRewardReason,
		&d.PosterText, &d.IsActive, &d.IsFeatured,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Business.ID, &d.Business.BusinessName, &d.Business.Email,
		&d.Business.Phone, &d.Business.Website, &d.Business.Industry,
		&d.Business.LogoURL,
		&d.SubscribersCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, deal *Deal) error {
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO deals (
			id, business_id, deal_name, deal_description,
			reward_type, customer_incentive, no_reward_reason,
			poster_text, is_active, is_featured
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`,
		deal.ID, deal.BusinessID, deal.DealName, deal.DealDescription,
		deal.RewardType, deal.CustomerIncentive, deal.NoRewardReason,
		deal.PosterText, deal.IsActive, deal.IsFeatured,
	).Scan(&deal.CreatedAt, &deal.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Deal, error) {
	return scanDeal(r.db.QueryRow(ctx, dealSelect+` WHERE d.id = $1`, id))
}

// ListParams are the marketplace filters. Empty values (and the 'all'
// sentinel the frontend sends) are omitted from the query.
type ListParams struct {
	Search     string
	Industry   string
	RewardType string
}

func (p ListParams) normalized() ListParams {
	norm := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "all") {
			return ""
		}
		return v
	}
	return ListParams{
		Search:     strings.TrimSpace(p.Search),
		Industry:   norm(p.Industry),
		RewardType: strings.ToLower(norm(p.RewardType)),
	}
}

func (r *Repository) ListAll(ctx context.Context, params ListParams) ([]*Deal, error) {
	params = params.normalized()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Search != "" {
		p := arg("%" + params.Search + "%")
		where = append(where, fmt.Sprintf(
			"(d.deal_name ILIKE %s OR d.deal_description ILIKE %s OR b.business_name ILIKE %s)",
			p, p, p,
		))
	}
	if params.RewardType == RewardCommission || params.RewardType == RewardNone {
		where = append(where, "d.reward_type = "+arg(params.RewardType))
	}
	if params.Industry != "" {
		where = append(where, "b.industry ILIKE "+arg("%"+params.Industry+"%"))
	}

	query := dealSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY d.created_at DESC"

	return r.list(ctx, query, args...)
}

func (r *Repository) ListByBusiness(ctx context.Context, businessID string) ([]*Deal, error) {
	return r.list(ctx, dealSelect+` WHERE d.business_id = $1 ORDER BY d.created_at DESC`, businessID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Deal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, deal *Deal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE deals
		SET deal_name=$1, deal_description=$2, reward_type=$3,
		    customer_incentive=$4, no_reward_reason=$5, poster_text=$6,
		    is_active=$7, updated_at=NOW()
		WHERE id=$8
	`,
		deal.DealName, deal.DealDescription, deal.RewardType,
		deal.CustomerIncentive, deal.NoRewardReason, deal.PosterText,
		deal.IsActive, deal.ID,
	)
	return err
}

// commissionAmountQuery builds the duplicate-incentive lookup. The
// id exclusion is only added when excludeID is set; binding "" against
// the uuid column would fail at the server.
func commissionAmountQuery(businessID string, incentive float64, excludeID string) (string, []any) {
	query := `
		SELECT 1 FROM deals
		WHERE business_id=$1 AND reward_type=$2 AND customer_incentive=$3`
	args := []any{businessID, RewardCommission, incentive}
	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND id<>$%d", len(args))
	}
	return query + " LIMIT 1", args
}

// HasCommissionAmount reports whether the business already runs a
// commission deal at the given incentive, excluding excludeID (empty
// on create).
func (r *Repository) HasCommissionAmount(ctx context.Context, businessID string, incentive float64, excludeID string) (bool, error) {
	query, args := commissionAmountQuery(businessID, incentive, excludeID)

	var exists int
	err := r.db.QueryRow(ctx, query, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SubscriptionInfoFor resolves the (deal, user) subscription state
// used to decorate deal responses.
func (r *Repository) SubscriptionInfoFor(ctx context.Context, dealID, userID string) (*SubscriptionInfo, error) {
	info := &SubscriptionInfo{}
	err := r.db.QueryRow(ctx, `
		SELECT referral_code, referral_link
		FROM referral_subscriptions
		WHERE deal_id=$1 AND referrer_id=$2
	`, dealID, userID).Scan(&info.ReferralCode, &info.ReferralLink)
	if errors.Is(err, pgx.ErrNoRows) {
		return &SubscriptionInfo{IsSubscribed: false}, nil
	}
	if err != nil {
		return nil, err
	}
	info.IsSubscribed = true
	return info, nil
}

// Industries returns the distinct industries businesses registered
// under, for the marketplace filter dropdown.
func (r *Repository) Industries(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT industry FROM businesses
		WHERE industry <> ''
		ORDER BY industry
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var industries []string
	for rows.Next() {
		var ind string
		if err := rows.Scan(&ind); err != nil {
			return nil, err
		}
		industries = append(industries, ind)
	}
	return industries, rows.Err()
}
