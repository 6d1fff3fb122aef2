package business

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/deals"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const businessColumns = `
	id, user_id, business_name, business_email, business_phone, designation,
	website, registration_no, business_address, business_city, business_state,
	business_country, industry, description, business_logo_url,
	business_cover_url, onboarding_no_deal_reason, is_verified,
	stripe_account_id, is_onboarding_completed, created_at, updated_at
`

func scanBusiness(row pgx.Row) (*Business, error) {
	b := &Business{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.BusinessName, &b.BusinessEmail, &b.BusinessPhone,
		&b.Designation, &b.Website, &b.RegistrationNo, &b.BusinessAddress,
		&b.BusinessCity, &b.BusinessState, &b.BusinessCountry, &b.Industry,
		&b.Description, &b.BusinessLogoURL, &b.BusinessCoverURL,
		&b.OnboardingNoDealReason, &b.IsVerified, &b.StripeAccountID,
		&b.IsOnboardingCompleted, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) Create(ctx context.Context, b *Business) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO businesses (
			id, user_id, business_name, business_email, business_phone,
			designation, website, registration_no, business_address,
			business_city, business_state, business_country, industry,
			description, business_logo_url, business_cover_url,
			onboarding_no_deal_reason
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at
	`,
		b.ID, b.UserID, b.BusinessName, b.BusinessEmail, b.BusinessPhone,
		b.Designation, b.Website, b.RegistrationNo, b.BusinessAddress,
		b.BusinessCity, b.BusinessState, b.BusinessCountry, b.Industry,
		b.Description, b.BusinessLogoURL, b.BusinessCoverURL,
		b.OnboardingNoDealReason,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Business, error) {
	return scanBusiness(r.db.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id=$1`, id))
}

func (r *Repository) GetByUserID(ctx context.Context, userID string) (*Business, error) {
	return scanBusiness(r.db.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE user_id=$1`, userID))
}

func (r *Repository) Update(ctx context.Context, b *Business) error {
	_, err := r.db.Exec(ctx, `
		UPDATE businesses
		SET business_name=$1, business_email=$2, business_phone=$3,
		    designation=$4, website=$5, registration_no=$6,
		    business_address=$7, business_city=$8, business_state=$9,
		    business_country=$10, industry=$11, description=$12,
		    business_logo_url=$13, business_cover_url=$14, updated_at=NOW()
		WHERE id=$15
	`,
		b.BusinessName, b.BusinessEmail, b.BusinessPhone, b.Designation,
		b.Website, b.RegistrationNo, b.BusinessAddress, b.BusinessCity,
		b.BusinessState, b.BusinessCountry, b.Industry, b.Description,
		b.BusinessLogoURL, b.BusinessCoverURL, b.ID,
	)
	return err
}

func (r *Repository) SetStripeAccount(ctx context.Context, businessID, accountID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE businesses SET stripe_account_id=$1, updated_at=NOW() WHERE id=$2`,
		accountID, businessID)
	return err
}

func (r *Repository) SetOnboardingCompleted(ctx context.Context, businessID string, completed bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE businesses SET is_onboarding_completed=$1, updated_at=NOW() WHERE id=$2`,
		completed, businessID)
	return err
}

// SubscribersCount totals subscriptions across all of the business's
// deals.
func (r *Repository) SubscribersCount(ctx context.Context, businessID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM referral_subscriptions rs
		JOIN deals d ON d.id = rs.deal_id
		WHERE d.business_id = $1
	`, businessID).Scan(&count)
	return count, err
}

// InfoByUserID implements deals.BusinessReader.
func (r *Repository) InfoByUserID(ctx context.Context, userID string) (*deals.BusinessInfo, error) {
	b, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	info := &deals.BusinessInfo{
		ID:                  b.ID,
		OnboardingCompleted: b.IsOnboardingCompleted,
	}
	if b.StripeAccountID != nil {
		info.StripeAccountID = *b.StripeAccountID
	}
	return info, nil
}
