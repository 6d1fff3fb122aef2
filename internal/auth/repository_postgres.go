package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `
	id, first_name, last_name, email, phone_number, password, user_type,
	profile_picture, is_email_verified, is_phone_verified, stripe_account_id,
	created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.Password, &u.UserType, &u.ProfilePicture, &u.IsEmailVerified,
		&u.IsPhoneVerified, &u.StripeAccountID, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Save(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO users (
			id, first_name, last_name, email, phone_number, password, user_type
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`,
		user.ID, user.FirstName, user.LastName, user.Email,
		user.PhoneNumber, user.Password, user.UserType,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.QueryRow(ctx,
		`SELECT 1 FROM users WHERE email=$1 LIMIT 1`, email,
	).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET first_name=$1, last_name=$2, phone_number=$3,
		    profile_picture=$4, updated_at=NOW()
		WHERE id=$5
	`,
		user.FirstName, user.LastName, user.PhoneNumber,
		user.ProfilePicture, user.ID,
	)
	return err
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, hashed string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET password=$1, updated_at=NOW() WHERE id=$2`,
		hashed, userID)
	return err
}

func (r *PostgresUserRepository) MarkEmailVerified(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET is_email_verified=TRUE, updated_at=NOW() WHERE id=$1`,
		userID)
	return err
}

func (r *PostgresUserRepository) SetStripeAccount(ctx context.Context, userID, accountID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET stripe_account_id=$1, updated_at=NOW() WHERE id=$2`,
		accountID, userID)
	return err
}

// --------------------------------------------------
// OTP
// --------------------------------------------------

type PostgresOTPRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOTPRepository(db *pgxpool.Pool) *PostgresOTPRepository {
	return &PostgresOTPRepository{db: db}
}

func (r *PostgresOTPRepository) Save(ctx context.Context, otp *OTPVerification) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO otp_verifications (user_id, otp_code, otp_type, expires_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`,
		otp.UserID, otp.Code, otp.Type, otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt)
}

func (r *PostgresOTPRepository) FindActive(ctx context.Context, userID, code, otpType string) (*OTPVerification, error) {
	otp := &OTPVerification{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, otp_code, otp_type, is_used, created_at, expires_at
		FROM otp_verifications
		WHERE user_id=$1 AND otp_code=$2 AND otp_type=$3 AND is_used=FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, code, otpType).Scan(
		&otp.ID, &otp.UserID, &otp.Code, &otp.Type,
		&otp.IsUsed, &otp.CreatedAt, &otp.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}
	return otp, nil
}

func (r *PostgresOTPRepository) MarkUsed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE otp_verifications SET is_used=TRUE WHERE id=$1`, id)
	return err
}

func (r *PostgresOTPRepository) InvalidateForUser(ctx context.Context, userID, otpType string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otp_verifications SET is_used=TRUE
		WHERE user_id=$1 AND otp_type=$2 AND is_used=FALSE
	`, userID, otpType)
	return err
}
