package auth

import "context"

// UserRepository defines the data-access contract.
// Service depends ONLY on this interface.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, hashed string) error
	MarkEmailVerified(ctx context.Context, userID string) error
	SetStripeAccount(ctx context.Context, userID, accountID string) error
}

// OTPRepository stores verification codes.
type OTPRepository interface {
	Save(ctx context.Context, otp *OTPVerification) error
	FindActive(ctx context.Context, userID, code, otpType string) (*OTPVerification, error)
	MarkUsed(ctx context.Context, id int64) error
	InvalidateForUser(ctx context.Context, userID, otpType string) error
}
