package auth

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	UserTypeCustomer = "customer"
	UserTypeBusiness = "business"
)

// User is the domain entity shared by customer and business accounts.
type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phone_number"`
	Password        string    `json:"-"`
	UserType        string    `json:"user_type"`
	ProfilePicture  *string   `json:"profile_picture,omitempty"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	StripeAccountID *string   `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	OTPTypeEmail         = "email"
	OTPTypePhone         = "phone"
	OTPTypePasswordReset = "password_reset"

	otpLength        = 6
	otpExpiryMinutes = 10
)

// OTPVerification is a single-use verification code tied to a user.
type OTPVerification struct {
	ID        int64
	UserID    string
	Code      string
	Type      string
	IsUsed    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (o *OTPVerification) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// NewOTP generates a fresh code with the standard expiry window.
func NewOTP(userID, otpType string) *OTPVerification {
	return &OTPVerification{
		UserID:    userID,
		Code:      generateOTPCode(),
		Type:      otpType,
		ExpiresAt: time.Now().Add(otpExpiryMinutes * time.Minute),
	}
}

func generateOTPCode() string {
	digits := make([]byte, otpLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand failing means the process has bigger problems
			panic(err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
