package auth

import (
	"context"
	"errors"
	"regexp"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("this email is already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidPhone       = errors.New("invalid phone number format")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrWrongAccountType   = errors.New("this login is only for business accounts")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrOTPRateLimited     = errors.New("too many OTP requests, try again later")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

var phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// Mailer delivers verification codes. Implemented by internal/mailer.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

type Service struct {
	repo    UserRepository
	otpRepo OTPRepository
	mailer  Mailer
	limiter *otpLimiter
}

func NewService(repo UserRepository, otpRepo OTPRepository, mailer Mailer) *Service {
	return &Service{
		repo:    repo,
		otpRepo: otpRepo,
		mailer:  mailer,
		limiter: newOTPLimiter(),
	}
}

type RegisterUserInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email" binding:"required,email"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegisterUser creates a customer account and emails an OTP. An
// existing-but-unverified account gets its OTP resent instead of a
// duplicate-email error, so users who abandoned signup can retry.
// The bool result reports whether the account already existed.
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (*User, bool, error) {
	if in.Password != in.ConfirmPassword {
		return nil, false, ErrPasswordMismatch
	}
	if !phoneRegex.MatchString(in.PhoneNumber) {
		return nil, false, ErrInvalidPhone
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err == nil {
		if existing.IsEmailVerified {
			return nil, false, ErrEmailExists
		}
		if err := s.issueOTP(ctx, existing, OTPTypeEmail); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	user := &User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    string(hashed),
		UserType:    UserTypeCustomer,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, false, err
	}

	if err := s.issueOTP(ctx, user, OTPTypeEmail); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// CreateBusinessUser persists a business-type account without the
// customer-signup branching. Called from the onboarding service.
func (s *Service) CreateBusinessUser(ctx context.Context, firstName, lastName, email, phone, password string) (*User, error) {
	if !phoneRegex.MatchString(phone) {
		return nil, ErrInvalidPhone
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phone,
		Password:    string(hashed),
		UserType:    UserTypeBusiness,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SendVerificationOTP issues and emails a fresh email-verification OTP.
func (s *Service) SendVerificationOTP(ctx context.Context, user *User) error {
	return s.issueOTP(ctx, user, OTPTypeEmail)
}

func (s *Service) issueOTP(ctx context.Context, user *User, otpType string) error {
	if err := s.otpRepo.InvalidateForUser(ctx, user.ID, otpType); err != nil {
		return err
	}

	otp := NewOTP(user.ID, otpType)
	if err := s.otpRepo.Save(ctx, otp); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, otp.Code); err != nil {
		// The account is created either way; the user can hit resend.
		log.WithError(err).WithField("email", user.Email).Warn("failed to send OTP email")
	}
	return nil
}

// Login authenticates a user. requiredType restricts the account type
// ("business" for the business login endpoint, empty for no restriction).
func (s *Service) Login(ctx context.Context, email, password, requiredType string) (*User, *TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	if requiredType != "" && user.UserType != requiredType {
		return nil, nil, ErrWrongAccountType
	}

	tokens, err := GenerateTokenPair(user.ID, user.Email, user.UserType)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return GenerateTokenPair(user.ID, user.Email, user.UserType)
}

// VerifyOTP consumes a pending code and, for email OTPs, marks the
// account verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code, otpType string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	otp, err := s.otpRepo.FindActive(ctx, user.ID, code, otpType)
	if err != nil {
		return nil, ErrInvalidOTP
	}
	if otp.IsExpired() {
		return nil, ErrInvalidOTP
	}

	if err := s.otpRepo.MarkUsed(ctx, otp.ID); err != nil {
		return nil, err
	}

	if otpType == OTPTypeEmail {
		if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, err
		}
		user.IsEmailVerified = true
	}
	return user, nil
}

// ResendOTP regenerates a code, subject to the per-user rate limit.
func (s *Service) ResendOTP(ctx context.Context, email, otpType string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}

	if !s.limiter.Allow(user.ID) {
		return ErrOTPRateLimited
	}
	return s.issueOTP(ctx, user, otpType)
}

type UpdateUserInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	PhoneNumber    *string `json:"phone_number"`
	ProfilePicture *string `json:"profile_picture"`
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateUserInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.PhoneNumber != nil {
		if !phoneRegex.MatchString(*in.PhoneNumber) {
			return nil, ErrInvalidPhone
		}
		user.PhoneNumber = *in.PhoneNumber
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = in.ProfilePicture
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

// GetUser looks up a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
