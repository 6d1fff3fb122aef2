package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// In-memory repositories used by tests.

type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*User)}
}

func (r *InMemoryUserRepository) Save(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.Email] = user
	return nil
}

func (r *InMemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.users[email]
	return exists, nil
}

func (r *InMemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Email] = user
	return nil
}

func (r *InMemoryUserRepository) UpdatePassword(_ context.Context, userID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			u.Password = hashed
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *InMemoryUserRepository) MarkEmailVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			u.IsEmailVerified = true
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *InMemoryUserRepository) SetStripeAccount(_ context.Context, userID, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			id := accountID
			u.StripeAccountID = &id
			return nil
		}
	}
	return ErrUserNotFound
}

type InMemoryOTPRepository struct {
	mu     sync.Mutex
	nextID int64
	otps   []*OTPVerification
}

func NewInMemoryOTPRepository() *InMemoryOTPRepository {
	return &InMemoryOTPRepository{}
}

func (r *InMemoryOTPRepository) Save(_ context.Context, otp *OTPVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	otp.ID = r.nextID
	r.otps = append(r.otps, otp)
	return nil
}

func (r *InMemoryOTPRepository) FindActive(_ context.Context, userID, code, otpType string) (*OTPVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.otps) - 1; i >= 0; i-- {
		o := r.otps[i]
		if o.UserID == userID && o.Code == code && o.Type == otpType && !o.IsUsed {
			return o, nil
		}
	}
	return nil, ErrInvalidOTP
}

func (r *InMemoryOTPRepository) MarkUsed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.ID == id {
			o.IsUsed = true
			return nil
		}
	}
	return nil
}

func (r *InMemoryOTPRepository) InvalidateForUser(_ context.Context, userID, otpType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.otps {
		if o.UserID == userID && o.Type == otpType {
			o.IsUsed = true
		}
	}
	return nil
}
