package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/users/domain"
	"github.com/Apurer/storefront-api/internal/shared/identity"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Repository persists users. Save returns domain.ErrEmailTaken when another
// account owns the email.
type Repository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByResetToken finds the account holding the hashed reset token.
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
}

// PasswordReset is the message sent when a reset is requested. Token is the
// raw token; only its hash is stored.
type PasswordReset struct {
	Email     string
	Name      string
	Token     string
	ExpiresAt time.Time
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, reset PasswordReset) error
}

// SessionStore abstracts bearer token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteForUser revokes every session of userID except the one whose
	// token equals keep, returning how many were removed.
	DeleteForUser(ctx context.Context, userID, keep string) (int64, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// ProfileUpdate carries optional fields; empty strings leave values unchanged.
// A password change signs out every other session; KeepSession names the
// token that stays valid.
type ProfileUpdate struct {
	Name        string
	Phone       string
	Password    string
	KeepSession string
}

// PasswordChange replaces the password of a signed-in user after checking
// the current one.
type PasswordChange struct {
	Current     string
	New         string
	KeepSession string
}

// Service exposes account and session use cases.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (identity.Actor, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error)

	ChangePassword(ctx context.Context, userID string, change PasswordChange) error
	// RequestPasswordReset succeeds for unknown emails too.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (*domain.User, domain.Session, error)

	AddAddress(ctx context.Context, userID string, address domain.Address) ([]domain.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, address domain.Address) ([]domain.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) ([]domain.Address, error)
}
