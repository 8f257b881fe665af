package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/storefront-api/internal/shared/identity"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name cannot be more than 50 characters")
	ErrInvalidEmail  = errors.New("please provide a valid email")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrInvalidRole   = errors.New("role must be customer or admin")
	ErrPasswordUnset = errors.New("password has not been set")
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrResetInvalid  = errors.New("password reset token is invalid or has expired")
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

// User is a storefront account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         identity.Role
	IsActive     bool
	Addresses    []Address
	// ResetTokenHash is the SHA-256 of an outstanding password reset token.
	ResetTokenHash string
	ResetExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Addresses = append([]Address(nil), u.Addresses...)
	return &out
}

// NewUser builds an active customer account.
func NewUser(id, name, email, phone string) (*User, error) {
	u := &User{ID: id, Role: identity.RoleCustomer, IsActive: true}
	if err := u.SetName(name); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	u.Phone = strings.TrimSpace(phone)
	return u, nil
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ErrNameRequired
	case len([]rune(name)) > 50:
		return ErrNameTooLong
	}
	u.Name = name
	return nil
}

func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetPassword stores a bcrypt hash of the password.
func (u *User) SetPassword(password string, cost int) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile applies non-empty fields.
func (u *User) UpdateProfile(name, phone string) error {
	if strings.TrimSpace(name) != "" {
		if err := u.SetName(name); err != nil {
			return err
		}
	}
	if phone != "" {
		u.Phone = strings.TrimSpace(phone)
	}
	return nil
}

// Validate re-applies invariants before persistence.
func (u *User) Validate() error {
	if err := u.SetName(u.Name); err != nil {
		return err
	}
	if err := u.SetEmail(u.Email); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrPasswordUnset
	}
	if u.Role != identity.RoleCustomer && u.Role != identity.RoleAdmin {
		return ErrInvalidRole
	}
	return nil
}

// HashResetToken is the stored form of a reset token; the raw token only
// travels in the email.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IssueReset records token as the outstanding reset, valid until expiresAt.
// A later request replaces an earlier one.
func (u *User) IssueReset(token string, expiresAt time.Time) {
	u.ResetTokenHash = HashResetToken(token)
	u.ResetExpiresAt = expiresAt.UTC()
}

// CanReset reports whether token is the outstanding, unexpired reset.
func (u *User) CanReset(token string, now time.Time) bool {
	return u.ResetTokenHash != "" && token != "" &&
		u.ResetTokenHash == HashResetToken(token) && now.Before(u.ResetExpiresAt)
}

func (u *User) ClearReset() {
	u.ResetTokenHash = ""
	u.ResetExpiresAt = time.Time{}
}

func (u *User) Actor() identity.Actor {
	return identity.Actor{UserID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

// Session is a bearer token bound to a user until ExpiresAt.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
