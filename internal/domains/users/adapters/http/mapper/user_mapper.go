package mapper

import (
	"time"

	userdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
)

// Register is the sign-up payload.
type Register struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

// Login is the credential payload.
type Login struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdate carries optional profile changes.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ForgotPassword struct {
	Email string `json:"email" binding:"required"`
}

type ResetPassword struct {
	Password string `json:"password" binding:"required"`
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// Address is a saved shipping address, both as payload and in responses.
type Address struct {
	ID           string `json:"id,omitempty"`
	FullName     string `json:"fullName" binding:"required"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	Country      string `json:"country" binding:"required"`
	IsDefault    bool   `json:"isDefault"`
}

// User is the transport-level account. The password hash and reset token
// never leave the domain.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Addresses []Address `json:"addresses"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned on register and login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

func ToRegisterInput(payload Register) userports.RegisterInput {
	return userports.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
	}
}

func ToProfileUpdate(payload ProfileUpdate) userports.ProfileUpdate {
	return userports.ProfileUpdate{Name: payload.Name, Phone: payload.Phone, Password: payload.Password}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      string(user.Role),
		Addresses: FromDomainAddresses(user.Addresses),
		CreatedAt: user.CreatedAt,
	}
}

func ToDomainAddress(payload Address) userdomain.Address {
	return userdomain.Address{
		FullName:     payload.FullName,
		Phone:        payload.Phone,
		AddressLine1: payload.AddressLine1,
		AddressLine2: payload.AddressLine2,
		City:         payload.City,
		State:        payload.State,
		ZipCode:      payload.ZipCode,
		Country:      payload.Country,
		IsDefault:    payload.IsDefault,
	}
}

// FromDomainAddresses never returns nil so empty books encode as [].
func FromDomainAddresses(addresses []userdomain.Address) []Address {
	out := make([]Address, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, Address{
			ID:           a.ID,
			FullName:     a.FullName,
			Phone:        a.Phone,
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			State:        a.State,
			ZipCode:      a.ZipCode,
			Country:      a.Country,
			IsDefault:    a.IsDefault,
		})
	}
	return out
}

// FromSession pairs an issued session with its account.
func FromSession(user *userdomain.User, session userdomain.Session) Session {
	return Session{Token: session.Token, ExpiresAt: session.ExpiresAt, User: FromDomainUser(user)}
}
