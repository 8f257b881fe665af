package domain

import (
	"errors"
	"strings"
)

var (
	ErrAddressNotFound   = errors.New("address not found")
	ErrAddressIncomplete = errors.New("address needs a full name, first line, city and country")
	ErrTooManyAddresses  = errors.New("an account can keep at most 10 addresses")
)

const maxAddresses = 10

// Address is a saved shipping address. At most one address of an account is
// the default, and a non-empty book always has one.
type Address struct {
	ID           string
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	ZipCode      string
	Country      string
	IsDefault    bool
}

func (a Address) normalized() (Address, error) {
	for _, field := range []*string{&a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.ZipCode, &a.Country} {
		*field = strings.TrimSpace(*field)
	}
	if a.FullName == "" || a.AddressLine1 == "" || a.City == "" || a.Country == "" {
		return Address{}, ErrAddressIncomplete
	}
	return a, nil
}

// AddAddress appends a to the book under id. The first address, or one
// flagged IsDefault, becomes the default.
func (u *User) AddAddress(id string, a Address) (Address, error) {
	if len(u.Addresses) >= maxAddresses {
		return Address{}, ErrTooManyAddresses
	}
	a, err := a.normalized()
	if err != nil {
		return Address{}, err
	}
	a.ID = id
	a.IsDefault = a.IsDefault || len(u.Addresses) == 0
	u.Addresses = append(u.Addresses, a)
	if a.IsDefault {
		u.markDefault(id)
	}
	return a, nil
}

// UpdateAddress replaces the fields of address id. Clearing IsDefault on the
// current default is ignored so the book keeps a default.
func (u *User) UpdateAddress(id string, a Address) (Address, error) {
	i := u.addressIndex(id)
	if i < 0 {
		return Address{}, ErrAddressNotFound
	}
	a, err := a.normalized()
	if err != nil {
		return Address{}, err
	}
	a.ID = id
	a.IsDefault = a.IsDefault || u.Addresses[i].IsDefault
	u.Addresses[i] = a
	if a.IsDefault {
		u.markDefault(id)
	}
	return a, nil
}

// RemoveAddress deletes address id; removing the default promotes the first
// remaining address.
func (u *User) RemoveAddress(id string) error {
	i := u.addressIndex(id)
	if i < 0 {
		return ErrAddressNotFound
	}
	wasDefault := u.Addresses[i].IsDefault
	u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
	if wasDefault && len(u.Addresses) > 0 {
		u.markDefault(u.Addresses[0].ID)
	}
	return nil
}

// DefaultAddress returns the default address, if any.
func (u *User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

func (u *User) markDefault(id string) {
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = u.Addresses[i].ID == id
	}
}

func (u *User) addressIndex(id string) int {
	for i, a := range u.Addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}
