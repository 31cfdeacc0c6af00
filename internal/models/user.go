package models

import (
	"time"
)

// Role holds the account role flags. An account may be both owner and host.
type Role struct {
	Owner bool `json:"owner" db:"role_owner"`
	Host  bool `json:"host" db:"role_host"`
}

// User represents an account. Accounts with Role.Host set are care providers
// and their public listing is the ProviderProfile view of this record.
type User struct {
	UID            string                 `json:"uid" db:"uid"`
	Name           string                 `json:"name" db:"name"`
	Bio            string                 `json:"bio,omitempty" db:"bio"`
	PhotoURL       string                 `json:"photo_url,omitempty" db:"photo_url"`
	Role           Role                   `json:"role"`
	Services       map[ServiceType]bool   `json:"services" db:"services"`
	ServiceRates   map[ServiceType]string `json:"service_rates,omitempty" db:"service_rates"`
	AcceptedBreeds []string               `json:"accepted_breeds" db:"accepted_breeds"`
	Location       *Location              `json:"location,omitempty"`
	Rate           string                 `json:"rate,omitempty" db:"rate"`
	RateType       RateType               `json:"rate_type,omitempty" db:"rate_type"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at" db:"updated_at"`
}

// ProviderProfile is the public listing of a host account
type ProviderProfile = User

// EnabledServices returns the services the provider offers in canonical order
func (u *User) EnabledServices() []ServiceType {
	var enabled []ServiceType
	for _, t := range AllServiceTypes {
		if u.Services[t] {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// Offers reports whether the provider has the given service enabled
func (u *User) Offers(t ServiceType) bool {
	return u.Services[t]
}
