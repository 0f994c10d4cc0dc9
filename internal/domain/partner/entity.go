package partner

import "time"

// SocialSecretary is a partner account that reviews client sessions.
type SocialSecretary struct {
	ID                  string    `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Email               string    `json:"email" db:"email"`
	SocialSecretaryCode string    `json:"socialSecretaryCode" db:"social_secretary_code"`
	PhoneCountryCode    string    `json:"phoneCountryCode" db:"phone_country_code"`
	PhoneNumber         string    `json:"phoneNumber" db:"phone_number"`
	Address             string    `json:"address,omitempty" db:"address"`
	Website             string    `json:"website,omitempty" db:"website"`
	Description         string    `json:"description,omitempty" db:"description"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	IsActive            bool      `json:"isActive" db:"is_active"`
	Role                string    `json:"role" db:"role"`
	Notes               string    `json:"notes,omitempty" db:"notes"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}
