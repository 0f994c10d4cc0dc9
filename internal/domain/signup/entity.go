package signup

import "time"

// Signup is a company onboarding record created before the first session.
type Signup struct {
	ID              string    `json:"id" db:"id"`
	FullName        string    `json:"fullName" db:"full_name"`
	Email           string    `json:"email" db:"email"`
	CompanyName     string    `json:"companyName,omitempty" db:"company_name"`
	CompanyNumber   string    `json:"companyNumber,omitempty" db:"company_number"`
	SocialSecretary string    `json:"socialSecretary,omitempty" db:"social_secretary"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateSignupRequest struct {
	FullName        string `json:"fullName" binding:"required,max=255"`
	Email           string `json:"email" binding:"required,email,max=255"`
	CompanyName     string `json:"companyName" binding:"max=255"`
	CompanyNumber   string `json:"companyNumber" binding:"max=64"`
	SocialSecretary string `json:"socialSecretary" binding:"max=64"`
}
