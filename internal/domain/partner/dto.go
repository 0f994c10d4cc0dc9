package partner

import "time"

type CreateRequest struct {
	Name                string `json:"name" binding:"required,max=255"`
	Email               string `json:"email" binding:"required,email,max=255"`
	Password            string `json:"password" binding:"required,min=8"`
	SocialSecretaryCode string `json:"socialSecretaryCode" binding:"required,max=32"`
	PhoneCountryCode    string `json:"phoneCountryCode" binding:"max=8"`
	PhoneNumber         string `json:"phoneNumber" binding:"max=20"`
	Address             string `json:"address"`
	Website             string `json:"website"`
	Description         string `json:"description"`
	Notes               string `json:"notes"`
}

type AuthenticateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthenticateResponse struct {
	Token   string           `json:"token"`
	Partner *SocialSecretary `json:"partner"`
}

// SessionSummary is the per-session row shown on the partner dashboard.
type SessionSummary struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	CurrentStep    int       `json:"currentStep"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CompanySummary struct {
	SignupID      string    `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	CompanyName   string    `json:"companyName,omitempty"`
	CompanyNumber string    `json:"companyNumber,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CompanyWithSessions struct {
	Signup             CompanySummary   `json:"signup"`
	Sessions           []SessionSummary `json:"sessions"`
	TotalSessions      int              `json:"totalSessions"`
	PendingSessions    int              `json:"pendingSessions"`
	InProgressSessions int              `json:"inProgressSessions"`
	CompletedSessions  int              `json:"completedSessions"`
}

type CompaniesResponse struct {
	Companies      []CompanyWithSessions `json:"companies"`
	TotalCompanies int                   `json:"totalCompanies"`
	TotalSessions  int                   `json:"totalSessions"`
}

type Statistics struct {
	TotalCompanies     int64 `json:"totalCompanies"`
	TotalSessions      int64 `json:"totalSessions"`
	PendingSessions    int64 `json:"pendingSessions"`
	InProgressSessions int64 `json:"inProgressSessions"`
	SubmittedSessions  int64 `json:"submittedSessions"`
	ApprovedSessions   int64 `json:"approvedSessions"`
	RejectedSessions   int64 `json:"rejectedSessions"`
	CompletedSessions  int64 `json:"completedSessions"`
}
