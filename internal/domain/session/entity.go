package session

import (
	"time"
)

// Status is the lifecycle state of a user session.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusInProgress  Status = "in_progress"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
)

// DocumentStatus tracks the generated policy document, not the session.
type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "draft"
	DocumentPending   DocumentStatus = "pending"
	DocumentSubmitted DocumentStatus = "submitted"
	DocumentApproved  DocumentStatus = "approved"
	DocumentRejected  DocumentStatus = "rejected"
)

// CategoryStatus marks whether a car category has a committed TCO calculation.
type CategoryStatus string

const (
	CategoryPending CategoryStatus = "pending"
	CategorySuccess CategoryStatus = "success"
	CategoryError   CategoryStatus = "error"
)

const (
	FirstStep = 1
	LastStep  = 5
)

// Contribution is an optional monetary component of a category.
type Contribution struct {
	Enabled bool    `json:"enabled"`
	Amount  float64 `json:"amount"`
}

// ReferenceCarRef is the snapshot of a catalog vehicle linked to a category.
type ReferenceCarRef struct {
	ID       int64  `json:"id"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	FuelType string `json:"fuelType"`
}

// CarCategory is one car-benefit tier inside a session.
type CarCategory struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	AnnualKilometers     int                `json:"annualKilometers"`
	LeasingDuration      int                `json:"leasingDuration"`
	EmployeeContribution Contribution       `json:"employeeContribution"`
	CleaningCost         Contribution       `json:"cleaningCost"`
	ParkingCost          Contribution       `json:"parkingCost"`
	FuelCard             Contribution       `json:"fuelCard"`
	SelectedFuelTypes    []string           `json:"selectedFuelTypes,omitempty"`
	SelectedBrands       []string           `json:"selectedBrands,omitempty"`
	ReferenceCar         *ReferenceCarRef   `json:"referenceCar,omitempty"`
	MonthlyTco           *float64           `json:"monthlyTco,omitempty"`
	TcoBreakdown         map[string]float64 `json:"tcoBreakdown,omitempty"`
	Status               CategoryStatus     `json:"status"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// Valid reports whether the category may carry the success status.
// success requires both a committed TCO and a reference car.
func (c *CarCategory) Valid() bool {
	return c.MonthlyTco != nil && *c.MonthlyTco > 0 && c.ReferenceCar != nil
}

// DocumentURL holds the per-language artifact locations.
type DocumentURL struct {
	PreviewURL  string `json:"previewUrl"`
	DownloadURL string `json:"downloadUrl"`
}

// UploadedFileRef describes a file attached to a session.
type UploadedFileRef struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SignupSummary is the embedded owner info returned with a session.
type SignupSummary struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	CompanyName     string `json:"companyName,omitempty"`
	SocialSecretary string `json:"socialSecretary,omitempty"`
}

// UserSession is the persisted record of one user's wizard progress.
type UserSession struct {
	ID                        string                 `json:"id"`
	SignupID                  string                 `json:"signupId"`
	Status                    Status                 `json:"status"`
	CurrentStep               int                    `json:"currentStep"`
	SelectedCalculationMethod int                    `json:"selectedCalculationMethod"`
	SelectedFuelTypes         []string               `json:"selectedFuelTypes"`
	SelectedBrands            []string               `json:"selectedBrands"`
	CarCategories             []CarCategory          `json:"carCategories"`
	UploadedFiles             []UploadedFileRef      `json:"uploadedFiles,omitempty"`
	Notes                     string                 `json:"notes,omitempty"`
	DocumentStatus            DocumentStatus         `json:"documentStatus"`
	DocumentURLs              map[string]DocumentURL `json:"documentUrls,omitempty"`
	ReviewedBy                string                 `json:"reviewedBy,omitempty"`
	LastActivityAt            time.Time              `json:"lastActivityAt"`
	SubmittedAt               *time.Time             `json:"submittedAt,omitempty"`
	ReviewedAt                *time.Time             `json:"reviewedAt,omitempty"`
	CreatedAt                 time.Time              `json:"createdAt"`
	UpdatedAt                 time.Time              `json:"updatedAt"`
	Signup                    *SignupSummary         `json:"signup,omitempty"`
}

// CanGenerateDocument is the document gate: a non-empty category list where
// every category is success with a committed TCO and reference car.
func (s *UserSession) CanGenerateDocument() bool {
	if len(s.CarCategories) == 0 {
		return false
	}
	for i := range s.CarCategories {
		c := &s.CarCategories[i]
		if c.Status != CategorySuccess || !c.Valid() {
			return false
		}
	}
	return true
}

// Statistics aggregates a user's sessions per status.
type Statistics struct {
	Total       int64 `json:"total"`
	Draft       int64 `json:"draft"`
	InProgress  int64 `json:"inProgress"`
	Submitted   int64 `json:"submitted"`
	UnderReview int64 `json:"underReview"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Completed   int64 `json:"completed"`
}
