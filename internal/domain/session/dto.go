package session

import "time"

type CreateSessionRequest struct {
	SignupID                  string            `json:"signupId" binding:"required"`
	CurrentStep               int               `json:"currentStep" binding:"omitempty,min=1,max=5"`
	SelectedCalculationMethod int               `json:"selectedCalculationMethod" binding:"omitempty,min=0,max=3"`
	SelectedFuelTypes         []string          `json:"selectedFuelTypes"`
	SelectedBrands            []string          `json:"selectedBrands"`
	CarCategories             []CategoryRequest `json:"carCategories"`
	Notes                     string            `json:"notes"`
}

// UpdateSessionRequest carries partial updates; nil means "leave unchanged".
type UpdateSessionRequest struct {
	Status                    *Status                `json:"status" binding:"omitempty,oneof=draft in_progress submitted under_review approved rejected completed"`
	CurrentStep               *int                   `json:"currentStep" binding:"omitempty,min=1,max=5"`
	SelectedCalculationMethod *int                   `json:"selectedCalculationMethod" binding:"omitempty,min=0,max=3"`
	SelectedFuelTypes         []string               `json:"selectedFuelTypes"`
	SelectedBrands            []string               `json:"selectedBrands"`
	Notes                     *string                `json:"notes"`
	DocumentStatus            *DocumentStatus        `json:"documentStatus" binding:"omitempty,oneof=draft pending submitted approved rejected"`
	DocumentURLs              map[string]DocumentURL `json:"documentUrls"`
	ReviewedBy                *string                `json:"reviewedBy"`
	LastActivityAt            *time.Time             `json:"lastActivityAt"`
}

type UpdateStepRequest struct {
	Step int `json:"step" binding:"required,min=1,max=5"`
}

type ReviewRequest struct {
	Status     Status `json:"status" binding:"required,oneof=approved rejected"`
	ReviewedBy string `json:"reviewedBy" binding:"required"`
	Notes      string `json:"notes"`
}

type CategoryRequest struct {
	Name                 string             `json:"name" binding:"required,max=120"`
	AnnualKilometers     int                `json:"annualKilometers" binding:"required,gt=0"`
	LeasingDuration      int                `json:"leasingDuration" binding:"required,gt=0"`
	EmployeeContribution Contribution       `json:"employeeContribution"`
	CleaningCost         Contribution       `json:"cleaningCost"`
	ParkingCost          Contribution       `json:"parkingCost"`
	FuelCard             Contribution       `json:"fuelCard"`
	SelectedFuelTypes    []string           `json:"selectedFuelTypes"`
	SelectedBrands       []string           `json:"selectedBrands"`
	ReferenceCar         *ReferenceCarRef   `json:"referenceCar"`
	MonthlyTco           *float64           `json:"monthlyTco"`
	TcoBreakdown         map[string]float64 `json:"tcoBreakdown"`
	Status               CategoryStatus     `json:"status" binding:"omitempty,oneof=pending success error"`
}

// SaveDocumentRequest is the snapshot posted when the policy document is
// generated at the end of step 4.
type SaveDocumentRequest struct {
	PartnerID                 string            `json:"partnerId"`
	UserEmail                 string            `json:"userEmail"`
	CompanyName               string            `json:"companyName"`
	CarCategories             []CarCategory     `json:"carCategories"`
	SelectedCalculationMethod int               `json:"selectedCalculationMethod"`
	SelectedFuelTypes         []string          `json:"selectedFuelTypes"`
	SelectedBrands            []string          `json:"selectedBrands"`
	UploadedFiles             []UploadedFileRef `json:"uploadedFiles"`
	GeneratedAt               time.Time         `json:"generatedAt"`
}

type SaveDocumentResponse struct {
	DocumentURLs map[string]DocumentURL `json:"documentUrls"`
}

type UpdateDocumentContentRequest struct {
	DocumentContent string `json:"documentContent" binding:"required"`
	Language        string `json:"language" binding:"required,oneof=en nl fr"`
	LastModified    string `json:"lastModified"`
}

type DocumentContentResponse struct {
	Language string `json:"language"`
	Content  string `json:"content"`
}
