package upload

import "time"

// UploadedFile is the stored descriptor of a policy document upload.
type UploadedFile struct {
	ID           string    `json:"id" db:"id"`
	SessionID    string    `json:"sessionId" db:"session_id"`
	OriginalName string    `json:"originalName" db:"original_name"`
	FileName     string    `json:"fileName" db:"file_name"`
	FileURL      string    `json:"fileUrl" db:"file_url"`
	FileSize     int64     `json:"fileSize" db:"file_size"`
	MimeType     string    `json:"mimeType" db:"mime_type"`
	UploadedAt   time.Time `json:"uploadedAt" db:"uploaded_at"`
}

// CarCategoryInfo is one category suggestion extracted from an uploaded
// policy document.
type CarCategoryInfo struct {
	CategoryName         string   `json:"categoryName"`
	MonthlyBudget        *float64 `json:"monthlyBudget,omitempty"`
	EmployeeContribution *float64 `json:"employeeContribution,omitempty"`
	CleaningCost         *float64 `json:"cleaningCost,omitempty"`
	ParkingCost          *float64 `json:"parkingCost,omitempty"`
	FuelCard             *float64 `json:"fuelCard,omitempty"`
	Confidence           float64  `json:"confidence"`
	Source               string   `json:"source"`
}
