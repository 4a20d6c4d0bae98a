package garage

import (
	"time"

	"github.com/google/uuid"
)

type VehicleType string

const (
	TwoWheeler  VehicleType = "TWO_WHEELER"
	FourWheeler VehicleType = "FOUR_WHEELER"
)

type FuelType string

const (
	FuelPetrol   FuelType = "PETROL"
	FuelDiesel   FuelType = "DIESEL"
	FuelElectric FuelType = "ELECTRIC"
	FuelCNG      FuelType = "CNG"
	FuelHybrid   FuelType = "HYBRID"
)

type DocumentType string

const (
	DocRC                 DocumentType = "RC"
	DocInsurance          DocumentType = "INSURANCE"
	DocPUC                DocumentType = "PUC"
	DocDrivingLicense     DocumentType = "DRIVING_LICENSE"
	DocPermit             DocumentType = "PERMIT"
	DocFitnessCertificate DocumentType = "FITNESS_CERTIFICATE"
	DocOther              DocumentType = "OTHER"
)

// Vehicle is a user-owned garage entry (distinct from the shared catalog).
type Vehicle struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	UserID             uuid.UUID   `json:"user_id" db:"user_id"`
	VehicleType        VehicleType `json:"vehicle_type" db:"vehicle_type"`
	Make               string      `json:"make" db:"make"`
	Model              string      `json:"model" db:"model"`
	Variant            *string     `json:"variant,omitempty" db:"variant"`
	Year               int         `json:"year" db:"year"`
	RegistrationNumber string      `json:"registration_number" db:"registration_number"`
	FuelType           FuelType    `json:"fuel_type" db:"fuel_type"`
	Color              *string     `json:"color,omitempty" db:"color"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// Document tracks expiry metadata for a vehicle document. The file itself
// lives in managed object storage; only file_url is kept here.
type Document struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	VehicleID      uuid.UUID    `json:"vehicle_id" db:"vehicle_id"`
	DocumentType   DocumentType `json:"document_type" db:"document_type"`
	DocumentNumber string       `json:"document_number" db:"document_number"`
	IssueDate      time.Time    `json:"issue_date" db:"issue_date"`
	ExpiryDate     time.Time    `json:"expiry_date" db:"expiry_date"`
	FileURL        string       `json:"file_url" db:"file_url"`
	ReminderSent   bool         `json:"reminder_sent" db:"reminder_sent"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

type AddVehicleRequest struct {
	VehicleType        VehicleType `json:"vehicle_type"`
	Make               string      `json:"make"`
	Model              string      `json:"model"`
	Variant            *string     `json:"variant,omitempty"`
	Year               int         `json:"year"`
	RegistrationNumber string      `json:"registration_number"`
	FuelType           FuelType    `json:"fuel_type"`
	Color              *string     `json:"color,omitempty"`
}

type AddDocumentRequest struct {
	VehicleID      string       `json:"vehicle_id"`
	DocumentType   DocumentType `json:"document_type"`
	DocumentNumber string       `json:"document_number"`
	IssueDate      time.Time    `json:"issue_date"`
	ExpiryDate     time.Time    `json:"expiry_date"`
	FileURL        string       `json:"file_url"`
}

type ExpirySweepResult struct {
	DocumentsFound    int `json:"documents_found"`
	NotificationsSent int `json:"notifications_sent"`
}
