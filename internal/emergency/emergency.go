package emergency

import (
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	StatusOpen     IncidentStatus = "open"
	StatusResolved IncidentStatus = "resolved"
)

type Incident struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Latitude  *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64       `json:"longitude,omitempty" db:"longitude"`
	Message   string         `json:"message" db:"message"`
	Status    IncidentStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

type SOSRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Message   string   `json:"message,omitempty"`
}

type SOSResponse struct {
	Incident        *Incident `json:"incident"`
	ContactsAlerted int       `json:"contacts_alerted"`
}
