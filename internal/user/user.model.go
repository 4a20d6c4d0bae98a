package user

import "time"

type Role string

const (
	RoleUser            Role = "USER"
	RoleGarageOperator  Role = "GARAGE_OPERATOR"
	RoleParkingOperator Role = "PARKING_OPERATOR"
	RoleAdmin           Role = "ADMIN"
)

type User struct {
	ID            string    `json:"id"`
	ClerkID       string    `json:"clerkId"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	Phone         *string   `json:"phone,omitempty"`
	AvatarURL     *string   `json:"avatarUrl,omitempty"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
