package model

// Role names issued by the API.
const (
	RoleAttendee  = "attendee"
	RoleOrganizer = "organizer"
	RoleFinance   = "finance"
	RoleAdmin     = "admin"
)

// User is the profile returned by /auth/me/ and /auth/users/.
type User struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
	IsVerified  bool   `json:"is_verified"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User    User   `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest is the body of POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register/.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Password    string `json:"password" validate:"required,min=8"`
}

// ProfileUpdate is the body of PATCH /auth/me/ and PATCH /auth/users/{id}/.
// Nil fields are left untouched by the API.
type ProfileUpdate struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=attendee organizer finance admin"`
	IsVerified  *bool   `json:"is_verified,omitempty"`
}
