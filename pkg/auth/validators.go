package auth

// LoginPayload is the request body for logging in.
type LoginPayload struct {
	Username string `json:"username" mod:"trim" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=300"`
}

// SetupPayload is the request body for creating the first user.
type SetupPayload struct {
	Username string  `json:"username" mod:"trim" validate:"required,min=1,max=100"`
	Email    *string `json:"email,omitempty" mod:"trim" validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8,max=300"`
}
