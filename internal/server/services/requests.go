package services

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,credemail"`
	Password string `json:"password" validate:"required,credpassword"`
}

type AuthenticateRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required"`
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,credpassword"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,credpassword"`
}
