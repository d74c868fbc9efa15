package dto

import "time"

// LoginRequest represents the credential login of a company or researcher
type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=COMPANY RESEARCHER" example:"RESEARCHER"`
	Email    string `json:"email" validate:"required,email,max=255" example:"maria@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AdminLoginRequest is the admin credential login, gated by a solved rotate captcha
type AdminLoginRequest struct {
	ChallengeID string  `json:"challengeId" validate:"required"`
	Email       string  `json:"email" validate:"required,email,max=255" example:"admin@example.com"`
	Password    string  `json:"password" validate:"required,min=8,max=100"`
	UserAngle   float64 `json:"userAngle"`
}

// CaptchaInitResponse carries the images of a new rotate captcha challenge
type CaptchaInitResponse struct {
	ChallengeID       string    `json:"challengeId"`
	MasterImageBase64 string    `json:"masterImageBase64"`
	ThumbImageBase64  string    `json:"thumbImageBase64"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// SessionUser identifies the logged-in profile
type SessionUser struct {
	ID   string `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Role string `json:"role" example:"RESEARCHER"`
	Name string `json:"name" example:"Maria Souza"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	AccessToken string      `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string      `json:"tokenType" example:"Bearer"`
	ExpiresIn   int         `json:"expiresIn" example:"86400"`
	ExpiresAt   time.Time   `json:"expiresAt" example:"2024-01-15T16:30:00Z"`
	User        SessionUser `json:"user"`
	Tracking    bool        `json:"tracking"`
}

// LogoutResponse reports a finished session
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}
