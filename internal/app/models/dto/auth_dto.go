package dto

import "github.com/yigit/agora/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string            `json:"accessToken"`
	TokenType             string            `json:"tokenType"`
	ExpiresIn             int64             `json:"expiresIn"`
	RefreshToken          string            `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64             `json:"refreshTokenExpiresIn,omitempty"`
	Roles                 []models.RoleType `json:"roles"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// CreateUserRequest is used by administrators to insert a user
type CreateUserRequest struct {
	Login     string            `json:"login" binding:"required,login"`
	Email     string            `json:"email" binding:"required,email,max=100"`
	Password  string            `json:"password" binding:"required,password"`
	FirstName string            `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string            `json:"lastName" binding:"required,min=2,max=50"`
	Cell      *string           `json:"cell" binding:"omitempty,phone"`
	Roles     []models.RoleType `json:"roles" binding:"required,min=1,dive,oneof=ADMINISTRATOR TEACHER STUDENT PARENT ATA AGENCY_OPERATOR POINT_OPERATOR TOURIST"`
}

// UpdateUserRequest edits a user's registry data
type UpdateUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=100"`
	FirstName string  `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string  `json:"lastName" binding:"required,min=2,max=50"`
	Cell      *string `json:"cell" binding:"omitempty,phone"`
	IsActive  *bool   `json:"isActive"`
}

// AssignRolesRequest grants roles to a user
type AssignRolesRequest struct {
	Roles []models.RoleType `json:"roles" binding:"required,min=1,dive,oneof=ADMINISTRATOR TEACHER STUDENT PARENT ATA AGENCY_OPERATOR POINT_OPERATOR TOURIST"`
}

// AssignStudentsRequest links students to a parent
type AssignStudentsRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required,min=1,dive,gt=0"`
}
