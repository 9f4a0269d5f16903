package handlers

import (
	"quiz-admin/internal/auth"
	"quiz-admin/internal/services"
)

// PackageRequest is used for both create and update; omitted fields stay untouched on update.
type PackageRequest struct {
	Name      *string `json:"name" example:"History"`
	NameKZ    *string `json:"nameKZ" example:"Тарих"`
	NameRU    *string `json:"nameRU" example:"История"`
	IconColor *string `json:"iconColor" example:"#4CAF50"`
	Price     *int    `json:"price" example:"1000"`
	IsActive  *bool   `json:"isActive" example:"true"`
}

func (r PackageRequest) toInput() services.PackageInput {
	return services.PackageInput{
		Name:      r.Name,
		NameKZ:    r.NameKZ,
		NameRU:    r.NameRU,
		IconColor: r.IconColor,
		Price:     r.Price,
		IsActive:  r.IsActive,
	}
}

type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"admin123"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"admin123"`
	NewPassword     string `json:"newPassword" example:"s3cret-pass"`
}

type InitResponse struct {
	Username string `json:"username" example:"admin"`
}

type VerifyResponse struct {
	Valid bool          `json:"valid" example:"true"`
	User  auth.Identity `json:"user"`
}
