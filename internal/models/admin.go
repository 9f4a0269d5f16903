package models

import "time"

type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id" example:"1"`
	Username     string    `gorm:"uniqueIndex;not null;size:255" json:"username" example:"admin"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Admin) TableName() string {
	return "admins"
}
