package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
	RoleGuest   = "guest"
)

var ValidRoles = map[string]bool{
	RoleUser:    true,
	RoleManager: true,
	RoleAdmin:   true,
	RoleGuest:   true,
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"column:email;unique;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         string `gorm:"column:role;default:user" json:"role"`
	Verified     bool   `gorm:"column:verified;default:false" json:"verified"`
	Name         string `gorm:"column:name" json:"name"`
	Phone        string `gorm:"column:phone" json:"phone"`
	Address      string `gorm:"column:address" json:"address"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
