package domain

import (
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;unique;not null" json:"name"`
	Status    string    `gorm:"column:status;default:active" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryFilters narrows List results. Zero values mean "no filter".
type CategoryFilters struct {
	Status string
	Search string
	Page   int
	Limit  int
}
