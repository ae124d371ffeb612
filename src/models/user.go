package models

import (
	"uems/src/types"
)

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	UID   string `json:"uid,omitempty"`

	Tickets []Ticket `gorm:"foreignKey:user_id" json:"tickets,omitempty"`
	Bills   []Bill   `gorm:"foreignKey:user_id" json:"bills,omitempty"`

	types.Timestamps
}
