package models

import (
	"time"
	"uems/src/types"
)

type Event struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Title     string            `json:"title,omitempty"`
	About     *string           `json:"about,omitempty"`
	AreaID    uint              `json:"area_id,omitempty"`
	StartsAt  time.Time         `json:"starts_at,omitempty"`
	EndsAt    time.Time         `json:"ends_at,omitempty"`
	Status    types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	CreatedBy uint              `json:"created_by,omitempty"`

	Area    Area     `json:"area,omitempty"`
	Creator User     `gorm:"foreignKey:created_by" json:"-"`
	Tickets []Ticket `json:"tickets,omitempty"`

	types.Timestamps
}
