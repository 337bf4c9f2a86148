package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gym is a registered gym location.
type Gym struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:256;not null;index" json:"title"`
	Description *string   `gorm:"size:1024" json:"description"`
	Phone       *string   `gorm:"size:32" json:"phone"`
	Latitude    float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude   float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`

	// Associations
	CheckIns []CheckIn `gorm:"foreignKey:GymID" json:"-"`
}

// BeforeCreate assigns a random id when none was set.
func (g *Gym) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
