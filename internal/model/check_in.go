package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayLayout formats the calendar day a check-in belongs to.
const DayLayout = "2006-01-02"

// CheckIn records a user's presence at a gym. ValidatedAt is set at most once.
type CheckIn struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"size:36;not null;uniqueIndex:idx_check_ins_user_day" json:"user_id"`
	GymID       string     `gorm:"size:36;not null;index" json:"gym_id"`
	Day         string     `gorm:"size:10;not null;uniqueIndex:idx_check_ins_user_day" json:"-"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	ValidatedAt *time.Time `json:"validated_at"`

	// Associations
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Gym  Gym  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) string {
	return t.Format(DayLayout)
}

// BeforeCreate assigns a random id when none was set.
func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
