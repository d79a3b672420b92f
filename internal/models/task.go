package models

import "gorm.io/gorm"

// Task rows may outlive their creator, assignee and team, so all three
// references are nullable. A task with no team belongs to its creator;
// legacy rows have neither.
type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'todo';check:status IN ('todo','in_progress','done')"`
	Priority    string `gorm:"not null;default:'medium';check:priority IN ('low','medium','high')"`
	CreatorID   *uint  `gorm:"index"`
	AssigneeID  *uint  `gorm:"index"`
	TeamID      *uint  `gorm:"index"`

	// Relationships
	Creator  *User `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Assignee *User `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Team     *Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
