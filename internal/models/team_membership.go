package models

import "gorm.io/gorm"

type TeamMembership struct {
	gorm.Model

	UserID uint   `gorm:"not null;uniqueIndex:idx_user_team"`
	TeamID uint   `gorm:"not null;uniqueIndex:idx_user_team"`
	Role   string `gorm:"not null;check:role IN ('owner','member')"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Team Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (TeamMembership) TableName() string {
	return "team_members"
}
