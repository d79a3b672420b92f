package store

import (
	"fmt"
	"log"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// CreateTeam inserts the team row and the owner membership row in one
// transaction, so a team can never exist with zero members.
func CreateTeam(name string, ownerID uint) (*models.Team, error) {
	team := models.Team{
		Name:    name,
		OwnerID: ownerID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		membership := models.TeamMembership{
			TeamID: team.ID,
			UserID: ownerID,
			Role:   types.RoleOwner,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		return nil, translate(err, "Team not found")
	}

	return &team, nil
}

func FindTeamByID(id uint) (*models.Team, error) {
	var team models.Team

	if err := db.DB.First(&team, id).Error; err != nil {
		return nil, translate(err, "Team not found")
	}

	return &team, nil
}

func FindTeamWithMembers(id uint) (*models.Team, error) {
	var team models.Team

	if err := db.DB.Preload("TeamMemberships.User").First(&team, id).Error; err != nil {
		return nil, translate(err, "Team not found")
	}

	if err := verifyOwnerConsistency(&team); err != nil {
		log.Printf("Owner consistency check failed for team %d: %v", team.ID, err)
	}

	return &team, nil
}

// verifyOwnerConsistency checks the derived invariant that the team's
// owner_id matches its single owner-role membership row. The membership
// row is the source of truth; divergence is logged, not repaired.
func verifyOwnerConsistency(team *models.Team) error {
	owners := 0

	for _, membership := range team.TeamMemberships {
		if membership.Role == types.RoleOwner {
			owners++

			if membership.UserID != team.OwnerID {
				return fmt.Errorf("owner membership belongs to user %d, team owner_id is %d", membership.UserID, team.OwnerID)
			}
		}
	}

	if owners != 1 {
		return fmt.Errorf("expected exactly one owner membership, found %d", owners)
	}

	return nil
}

func ListTeamsForUser(userID uint, page, limit int) ([]models.Team, int64, error) {
	memberOf := db.DB.Model(&models.TeamMembership{}).Select("team_id").Where("user_id = ?", userID)

	var total int64

	if err := db.DB.Model(&models.Team{}).Where("id IN (?)", memberOf).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Team not found")
	}

	var teams []models.Team

	err := db.DB.Where("id IN (?)", memberOf).
		Order("teams.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&teams).Error

	if err != nil {
		return nil, 0, translate(err, "Team not found")
	}

	return teams, total, nil
}

// DeleteTeam removes the team, its memberships and detaches its tasks
// in one transaction.
func DeleteTeam(id uint) error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("team_id = ?", id).Update("team_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Team{}, id).Error
	})

	return translate(err, "Team not found")
}

func IsMember(teamID, userID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error

	if err != nil {
		return false, translate(err, "Team not found")
	}

	return count > 0, nil
}

func IsOwner(teamID, userID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ? AND role = ?", teamID, userID, types.RoleOwner).
		Count(&count).Error

	if err != nil {
		return false, translate(err, "Team not found")
	}

	return count > 0, nil
}

func AddMember(teamID, userID uint) (*models.TeamMembership, error) {
	existing, err := IsMember(teamID, userID)

	if err != nil {
		return nil, err
	}

	if existing {
		return nil, apperrors.NewValidation("User is already a member of this team", nil)
	}

	membership := models.TeamMembership{
		TeamID: teamID,
		UserID: userID,
		Role:   types.RoleMember,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		return nil, translate(err, "Team not found")
	}

	return &membership, nil
}

func RemoveMember(teamID, userID uint) error {
	var membership models.TeamMembership

	err := db.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&membership).Error

	if err != nil {
		return translate(err, "Membership not found")
	}

	if membership.Role == types.RoleOwner {
		return apperrors.NewValidation("The team owner cannot be removed from the team", nil)
	}

	return translate(db.DB.Delete(&membership).Error, "Membership not found")
}
