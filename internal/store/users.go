package store

import (
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func CreateUser(name, email, passwordHash string) (*models.User, error) {
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, apperrors.NewConflict("Email already exists")
		}

		return nil, translate(err, "User not found")
	}

	return &user, nil
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}

	return &user, nil
}

type UserPatch struct {
	Name  *string
	Email *string
}

func (p UserPatch) Updates() map[string]interface{} {
	updates := make(map[string]interface{})

	if p.Name != nil {
		updates["name"] = *p.Name
	}

	if p.Email != nil {
		updates["email"] = *p.Email
	}

	return updates
}

func UpdateUser(id uint, patch UserPatch) (*models.User, error) {
	user, err := FindUserByID(id)

	if err != nil {
		return nil, err
	}

	updates := patch.Updates()

	if len(updates) == 0 {
		return user, nil
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, apperrors.NewConflict("Email already exists")
		}

		return nil, translate(err, "User not found")
	}

	return FindUserByID(id)
}

func FindUserByID(id uint) (*models.User, error) {
	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		return nil, translate(err, "User not found")
	}

	return &user, nil
}
