package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// respondError is the single place a typed error becomes an HTTP reply.
func respondError(ctx *gin.Context, err error) {
	appErr := apperrors.As(err)

	if appErr.Kind == apperrors.Database {
		log.Printf("Internal error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, appErr.Err)
	}

	ctx.JSON(appErr.Status(), types.Failure(appErr.Message, appErr.Details))
}

// bindingDetails turns validator failures into field-level details for
// the 400 envelope.
func bindingDetails(err error) map[string]string {
	var validationErrs validator.ValidationErrors

	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make(map[string]string, len(validationErrs))

	for _, fieldErr := range validationErrs {
		field := strings.ToLower(fieldErr.Field())

		switch fieldErr.Tag() {
		case "required":
			details[field] = "This field is required"
		case "email":
			details[field] = "Must be a valid email address"
		case "min":
			details[field] = "Must be at least " + fieldErr.Param() + " characters"
		default:
			details[field] = "Invalid value"
		}
	}

	return details
}

func userResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func teamResponse(team *models.Team) types.TeamResponse {
	return types.TeamResponse{
		ID:        team.ID,
		Name:      team.Name,
		OwnerID:   team.OwnerID,
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
}

func teamWithMembersResponse(team *models.Team) types.TeamWithMembersResponse {
	members := make([]types.TeamMemberResponse, 0, len(team.TeamMemberships))

	for _, membership := range team.TeamMemberships {
		members = append(members, types.TeamMemberResponse{
			ID:       membership.UserID,
			Name:     membership.User.Name,
			Email:    membership.User.Email,
			Role:     membership.Role,
			JoinedAt: membership.CreatedAt,
		})
	}

	return types.TeamWithMembersResponse{
		TeamResponse: teamResponse(team),
		Members:      members,
	}
}

func taskResponse(task *models.Task) types.TaskResponse {
	return types.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatorID:   task.CreatorID,
		AssigneeID:  task.AssigneeID,
		TeamID:      task.TeamID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
